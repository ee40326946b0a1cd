package islands

import (
	"math"
)

// Move is a candidate or committed relink of Mover to Target.
type Move struct {
	Mover    int     `json:"mover"`
	Target   int     `json:"target"`
	Distance float64 `json:"distance"`
	// Gain is the cable saved relative to the mover's current link.
	Gain float64 `json:"gain"`
}

// Stats summarizes one [Solve] run.
type Stats struct {
	// Iterations counts outer passes, including the final pass that found no
	// improving move.
	Iterations int `json:"iterations"`
	// Commits counts relinks. Each commit freezes one mover, so Commits is
	// at most Len()-1.
	Commits int `json:"commits"`
	// Evaluated counts candidate pairs scored across all passes.
	Evaluated int `json:"evaluated"`
	// Rejected counts candidate pairs skipped by the ancestor check.
	Rejected int `json:"rejected"`

	InitialCable float64 `json:"initial_cable"`
	FinalCable   float64 `json:"final_cable"`
}

// Saved returns the cable length removed by the search.
func (s Stats) Saved() float64 { return s.InitialCable - s.FinalCable }

type solveConfig struct {
	observe func(Move)
}

// SolveOption configures [Solve].
type SolveOption func(*solveConfig)

// WithMoveObserver registers fn to be called after every committed move.
func WithMoveObserver(fn func(Move)) SolveOption {
	return func(c *solveConfig) { c.observe = fn }
}

// Solve runs the exchange search on g in place until no relink saves cable.
//
// Each pass scores every root-attached mover against every other non-root
// island. A target is skipped when the mover already lies on its path to the
// root. Movers and targets are visited in ascending index order and a
// candidate only displaces the current best on a strictly larger gain, so
// ties go to the first pair found. The best pair over the whole group is
// committed when its gain is positive; otherwise the search ends.
//
// Solve only returns an error when the link structure is corrupt.
func Solve(g *Group, opts ...SolveOption) (Stats, error) {
	var cfg solveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	stats := Stats{InitialCable: g.CableLength()}
	for {
		stats.Iterations++
		best, found, err := g.bestMove(&stats)
		if err != nil {
			return stats, err
		}
		if !found || best.Gain <= 0 {
			break
		}
		g.commit(best)
		stats.Commits++
		if cfg.observe != nil {
			cfg.observe(best)
		}
	}
	stats.FinalCable = g.CableLength()
	return stats, nil
}

// bestMove returns the single best legal move across all movers.
func (g *Group) bestMove(stats *Stats) (Move, bool, error) {
	global := Move{Gain: math.Inf(-1)}
	found := false
	for m := range g.sites {
		if !g.sites[m].IsMover() {
			continue
		}
		local, ok, err := g.bestMoveFor(m, stats)
		if err != nil {
			return Move{}, false, err
		}
		if ok && local.Gain > global.Gain {
			global = local
			found = true
		}
	}
	return global, found, nil
}

// bestMoveFor returns the best legal move for mover m.
func (g *Group) bestMoveFor(m int, stats *Stats) (Move, bool, error) {
	mover := &g.sites[m]
	best := Move{Gain: math.Inf(-1)}
	found := false
	for t := range g.sites {
		if t == m || g.sites[t].IsRoot() {
			continue
		}
		cycle, err := g.IsAncestorOnPath(t, m)
		if err != nil {
			return Move{}, false, err
		}
		if cycle {
			stats.Rejected++
			continue
		}
		stats.Evaluated++
		d := Distance(mover.position, g.sites[t].position)
		if gain := mover.LinkDistance - d; gain > best.Gain {
			best = Move{Mover: m, Target: t, Distance: d, Gain: gain}
			found = true
		}
	}
	return best, found, nil
}

func (g *Group) commit(mv Move) {
	s := &g.sites[mv.Mover]
	s.Link = LinkTo(mv.Target)
	s.LinkDistance = mv.Distance
}
