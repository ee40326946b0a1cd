package islands

import (
	"github.com/matzehuels/islandlink/pkg/errors"
)

// DistanceToRoot sums the link distances from site i to the root. A
// root-attached site's single hop is its whole path.
func (g *Group) DistanceToRoot(i int) (float64, error) {
	total := 0.0
	cur := i
	for steps := 0; steps <= len(g.sites); steps++ {
		s := &g.sites[cur]
		parent, ok := s.Link.Parent()
		if !ok {
			return total, nil
		}
		total += s.LinkDistance
		if parent == RootIndex {
			return total, nil
		}
		if parent < 0 || parent >= len(g.sites) {
			return 0, errors.New(errors.ErrCodeInvariant, "island %d links to missing island %d", cur, parent)
		}
		cur = parent
	}
	return 0, errChainTooLong(i, len(g.sites))
}

// AverageDays returns the population-weighted mean distance to the root,
// read as days since one kilometer of cable takes a day to lay. Every site
// counts, the root included at distance zero.
//
// A group without inhabitants has no average and yields a ZERO_POPULATION
// error.
func (g *Group) AverageDays() (float64, error) {
	var weighted float64
	var population int
	for i := range g.sites {
		d, err := g.DistanceToRoot(i)
		if err != nil {
			return 0, err
		}
		p := g.sites[i].population
		weighted += d * float64(p)
		population += p
	}
	if population == 0 {
		return 0, errors.New(errors.ErrCodeZeroPopulation, "group of %d islands has no inhabitants", len(g.sites))
	}
	return weighted / float64(population), nil
}

// TotalPopulation returns the number of inhabitants across all sites.
func (g *Group) TotalPopulation() int {
	total := 0
	for i := range g.sites {
		total += g.sites[i].population
	}
	return total
}

// CableLength returns the summed length of every site's outgoing link.
func (g *Group) CableLength() float64 {
	total := 0.0
	for i := range g.sites {
		total += g.sites[i].LinkDistance
	}
	return total
}
