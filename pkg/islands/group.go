package islands

import (
	"github.com/matzehuels/islandlink/pkg/errors"
)

// Record is one parsed island description. The first record of a group is
// the main island.
type Record struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Population int     `json:"population"`
}

// Point returns the record's coordinate.
func (r Record) Point() Point { return Point{X: r.X, Y: r.Y} }

// Group is the owned, indexable collection of sites for one island group.
// It is not safe for concurrent mutation.
type Group struct {
	sites []Site
}

type groupConfig struct {
	maxSites int
}

// GroupOption configures [NewGroup].
type GroupOption func(*groupConfig)

// WithMaxSites overrides the largest accepted group size. Values of zero or
// less keep [errors.DefaultMaxSites].
func WithMaxSites(n int) GroupOption {
	return func(c *groupConfig) {
		if n > 0 {
			c.maxSites = n
		}
	}
}

// NewGroup builds the sites for one group. The first record becomes the root
// with a zero link distance; all others start attached to the root.
//
// It returns an INVALID_INPUT error for an empty group, GROUP_TOO_LARGE when
// the record count exceeds the configured maximum, and INVALID_RECORD for a
// negative population or non-finite coordinate.
func NewGroup(records []Record, opts ...GroupOption) (*Group, error) {
	cfg := groupConfig{maxSites: errors.DefaultMaxSites}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "group has no islands")
	}
	if err := errors.ValidateGroupSize(len(records), cfg.maxSites); err != nil {
		return nil, err
	}

	root := records[0].Point()
	sites := make([]Site, len(records))
	for i, r := range records {
		if err := errors.ValidateCoordinate(r.X, r.Y); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "island %d", i)
		}
		if err := errors.ValidatePopulation(r.Population); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "island %d", i)
		}
		if i == RootIndex {
			sites[i] = newRootSite(root, r.Population)
			continue
		}
		sites[i] = newSite(r.Point(), r.Population, root)
	}
	return &Group{sites: sites}, nil
}

// Len returns the number of sites including the root.
func (g *Group) Len() int { return len(g.sites) }

// Site returns the site at index i. The returned pointer aliases the group.
func (g *Group) Site(i int) *Site { return &g.sites[i] }

// Records returns the group's input as records, root first.
func (g *Group) Records() []Record {
	out := make([]Record, len(g.sites))
	for i := range g.sites {
		p := g.sites[i].position
		out[i] = Record{X: p.X, Y: p.Y, Population: g.sites[i].population}
	}
	return out
}

// Links returns a copy of every site's current link.
func (g *Group) Links() []Link {
	out := make([]Link, len(g.sites))
	for i := range g.sites {
		out[i] = g.sites[i].Link
	}
	return out
}

// SetLinks replaces the link structure, recomputing link distances from the
// site positions. The result must satisfy the tree invariant; otherwise the
// group is left unchanged and an INVARIANT_VIOLATION error is returned.
func (g *Group) SetLinks(links []Link) error {
	if len(links) != len(g.sites) {
		return errors.New(errors.ErrCodeInvariant, "got %d links for %d islands", len(links), len(g.sites))
	}
	prev := g.Links()
	prevDist := make([]float64, len(g.sites))
	for i := range g.sites {
		prevDist[i] = g.sites[i].LinkDistance
	}

	root := g.sites[RootIndex].position
	for i, l := range links {
		s := &g.sites[i]
		s.Link = l
		switch l.Kind {
		case LinkRoot:
			s.LinkDistance = 0
		case LinkUnassigned:
			s.LinkDistance = Distance(s.position, root)
		case LinkSite:
			if l.Target <= RootIndex || l.Target >= len(g.sites) || l.Target == i {
				g.restore(prev, prevDist)
				return errors.New(errors.ErrCodeInvariant, "island %d links to invalid island %d", i, l.Target)
			}
			s.LinkDistance = Distance(s.position, g.sites[l.Target].position)
		default:
			g.restore(prev, prevDist)
			return errors.New(errors.ErrCodeInvariant, "island %d has unknown link kind %d", i, l.Kind)
		}
	}
	if err := g.Validate(); err != nil {
		g.restore(prev, prevDist)
		return err
	}
	return nil
}

func (g *Group) restore(links []Link, dist []float64) {
	for i := range g.sites {
		g.sites[i].Link = links[i]
		g.sites[i].LinkDistance = dist[i]
	}
}

// Validate checks the tree invariant: exactly one root at [RootIndex] with a
// zero link distance, and every other site reaching it within Len()-1 hops.
func (g *Group) Validate() error {
	for i := range g.sites {
		s := &g.sites[i]
		if (i == RootIndex) != s.IsRoot() {
			return errors.New(errors.ErrCodeInvariant, "island %d: root must be island %d and only it", i, RootIndex)
		}
		if s.IsRoot() && s.LinkDistance != 0 {
			return errors.New(errors.ErrCodeInvariant, "root link distance is %v, want 0", s.LinkDistance)
		}
		if _, err := g.hopsToRoot(i); err != nil {
			return err
		}
	}
	return nil
}

// hopsToRoot counts the edges between site i and the root.
func (g *Group) hopsToRoot(i int) (int, error) {
	hops := 0
	cur := i
	for {
		parent, ok := g.sites[cur].Link.Parent()
		if !ok {
			return hops, nil
		}
		if parent < 0 || parent >= len(g.sites) {
			return 0, errors.New(errors.ErrCodeInvariant, "island %d links to missing island %d", cur, parent)
		}
		hops++
		if hops > len(g.sites)-1 {
			return 0, errChainTooLong(i, len(g.sites))
		}
		cur = parent
	}
}

func errChainTooLong(start, n int) error {
	return errors.New(errors.ErrCodeInvariant, "link chain from island %d exceeds %d islands", start, n)
}
