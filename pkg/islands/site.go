package islands

import (
	"fmt"
	"math"
)

// RootIndex is the position of the main island within a [Group].
const RootIndex = 0

// Point is a position in kilometers.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the straight-line distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// LinkKind tells what a site is currently connected toward.
type LinkKind uint8

const (
	// LinkRoot marks the main island. It never changes.
	LinkRoot LinkKind = iota
	// LinkUnassigned marks a site still attached directly to the root. Only
	// these sites are considered as movers.
	LinkUnassigned
	// LinkSite marks a site that has been re-linked to another island. Its
	// outgoing edge is frozen.
	LinkSite
)

// String returns the lowercase name of the kind.
func (k LinkKind) String() string {
	switch k {
	case LinkRoot:
		return "root"
	case LinkUnassigned:
		return "unassigned"
	case LinkSite:
		return "site"
	default:
		return fmt.Sprintf("LinkKind(%d)", uint8(k))
	}
}

// Link is the outgoing edge of a site. Target is only meaningful for
// [LinkSite]; use [RootLink], [UnassignedLink] and [LinkTo] to build one.
type Link struct {
	Kind   LinkKind
	Target int
}

// RootLink returns the link held by the main island.
func RootLink() Link { return Link{Kind: LinkRoot, Target: -1} }

// UnassignedLink returns the default link to the root.
func UnassignedLink() Link { return Link{Kind: LinkUnassigned, Target: RootIndex} }

// LinkTo returns a link to the site at index target.
func LinkTo(target int) Link { return Link{Kind: LinkSite, Target: target} }

// Parent returns the index of the island this link leads to, treating a
// root-attached site as pointing at [RootIndex]. The second result is false
// for the root itself.
func (l Link) Parent() (int, bool) {
	switch l.Kind {
	case LinkUnassigned:
		return RootIndex, true
	case LinkSite:
		return l.Target, true
	default:
		return -1, false
	}
}

// Site is one island.
type Site struct {
	position   Point
	population int

	// Link is the current outgoing edge.
	Link Link
	// LinkDistance is the length of that edge in kilometers.
	LinkDistance float64
}

// Position returns the island's coordinate.
func (s *Site) Position() Point { return s.position }

// Population returns the island's inhabitant count.
func (s *Site) Population() int { return s.population }

// IsRoot reports whether s is the main island.
func (s *Site) IsRoot() bool { return s.Link.Kind == LinkRoot }

// IsMover reports whether s may still be re-linked.
func (s *Site) IsMover() bool { return s.Link.Kind == LinkUnassigned }

func newRootSite(pos Point, population int) Site {
	return Site{position: pos, population: population, Link: RootLink()}
}

func newSite(pos Point, population int, root Point) Site {
	return Site{
		position:     pos,
		population:   population,
		Link:         UnassignedLink(),
		LinkDistance: Distance(pos, root),
	}
}
