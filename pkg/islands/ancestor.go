package islands

import (
	"github.com/matzehuels/islandlink/pkg/errors"
)

// IsAncestorOnPath reports whether forbidden lies on candidate's current path
// toward the root. Linking forbidden to candidate would then close a cycle.
//
// The walk ends with false at the root or at a root-attached site, and with
// true as soon as a site on the path links to forbidden. A path longer than
// the group means the link structure is corrupt and yields an
// INVARIANT_VIOLATION error.
func (g *Group) IsAncestorOnPath(candidate, forbidden int) (bool, error) {
	cur := candidate
	for steps := 0; steps <= len(g.sites); steps++ {
		l := g.sites[cur].Link
		switch l.Kind {
		case LinkRoot, LinkUnassigned:
			return false, nil
		}
		if l.Target == forbidden {
			return true, nil
		}
		if l.Target < 0 || l.Target >= len(g.sites) {
			return false, errors.New(errors.ErrCodeInvariant, "island %d links to missing island %d", cur, l.Target)
		}
		cur = l.Target
	}
	return false, errChainTooLong(candidate, len(g.sites))
}
