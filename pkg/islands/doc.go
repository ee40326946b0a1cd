// Package islands connects a group of islands to a main island with as little
// cable as the Esau-Williams exchange heuristic finds, and measures how long
// an average inhabitant waits for the connection.
//
// # Model
//
// A [Group] owns its [Site] values. Index 0 ([RootIndex]) is the main island.
// Every other site starts attached directly to the root ([LinkUnassigned]) and
// may be re-linked exactly once to another island ([LinkSite]). Links always
// point toward the root, so the group is a tree rooted at the main island
// before and after every committed move.
//
// # Search
//
// [Solve] repeatedly evaluates every root-attached site against every other
// island, skipping targets whose path to the root already runs through the
// mover, and commits the single move with the largest cable saving. It stops
// when no move saves anything.
//
//	g, err := islands.NewGroup(records)
//	if err != nil {
//	    return err
//	}
//	stats, err := islands.Solve(g)
//	if err != nil {
//	    return err
//	}
//	days, err := g.AverageDays()
//
// One kilometer of cable takes one day to lay, so [Group.AverageDays] is the
// population-weighted mean cable distance from each island to the root.
//
// The search places no bound on how many islands may chain through a single
// link to the root.
package islands
