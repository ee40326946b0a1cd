package islands

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/islandlink/pkg/errors"
)

const eps = 1e-9

func mustGroup(t *testing.T, records ...Record) *Group {
	t.Helper()
	g, err := NewGroup(records)
	require.NoError(t, err)
	return g
}

func randomRecords(r *rand.Rand, n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			X:          r.Float64()*100 - 50,
			Y:          r.Float64()*100 - 50,
			Population: r.IntN(500),
		}
	}
	return records
}

func TestDistance(t *testing.T) {
	a, b := Point{0, 0}, Point{3, 4}
	assert.InDelta(t, 5.0, Distance(a, b), eps)
	assert.InDelta(t, Distance(a, b), Distance(b, a), eps)
	assert.Zero(t, Distance(b, b))

	c := Point{-2, 7}
	assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c)+eps)
}

func TestNewGroup(t *testing.T) {
	g := mustGroup(t,
		Record{X: 0, Y: 0, Population: 5},
		Record{X: 3, Y: 4, Population: 10},
		Record{X: 0, Y: -2, Population: 1},
	)

	require.Equal(t, 3, g.Len())
	root := g.Site(RootIndex)
	assert.True(t, root.IsRoot())
	assert.Zero(t, root.LinkDistance)
	assert.Equal(t, 5, root.Population())

	assert.Equal(t, UnassignedLink(), g.Site(1).Link)
	assert.InDelta(t, 5.0, g.Site(1).LinkDistance, eps)
	assert.InDelta(t, 2.0, g.Site(2).LinkDistance, eps)
	assert.True(t, g.Site(2).IsMover())
	assert.Equal(t, Point{X: 3, Y: 4}, g.Site(1).Position())
	require.NoError(t, g.Validate())
}

func TestNewGroupRejects(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		opts    []GroupOption
		code    errors.Code
	}{
		{"empty", nil, nil, errors.ErrCodeInvalidInput},
		{"too many sites", make([]Record, errors.DefaultMaxSites+1), nil, errors.ErrCodeGroupTooLarge},
		{"custom max", make([]Record, 4), []GroupOption{WithMaxSites(3)}, errors.ErrCodeGroupTooLarge},
		{"negative population", []Record{{}, {X: 1, Population: -4}}, nil, errors.ErrCodeInvalidRecord},
		{"non-finite coordinate", []Record{{}, {X: math.NaN()}}, nil, errors.ErrCodeInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGroup(tt.records, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v, want code %s", err, tt.code)
		})
	}

	_, err := NewGroup(make([]Record, errors.DefaultMaxSites))
	assert.NoError(t, err, "a group at the limit is accepted")
}

func TestIsAncestorOnPath(t *testing.T) {
	g := mustGroup(t,
		Record{}, Record{X: 1}, Record{X: 2}, Record{X: 3}, Record{X: 4},
	)
	// 3 -> 2 -> 1 -> root, 4 -> root
	require.NoError(t, g.SetLinks([]Link{RootLink(), UnassignedLink(), LinkTo(1), LinkTo(2), UnassignedLink()}))

	tests := []struct {
		candidate, forbidden int
		want                 bool
	}{
		{3, 1, true},
		{3, 2, true},
		{2, 1, true},
		{1, 3, false},
		{2, 3, false},
		{4, 1, false},
		{3, 4, false},
		{1, 2, false},
	}
	for _, tt := range tests {
		got, err := g.IsAncestorOnPath(tt.candidate, tt.forbidden)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "IsAncestorOnPath(%d, %d)", tt.candidate, tt.forbidden)
	}
}

func TestIsAncestorOnPathCorruptChain(t *testing.T) {
	g := mustGroup(t, Record{}, Record{X: 1}, Record{X: 2}, Record{X: 3})
	g.Site(1).Link = LinkTo(2)
	g.Site(2).Link = LinkTo(1)

	_, err := g.IsAncestorOnPath(1, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvariant))

	_, err = g.DistanceToRoot(2)
	assert.True(t, errors.Is(err, errors.ErrCodeInvariant))
	assert.True(t, errors.Is(g.Validate(), errors.ErrCodeInvariant))

	_, err = Solve(g)
	assert.True(t, errors.Is(err, errors.ErrCodeInvariant))
}

func TestSetLinksRejectsCycle(t *testing.T) {
	g := mustGroup(t, Record{}, Record{X: 1}, Record{X: 2})
	before := g.Links()

	err := g.SetLinks([]Link{RootLink(), LinkTo(2), LinkTo(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvariant))
	assert.Equal(t, before, g.Links(), "a rejected link set leaves the group untouched")

	err = g.SetLinks([]Link{RootLink(), LinkTo(0), UnassignedLink()})
	assert.True(t, errors.Is(err, errors.ErrCodeInvariant), "linking to the root by index is not a site link")
}

func TestSolveRootOnly(t *testing.T) {
	g := mustGroup(t, Record{X: 4, Y: 4, Population: 12})
	stats, err := Solve(g)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Iterations)
	assert.Zero(t, stats.Commits)
	assert.Empty(t, g.Edges())

	days, err := g.AverageDays()
	require.NoError(t, err)
	assert.Zero(t, days)
}

func TestSolveTwoSites(t *testing.T) {
	g := mustGroup(t,
		Record{X: 0, Y: 0, Population: 0},
		Record{X: 3, Y: 4, Population: 10},
	)
	stats, err := Solve(g)
	require.NoError(t, err)
	assert.Zero(t, stats.Commits, "a lone island has no legal target")

	days, err := g.AverageDays()
	require.NoError(t, err)
	assert.InDelta(t, 5.0, days, eps)
}

func TestSolveWeightedAverage(t *testing.T) {
	g := mustGroup(t,
		Record{X: 0, Y: 0, Population: 0},
		Record{X: 0, Y: 3, Population: 1}, // A
		Record{X: 1, Y: 3, Population: 3}, // B
	)

	var moves []Move
	stats, err := Solve(g, WithMoveObserver(func(m Move) { moves = append(moves, m) }))
	require.NoError(t, err)

	require.Len(t, moves, 1)
	assert.Equal(t, 2, moves[0].Mover)
	assert.Equal(t, 1, moves[0].Target)
	assert.InDelta(t, math.Sqrt(10)-1, moves[0].Gain, eps)

	assert.Equal(t, LinkTo(1), g.Site(2).Link)
	assert.InDelta(t, 1.0, g.Site(2).LinkDistance, eps)
	assert.Equal(t, UnassignedLink(), g.Site(1).Link, "A may not move onto B once B hangs off A")

	d, err := g.DistanceToRoot(2)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, d, eps)

	days, err := g.AverageDays()
	require.NoError(t, err)
	assert.InDelta(t, 3.75, days, eps)

	assert.Equal(t, 1, stats.Commits)
	assert.Equal(t, 2, stats.Iterations)
	assert.Equal(t, 1, stats.Rejected)
	assert.InDelta(t, 3+math.Sqrt(10), stats.InitialCable, eps)
	assert.InDelta(t, 4.0, stats.FinalCable, eps)
	assert.InDelta(t, math.Sqrt(10)-1, stats.Saved(), eps)

	assert.Equal(t, []Edge{{From: 1, To: RootIndex}, {From: 2, To: 1}}, g.Edges())
}

func TestSolveCollinearRelink(t *testing.T) {
	// B's own hop shrinks from 6 to 3 by hanging off A, even though its
	// path to the root stays 6 long.
	g := mustGroup(t,
		Record{X: 0, Y: 0},
		Record{X: 0, Y: 3, Population: 1},
		Record{X: 0, Y: 6, Population: 3},
	)
	_, err := Solve(g)
	require.NoError(t, err)
	assert.Equal(t, LinkTo(1), g.Site(2).Link)

	days, err := g.AverageDays()
	require.NoError(t, err)
	assert.InDelta(t, 21.0/4.0, days, eps)
}

func TestSolveTieBreaksOnFirstPair(t *testing.T) {
	g := mustGroup(t,
		Record{X: 0, Y: 0, Population: 1},
		Record{X: 1, Y: 10, Population: 1},
		Record{X: -1, Y: 10, Population: 1},
	)
	_, err := Solve(g)
	require.NoError(t, err)
	assert.Equal(t, LinkTo(2), g.Site(1).Link, "equal gains resolve to the lowest mover, then lowest target")
	assert.Equal(t, UnassignedLink(), g.Site(2).Link)
}

func TestSolveIdempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	g := mustGroup(t, randomRecords(r, 20)...)
	_, err := Solve(g)
	require.NoError(t, err)

	links := g.Links()
	stats, err := Solve(g)
	require.NoError(t, err)
	assert.Zero(t, stats.Commits)
	assert.Equal(t, 1, stats.Iterations)
	assert.Equal(t, links, g.Links())
}

func TestSolveInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))
	for run := 0; run < 25; run++ {
		n := 1 + r.IntN(errors.DefaultMaxSites)
		g := mustGroup(t, randomRecords(r, n)...)

		prev := g.CableLength()
		stats, err := Solve(g, WithMoveObserver(func(m Move) {
			assert.Greater(t, m.Gain, 0.0)
			cable := g.CableLength()
			assert.Less(t, cable, prev, "each commit strictly shortens the cable")
			prev = cable
			assert.NoError(t, g.Validate(), "a commit never closes a cycle")
		}))
		require.NoError(t, err)

		require.NoError(t, g.Validate())
		assert.LessOrEqual(t, stats.Commits, n-1)
		assert.LessOrEqual(t, stats.FinalCable, stats.InitialCable+eps)
		assert.Len(t, g.Edges(), n-1)

		for i := 0; i < n; i++ {
			hops, err := g.hopsToRoot(i)
			require.NoError(t, err)
			assert.LessOrEqual(t, hops, n-1)
		}
	}
}

func TestSolveNeverCommitsAncestorPair(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	g := mustGroup(t, randomRecords(r, 30)...)

	// Replay every commit against a shadow copy taken before it happens.
	shadow := mustGroup(t, g.Records()...)
	_, err := Solve(g, WithMoveObserver(func(m Move) {
		cycle, err := shadow.IsAncestorOnPath(m.Target, m.Mover)
		require.NoError(t, err)
		assert.False(t, cycle, "committed %d -> %d although %d is on %d's path", m.Mover, m.Target, m.Mover, m.Target)
		shadow.commit(m)
	}))
	require.NoError(t, err)
	assert.Equal(t, shadow.Links(), g.Links())
}

func TestAverageDaysZeroPopulation(t *testing.T) {
	g := mustGroup(t, Record{}, Record{X: 1, Y: 1}, Record{X: 2, Y: 5})
	_, err := Solve(g)
	require.NoError(t, err)

	days, err := g.AverageDays()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeZeroPopulation))
	assert.Zero(t, days)
	assert.False(t, math.IsNaN(days))
}

func TestSnapshot(t *testing.T) {
	g := mustGroup(t,
		Record{X: 0, Y: 0, Population: 2},
		Record{X: 0, Y: 3, Population: 1},
		Record{X: 1, Y: 3, Population: 3},
	)
	_, err := Solve(g)
	require.NoError(t, err)

	v := g.Snapshot()
	assert.Equal(t, []Point{{0, 0}, {0, 3}, {1, 3}}, v.Coordinates)
	assert.Equal(t, []int{2, 1, 3}, v.Populations)
	assert.Equal(t, g.Edges(), v.Edges)
	assert.Equal(t, 6, g.TotalPopulation())
	assert.Equal(t, []Record{{0, 0, 2}, {0, 3, 1}, {1, 3, 3}}, g.Records())
}

func TestLinkKindString(t *testing.T) {
	assert.Equal(t, "root", LinkRoot.String())
	assert.Equal(t, "unassigned", LinkUnassigned.String())
	assert.Equal(t, "site", LinkSite.String())
	assert.Equal(t, "LinkKind(9)", LinkKind(9).String())
}
