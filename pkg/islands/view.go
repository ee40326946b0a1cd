package islands

// Edge is one link in the final tree. To is the parent's index; root-attached
// sites point at [RootIndex].
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Edges returns one edge per non-root site, ordered by site index.
func (g *Group) Edges() []Edge {
	edges := make([]Edge, 0, max(len(g.sites)-1, 0))
	for i := range g.sites {
		if parent, ok := g.sites[i].Link.Parent(); ok {
			edges = append(edges, Edge{From: i, To: parent})
		}
	}
	return edges
}

// Coordinates returns every site's position, indexed like the group.
func (g *Group) Coordinates() []Point {
	out := make([]Point, len(g.sites))
	for i := range g.sites {
		out[i] = g.sites[i].position
	}
	return out
}

// Populations returns every site's inhabitant count, indexed like the group.
func (g *Group) Populations() []int {
	out := make([]int, len(g.sites))
	for i := range g.sites {
		out[i] = g.sites[i].population
	}
	return out
}

// View is a read-only snapshot of a group's final state for renderers and
// reports.
type View struct {
	Coordinates []Point `json:"coordinates"`
	Populations []int   `json:"populations"`
	Edges       []Edge  `json:"edges"`
}

// Snapshot returns a [View] of the group's current state.
func (g *Group) Snapshot() View {
	return View{
		Coordinates: g.Coordinates(),
		Populations: g.Populations(),
		Edges:       g.Edges(),
	}
}
