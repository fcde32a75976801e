package main

// RenderNode is the presentation view of a node
type RenderNode struct {
	ID        int       `json:"id"`
	Center    *Point    `json:"center,omitempty"`
	Color     string    `json:"color,omitempty"`
	Mark      Mark      `json:"mark"`
	Path      []int     `json:"path"`
	PathState PathState `json:"pathState"`
	OnPath    bool      `json:"onPath"`
}

// RenderEdge is the presentation view of an edge
type RenderEdge struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Weight float64 `json:"weight"`
	OnPath bool    `json:"onPath"`
}

// RenderState is everything the UI needs to draw one floor-plan graph
type RenderState struct {
	Nodes       []RenderNode `json:"nodes"`
	Edges       []RenderEdge `json:"edges"`
	Highlighted []int        `json:"highlighted"`
	Exits       []int        `json:"exits"`
}

// RenderableState snapshots g for display. A node is on a highlighted path
// when its id appears in the cached path of any highlighted node; an edge is
// when its endpoints are consecutive in one of those paths. Unknown
// highlighted ids are ignored.
func RenderableState(g *Graph, highlighted []int) *RenderState {
	onPathNodes := make(map[int]bool)
	onPathEdges := make(map[EdgeKey]bool)
	shown := []int{}

	for _, id := range highlighted {
		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		shown = append(shown, id)
		for i, step := range n.Path {
			onPathNodes[step] = true
			if i > 0 {
				onPathEdges[NewEdgeKey(n.Path[i-1], step)] = true
			}
		}
	}

	state := &RenderState{
		Nodes:       make([]RenderNode, 0, g.Len()),
		Edges:       make([]RenderEdge, 0, g.EdgeCount()),
		Highlighted: shown,
		Exits:       g.ExitIDs(),
	}
	if state.Exits == nil {
		state.Exits = []int{}
	}

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		path := n.Path
		if path == nil {
			path = []int{}
		}
		state.Nodes = append(state.Nodes, RenderNode{
			ID:        id,
			Center:    n.Center,
			Color:     n.Color,
			Mark:      n.Mark,
			Path:      path,
			PathState: n.PathState,
			OnPath:    onPathNodes[id],
		})
	}

	for _, key := range g.EdgeKeys() {
		state.Edges = append(state.Edges, RenderEdge{
			A:      key.A,
			B:      key.B,
			Weight: g.weights[key],
			OnPath: onPathEdges[key],
		})
	}

	return state
}
