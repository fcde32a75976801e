package main

import (
	"fmt"
	"slices"
	"sort"
)

// Mark flags a node as a routing destination
type Mark int

const (
	MarkNone Mark = iota
	MarkExit
)

func (m Mark) String() string {
	if m == MarkExit {
		return "exit"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler
func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mark) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*m = MarkNone
	case "exit":
		*m = MarkExit
	default:
		return fmt.Errorf("unknown mark %q", text)
	}
	return nil
}

// PathState tells whether a node's cached path can be trusted.
//
// Every edit of the graph puts all nodes back into PathStale. Only an explicit
// Route call moves them to PathComputed; nothing recomputes paths on its own.
// An empty path in PathStale means "unknown", in PathComputed it means
// "no exit is reachable".
type PathState int

const (
	PathStale PathState = iota
	PathComputed
)

func (s PathState) String() string {
	if s == PathComputed {
		return "computed"
	}
	return "stale"
}

// MarshalText implements encoding.TextMarshaler
func (s PathState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *PathState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "stale", "":
		*s = PathStale
	case "computed":
		*s = PathComputed
	default:
		return fmt.Errorf("unknown path state %q", text)
	}
	return nil
}

// Node is one routable space (a room or a door instance)
type Node struct {
	ID        int       `json:"id"`
	Color     string    `json:"color,omitempty"` // display only
	Center    *Point    `json:"center,omitempty"`
	Mark      Mark      `json:"mark"`
	Path      []int     `json:"path"`
	PathState PathState `json:"pathState"`
}

// EdgeKey is the canonical unordered pair of an edge, smaller id first
type EdgeKey struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewEdgeKey canonicalizes an unordered pair of node ids
func NewEdgeKey(id1, id2 int) EdgeKey {
	if id1 > id2 {
		id1, id2 = id2, id1
	}
	return EdgeKey{A: id1, B: id2}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.A, k.B)
}

// Edge represents a connection between two nodes with a cost
type Edge struct {
	To   int     // ID of the neighbouring node
	Cost float64 // Euclidean distance between the two centres
}

// Graph holds the nodes and edges of one floor plan.
//
// Edges live in two structures kept in sync by the mutation methods: a
// registry keyed by the canonical pair, and a bidirectional adjacency list
// used for routing. Both directions always carry the same weight.
//
// Graph is not safe for concurrent use. Callers serialize edits and routing.
type Graph struct {
	nodes   map[int]*Node
	adj     map[int][]Edge
	weights map[EdgeKey]float64
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[int]*Node),
		adj:     make(map[int][]Edge),
		weights: make(map[EdgeKey]float64),
	}
}

// Len returns the number of nodes
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges
func (g *Graph) EdgeCount() int { return len(g.weights) }

// Node returns a copy of the node with the given id
func (g *Graph) Node(id int) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	cp := *n
	cp.Path = slices.Clone(n.Path)
	if n.Center != nil {
		c := *n.Center
		cp.Center = &c
	}
	return cp, true
}

// NodeIDs returns all node ids in ascending order
func (g *Graph) NodeIDs() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// EdgeKeys returns all edge keys ordered by (A, B)
func (g *Graph) EdgeKeys() []EdgeKey {
	keys := make([]EdgeKey, 0, len(g.weights))
	for k := range g.weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})
	return keys
}

// Weight returns the weight of the edge between id1 and id2, in either order
func (g *Graph) Weight(id1, id2 int) (float64, bool) {
	w, ok := g.weights[NewEdgeKey(id1, id2)]
	return w, ok
}

// Neighbors returns the adjacency list of a node
func (g *Graph) Neighbors(id int) []Edge {
	return slices.Clone(g.adj[id])
}

// ExitIDs returns the ids of all exit-marked nodes in ascending order
func (g *Graph) ExitIDs() []int {
	var ids []int
	for _, id := range g.NodeIDs() {
		if g.nodes[id].Mark == MarkExit {
			ids = append(ids, id)
		}
	}
	return ids
}

// AddNode creates a node at center and returns its id (max existing id + 1,
// or 1 for an empty graph). All cached paths are cleared.
func (g *Graph) AddNode(center Point) int {
	id := 1
	for existing := range g.nodes {
		if existing >= id {
			id = existing + 1
		}
	}
	g.insertNode(id, &center)
	g.ClearPaths()
	return id
}

// RemoveNodes deletes the given nodes and every edge incident to any of them.
// Unknown ids reject the whole call before anything is removed.
func (g *Graph) RemoveNodes(ids []int) error {
	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			return fmt.Errorf("remove node %d: %w", id, ErrUnknownNode)
		}
	}

	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			continue // listed twice
		}
		for _, e := range g.adj[id] {
			g.unlink(e.To, id)
			delete(g.weights, NewEdgeKey(id, e.To))
		}
		delete(g.adj, id)
		delete(g.nodes, id)
	}

	g.ClearPaths()
	return nil
}

// AddEdge connects two existing nodes. The weight is the distance between
// their current centres. All cached paths are cleared.
func (g *Graph) AddEdge(id1, id2 int) (EdgeKey, error) {
	key := NewEdgeKey(id1, id2)
	w, err := g.newEdgeWeight(key)
	if err != nil {
		return key, err
	}
	g.insertEdge(key, w)
	g.ClearPaths()
	return key, nil
}

// ConnectAll adds every missing edge between the given nodes, as one edit.
// It fails without mutation if an id is unknown, a node has no centre, or no
// new pair is left to connect.
func (g *Graph) ConnectAll(ids []int) ([]EdgeKey, error) {
	ids = slices.Clone(ids)
	sort.Ints(ids)
	ids = slices.Compact(ids)
	if len(ids) < 2 {
		return nil, fmt.Errorf("connect %v: need at least two nodes: %w", ids, ErrInvalidEdge)
	}

	var keys []EdgeKey
	var weights []float64
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			key := NewEdgeKey(ids[i], ids[j])
			if _, exists := g.weights[key]; exists {
				continue
			}
			w, err := g.newEdgeWeight(key)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			weights = append(weights, w)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("connect %v: all pairs already connected: %w", ids, ErrInvalidEdge)
	}

	for i, key := range keys {
		g.insertEdge(key, weights[i])
	}
	g.ClearPaths()
	return keys, nil
}

// RemoveEdges deletes the given edges from the registry and from both
// directions of the adjacency. Unknown edges reject the whole call.
func (g *Graph) RemoveEdges(keys []EdgeKey) error {
	for _, k := range keys {
		k = NewEdgeKey(k.A, k.B)
		if _, ok := g.weights[k]; !ok {
			return fmt.Errorf("remove edge %s: no such edge: %w", k, ErrInvalidEdge)
		}
	}

	for _, k := range keys {
		k = NewEdgeKey(k.A, k.B)
		if _, ok := g.weights[k]; !ok {
			continue
		}
		delete(g.weights, k)
		g.unlink(k.A, k.B)
		g.unlink(k.B, k.A)
	}

	g.ClearPaths()
	return nil
}

// MoveNode sets a node's centre and recomputes the weight of every incident
// edge. Routing is not re-run: all cached paths are cleared instead.
func (g *Graph) MoveNode(id int, center Point) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("move node %d: %w", id, ErrUnknownNode)
	}
	n.Center = &center

	for i, e := range g.adj[id] {
		other := g.nodes[e.To]
		if other.Center == nil {
			continue
		}
		w := center.Distance(*other.Center)
		g.adj[id][i].Cost = w
		g.weights[NewEdgeKey(id, e.To)] = w
		for j, back := range g.adj[e.To] {
			if back.To == id {
				g.adj[e.To][j].Cost = w
			}
		}
	}

	g.ClearPaths()
	return nil
}

// SetMark sets the mark of the given nodes. Unknown ids reject the call.
func (g *Graph) SetMark(ids []int, mark Mark) error {
	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			return fmt.Errorf("mark node %d: %w", id, ErrUnknownNode)
		}
	}
	for _, id := range ids {
		g.nodes[id].Mark = mark
	}
	g.ClearPaths()
	return nil
}

// ClearMark removes the exit mark from the given nodes
func (g *Graph) ClearMark(ids []int) error {
	return g.SetMark(ids, MarkNone)
}

// SetColor changes the display colour of a node. Colours have no effect on
// routing, so cached paths are kept.
func (g *Graph) SetColor(id int, color string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("color node %d: %w", id, ErrUnknownNode)
	}
	n.Color = color
	return nil
}

// ClearPaths empties every cached path and marks it stale
func (g *Graph) ClearPaths() {
	for _, n := range g.nodes {
		n.Path = nil
		n.PathState = PathStale
	}
}

func (g *Graph) setPath(id int, path []int) {
	n := g.nodes[id]
	n.Path = path
	n.PathState = PathComputed
}

func (g *Graph) insertNode(id int, center *Point) *Node {
	n := &Node{ID: id, Center: center}
	g.nodes[id] = n
	return n
}

func (g *Graph) insertEdge(key EdgeKey, w float64) {
	g.weights[key] = w
	g.adj[key.A] = append(g.adj[key.A], Edge{To: key.B, Cost: w})
	g.adj[key.B] = append(g.adj[key.B], Edge{To: key.A, Cost: w})
}

// unlink removes the directed adjacency entry from -> to
func (g *Graph) unlink(from, to int) {
	rest := slices.DeleteFunc(g.adj[from], func(e Edge) bool {
		return e.To == to
	})
	if len(rest) == 0 {
		delete(g.adj, from)
		return
	}
	g.adj[from] = rest
}

// newEdgeWeight validates a prospective edge and computes its weight
func (g *Graph) newEdgeWeight(key EdgeKey) (float64, error) {
	if key.A == key.B {
		return 0, fmt.Errorf("edge %s: self-loop: %w", key, ErrInvalidEdge)
	}
	n1, ok1 := g.nodes[key.A]
	n2, ok2 := g.nodes[key.B]
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("edge %s: missing endpoint: %w", key, ErrInvalidEdge)
	}
	if _, exists := g.weights[key]; exists {
		return 0, fmt.Errorf("edge %s: already exists: %w", key, ErrInvalidEdge)
	}
	if n1.Center == nil || n2.Center == nil {
		return 0, fmt.Errorf("edge %s: endpoint has no centre: %w", key, ErrInvalidEdge)
	}
	return n1.Center.Distance(*n2.Center), nil
}
