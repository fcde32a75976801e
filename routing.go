package main

import (
	"fmt"
	"log"
	"math"
	"time"
)

// PathMode selects how a node's path is rebuilt once its nearest exit is known
type PathMode int

const (
	// PathGreedy walks from the node to the exit, always stepping to the
	// neighbour with the smallest distance in the exit's distance field. Each
	// step must strictly decrease the distance; when no neighbour does, the
	// path is left empty.
	//
	// The step ignores the weight of the edge taken, so the walk can detour
	// through a neighbour that lies close to the exit but far from the node.
	// The stored path is then longer than the distance reported for the node.
	PathGreedy PathMode = iota
	// PathPredecessor follows the predecessor links recorded by Dijkstra.
	PathPredecessor
)

func (m PathMode) String() string {
	if m == PathPredecessor {
		return "predecessor"
	}
	return "greedy"
}

// ParsePathMode parses "greedy" or "predecessor"
func ParsePathMode(s string) (PathMode, error) {
	switch s {
	case "greedy", "":
		return PathGreedy, nil
	case "predecessor":
		return PathPredecessor, nil
	default:
		return PathGreedy, fmt.Errorf("unknown path mode %q (must be greedy or predecessor)", s)
	}
}

// RouteOptions tunes a Route call
type RouteOptions struct {
	Mode PathMode
}

// RouteResult describes one routing run. Paths themselves are written back
// into the graph.
type RouteResult struct {
	ExitIDs     []int            // exits in the order they were supplied
	Fields      []*DistanceField // one per exit, same order as ExitIDs
	NearestExit map[int]int      // node id -> chosen exit id, reachable nodes only
	Unreachable []int            // nodes left with an empty path, ascending
}

// Distance returns the distance from id to its nearest exit, +Inf if none
func (r *RouteResult) Distance(id int) float64 {
	exitID, ok := r.NearestExit[id]
	if !ok {
		return math.Inf(1)
	}
	for i, e := range r.ExitIDs {
		if e == exitID {
			return r.Fields[i].Distance(id)
		}
	}
	return math.Inf(1)
}

// RouteMarked routes every node to the nearest exit-marked node
func RouteMarked(g *Graph, opts RouteOptions) (*RouteResult, error) {
	return Route(g, g.ExitIDs(), opts)
}

// Route computes, for every node, a path to its nearest exit and stores it on
// the node. One Dijkstra run is made per exit; on equal distances the exit
// listed first wins. Nodes that cannot reach any exit, or whose path cannot
// be rebuilt, get an empty path and are listed in Unreachable.
//
// exitIDs may reorder or subset the exit-marked nodes, so every stored path
// ends at a marked exit. Route fails with ErrNoExit when exitIDs is empty,
// ErrUnknownNode when an exit is not in the graph and ErrNotExit when it is
// not marked. In all cases the graph is left untouched.
func Route(g *Graph, exitIDs []int, opts RouteOptions) (*RouteResult, error) {
	if len(exitIDs) == 0 {
		return nil, ErrNoExit
	}
	for _, id := range exitIDs {
		if _, ok := g.nodes[id]; !ok {
			return nil, fmt.Errorf("exit %d: %w", id, ErrUnknownNode)
		}
	}
	for _, id := range exitIDs {
		if g.nodes[id].Mark != MarkExit {
			return nil, fmt.Errorf("exit %d: %w", id, ErrNotExit)
		}
	}

	startTime := time.Now()
	nodeIDs := g.NodeIDs()

	result := &RouteResult{
		ExitIDs:     append([]int(nil), exitIDs...),
		Fields:      make([]*DistanceField, len(exitIDs)),
		NearestExit: make(map[int]int, len(nodeIDs)),
	}
	for i, exitID := range exitIDs {
		result.Fields[i] = Dijkstra(nodeIDs, g.adj, exitID)
	}

	for _, id := range nodeIDs {
		best := -1
		minDist := math.Inf(1)
		for i, field := range result.Fields {
			if d := field.Distance(id); d < minDist {
				minDist = d
				best = i
			}
		}

		var path []int
		if best >= 0 {
			exitID := exitIDs[best]
			switch opts.Mode {
			case PathPredecessor:
				path = predecessorPath(id, exitID, result.Fields[best])
			default:
				path = greedyPath(id, exitID, g.adj, result.Fields[best])
			}
			if path != nil {
				result.NearestExit[id] = exitID
			}
		}
		if path == nil {
			path = []int{}
			result.Unreachable = append(result.Unreachable, id)
		}
		g.setPath(id, path)
	}

	log.Printf("   ✅ Routed %d nodes to %d exits in %v (%d unreachable)\n",
		len(nodeIDs), len(exitIDs), time.Since(startTime), len(result.Unreachable))
	return result, nil
}

// greedyPath rebuilds a path by descending the distance field. It returns nil
// when a node is reached from which no neighbour is strictly closer to the
// exit (zero-weight cycles, ties).
func greedyPath(id, exitID int, adj map[int][]Edge, field *DistanceField) []int {
	path := []int{id}
	cur := id

	for cur != exitID {
		curDist := field.Distance(cur)
		bestNeighbor := -1
		bestDist := curDist

		for _, e := range adj[cur] {
			d := field.Distance(e.To)
			if d >= curDist {
				continue
			}
			if bestNeighbor < 0 || d < bestDist || (d == bestDist && e.To < bestNeighbor) {
				bestNeighbor = e.To
				bestDist = d
			}
		}

		if bestNeighbor < 0 {
			return nil
		}
		path = append(path, bestNeighbor)
		cur = bestNeighbor
	}

	return path
}

// predecessorPath follows Dijkstra predecessors from id to the exit
func predecessorPath(id, exitID int, field *DistanceField) []int {
	path := []int{id}
	for cur := id; cur != exitID; {
		prev, ok := field.Prev[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	return path
}
