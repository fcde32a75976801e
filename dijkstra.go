package main

import (
	"container/heap"
	"math"
)

// queueItem is an entry of the Dijkstra open set
type queueItem struct {
	NodeID int     // ID of the node in the graph
	Dist   float64 // Tentative distance from the source
	Index  int     // Index in the heap
}

// PriorityQueue implements heap.Interface keyed by tentative distance
type PriorityQueue []*queueItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].Dist != pq[j].Dist {
		return pq[i].Dist < pq[j].Dist
	}
	return pq[i].NodeID < pq[j].NodeID
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*queueItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	*pq = old[0 : n-1]
	return item
}

// DistanceField is the output of one single-source Dijkstra run
type DistanceField struct {
	Source int
	Dist   map[int]float64 // +Inf for unreachable nodes
	Prev   map[int]int     // predecessor towards Source; absent for Source and unreachable nodes
}

// Distance returns the shortest distance from the source to id, +Inf when
// id is unreachable or unknown
func (f *DistanceField) Distance(id int) float64 {
	d, ok := f.Dist[id]
	if !ok {
		return math.Inf(1)
	}
	return d
}

// Reachable reports whether id has a finite distance
func (f *DistanceField) Reachable(id int) bool {
	return !math.IsInf(f.Distance(id), 1)
}

// Dijkstra computes shortest distances from source to every node.
// nodeIDs lists every node of the graph, adj is the bidirectional adjacency.
func Dijkstra(nodeIDs []int, adj map[int][]Edge, source int) *DistanceField {
	field := &DistanceField{
		Source: source,
		Dist:   make(map[int]float64, len(nodeIDs)),
		Prev:   make(map[int]int),
	}
	for _, id := range nodeIDs {
		field.Dist[id] = math.Inf(1)
	}
	field.Dist[source] = 0

	openSet := &PriorityQueue{}
	heap.Init(openSet)

	start := &queueItem{NodeID: source, Dist: 0}
	heap.Push(openSet, start)

	openSetMap := map[int]*queueItem{source: start}
	closedSet := make(map[int]bool)

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*queueItem)
		delete(openSetMap, current.NodeID)
		closedSet[current.NodeID] = true

		for _, edge := range adj[current.NodeID] {
			neighborID := edge.To
			if closedSet[neighborID] {
				continue
			}

			tentative := current.Dist + edge.Cost
			if tentative >= field.Distance(neighborID) {
				continue
			}
			field.Dist[neighborID] = tentative
			field.Prev[neighborID] = current.NodeID

			if neighbor, exists := openSetMap[neighborID]; exists {
				// Found a better path to this neighbor
				neighbor.Dist = tentative
				heap.Fix(openSet, neighbor.Index)
			} else {
				neighbor = &queueItem{NodeID: neighborID, Dist: tentative}
				heap.Push(openSet, neighbor)
				openSetMap[neighborID] = neighbor
			}
		}
	}

	return field
}
