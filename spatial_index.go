package main

import (
	"github.com/dhconnelly/rtreego"
)

// Default pick distances in image pixels: node radius 12 plus a 2 px margin,
// and 12 px either side of an edge line.
const (
	DefaultPickRadius        = 14.0
	DefaultEdgePickTolerance = 12.0
)

// entryPadding keeps degenerate (zero-size) rectangles valid
const entryPadding = 0.5

// nodeEntry wraps a node centre for R-tree storage
type nodeEntry struct {
	ID     int
	Center Point
	BBox   rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// edgeEntry wraps an edge segment for R-tree storage
type edgeEntry struct {
	Key     EdgeKey
	Segment LineSegment
	BBox    rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *edgeEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// SpatialIndex answers "what is under the pointer" queries for one graph
// snapshot. Rebuild it after the graph changes.
type SpatialIndex struct {
	nodes *rtreego.Rtree
	edges *rtreego.Rtree
}

// NewSpatialIndex indexes the centres and edges of g. Nodes without a centre
// are not pickable.
func NewSpatialIndex(g *Graph) *SpatialIndex {
	si := &SpatialIndex{
		nodes: rtreego.NewTree(2, 25, 50), // 2D, min 25, max 50 entries per node
		edges: rtreego.NewTree(2, 25, 50),
	}

	for _, id := range g.NodeIDs() {
		n := g.nodes[id]
		if n.Center == nil {
			continue
		}
		si.nodes.Insert(&nodeEntry{
			ID:     id,
			Center: *n.Center,
			BBox:   rtreego.Point{n.Center.X, n.Center.Y}.ToRect(entryPadding),
		})
	}

	for _, key := range g.EdgeKeys() {
		c1, c2 := g.nodes[key.A].Center, g.nodes[key.B].Center
		if c1 == nil || c2 == nil {
			continue
		}
		seg := LineSegment{P1: *c1, P2: *c2}
		bbox, err := segmentRect(seg)
		if err != nil {
			continue
		}
		si.edges.Insert(&edgeEntry{Key: key, Segment: seg, BBox: bbox})
	}

	return si
}

// PickNode returns the node whose centre is nearest to p, if it lies within radius
func (si *SpatialIndex) PickNode(p Point, radius float64) (int, bool) {
	query, err := queryRect(p, radius)
	if err != nil {
		return 0, false
	}

	bestID, found := 0, false
	bestDist := radius
	for _, item := range si.nodes.SearchIntersect(query) {
		entry := item.(*nodeEntry)
		d := p.Distance(entry.Center)
		if d > radius {
			continue
		}
		if !found || d < bestDist || (d == bestDist && entry.ID < bestID) {
			bestID, bestDist, found = entry.ID, d, true
		}
	}
	return bestID, found
}

// PickEdge returns the edge nearest to p, measured perpendicular to the edge,
// among edges that p projects onto and that lie within tolerance
func (si *SpatialIndex) PickEdge(p Point, tolerance float64) (EdgeKey, bool) {
	query, err := queryRect(p, tolerance)
	if err != nil {
		return EdgeKey{}, false
	}

	var bestKey EdgeKey
	found := false
	bestDist := tolerance
	for _, item := range si.edges.SearchIntersect(query) {
		entry := item.(*edgeEntry)
		d, inside := entry.Segment.PickDistance(p)
		if !inside || d > tolerance {
			continue
		}
		if !found || d < bestDist || (d == bestDist && lessEdgeKey(entry.Key, bestKey)) {
			bestKey, bestDist, found = entry.Key, d, true
		}
	}
	return bestKey, found
}

// queryRect is the square of half-size r centred on p
func queryRect(p Point, r float64) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{p.X - r, p.Y - r},
		[]float64{2 * r, 2 * r},
	)
}

// segmentRect computes the padded axis-aligned bounding box of a segment
func segmentRect(seg LineSegment) (rtreego.Rect, error) {
	b := seg.Bound()
	return rtreego.NewRect(
		rtreego.Point{b.Min.X() - entryPadding, b.Min.Y() - entryPadding},
		[]float64{b.Max.X() - b.Min.X() + 2*entryPadding, b.Max.Y() - b.Min.Y() + 2*entryPadding},
	)
}

func lessEdgeKey(a, b EdgeKey) bool {
	if a.A != b.A {
		return a.A < b.A
	}
	return a.B < b.B
}
