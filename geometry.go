package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a position in image pixel coordinates (X = column, Y = row)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Orb converts the point to an orb.Point
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return planar.Distance(p.Orb(), other.Orb())
}

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 Point
}

// Bound returns the axis-aligned bounding box of the segment
func (s LineSegment) Bound() orb.Bound {
	return orb.MultiPoint{s.P1.Orb(), s.P2.Orb()}.Bound()
}

// PickDistance returns the perpendicular distance from p to the segment line
// and whether p projects between the two endpoints. Points that project
// outside the segment are never considered close to it.
func (s LineSegment) PickDistance(p Point) (float64, bool) {
	x1, y1 := s.P1.X, s.P1.Y
	x2, y2 := s.P2.X, s.P2.Y

	// Angle at p between the two endpoints must be obtuse (or right)
	if (x1-p.X)*(x2-p.X)+(y1-p.Y)*(y2-p.Y) > 0 {
		return 0, false
	}

	length := s.P1.Distance(s.P2)
	if length == 0 {
		return p.Distance(s.P1), true
	}

	cross := (x2-x1)*(y1-p.Y) - (x1-p.X)*(y2-y1)
	return math.Abs(cross) / length, true
}
