package main

import "errors"

// Sentinel errors returned by the graph store, the routing engine and the
// raster loader. Wrap with fmt.Errorf and test with errors.Is.
var (
	// ErrInvalidEdge is returned for a self-loop, a missing endpoint, an
	// endpoint without a centre, or an edge that already exists.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrUnknownNode is returned when an operation names a node id that is not
	// in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoExit is returned by Route when no exit was supplied. Routing is
	// skipped entirely.
	ErrNoExit = errors.New("no exit was set")

	// ErrNotExit is returned by Route when a requested exit does not carry
	// the exit mark.
	ErrNotExit = errors.New("node is not marked as exit")

	// ErrUnresolvedCentroid marks an extracted entity that had no
	// confidence-bearing pixel. It is reported as a warning, not returned.
	ErrUnresolvedCentroid = errors.New("unresolved centroid")

	// ErrRasterMismatch is returned when the panoptic and confidence rasters
	// do not have the same dimensions.
	ErrRasterMismatch = errors.New("raster dimensions do not match")

	// ErrInvalidCommand is returned for an edit command that fails schema
	// validation or names an unknown operation.
	ErrInvalidCommand = errors.New("invalid command")
)
