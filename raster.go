package main

import "fmt"

// PanopticRaster is a row-major grid of panoptic ids, one per pixel
type PanopticRaster struct {
	Width  int
	Height int
	IDs    []PanopticID
}

// NewPanopticRaster allocates a background-filled raster
func NewPanopticRaster(width, height int) *PanopticRaster {
	return &PanopticRaster{Width: width, Height: height, IDs: make([]PanopticID, width*height)}
}

// PanopticRasterFromRows builds a raster from rows of raw panoptic ids
func PanopticRasterFromRows(rows [][]int) (*PanopticRaster, error) {
	if len(rows) == 0 {
		return NewPanopticRaster(0, 0), nil
	}
	r := NewPanopticRaster(len(rows[0]), len(rows))
	for i, row := range rows {
		if len(row) != r.Width {
			return nil, fmt.Errorf("row %d has %d pixels, want %d", i, len(row), r.Width)
		}
		for j, v := range row {
			r.Set(i, j, PanopticID(v))
		}
	}
	return r, nil
}

// At returns the id at row i, column j
func (r *PanopticRaster) At(i, j int) PanopticID { return r.IDs[i*r.Width+j] }

// Set stores the id at row i, column j
func (r *PanopticRaster) Set(i, j int, id PanopticID) { r.IDs[i*r.Width+j] = id }

// ConfidenceRaster is a row-major grid of instance-centre confidences.
// Negative or NaN values mark pixels without a confidence.
type ConfidenceRaster struct {
	Width  int
	Height int
	Values []float64
}

// NewConfidenceRaster allocates a zero-filled raster
func NewConfidenceRaster(width, height int) *ConfidenceRaster {
	return &ConfidenceRaster{Width: width, Height: height, Values: make([]float64, width*height)}
}

// ConfidenceRasterFromRows builds a raster from rows of values
func ConfidenceRasterFromRows(rows [][]float64) (*ConfidenceRaster, error) {
	if len(rows) == 0 {
		return NewConfidenceRaster(0, 0), nil
	}
	r := NewConfidenceRaster(len(rows[0]), len(rows))
	for i, row := range rows {
		if len(row) != r.Width {
			return nil, fmt.Errorf("row %d has %d pixels, want %d", i, len(row), r.Width)
		}
		for j, v := range row {
			r.Set(i, j, v)
		}
	}
	return r, nil
}

// At returns the confidence at row i, column j
func (r *ConfidenceRaster) At(i, j int) float64 { return r.Values[i*r.Width+j] }

// Set stores the confidence at row i, column j
func (r *ConfidenceRaster) Set(i, j int, v float64) { r.Values[i*r.Width+j] = v }
