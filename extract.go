package main

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// Entity is one routable region found in the panoptic raster
type Entity struct {
	ID         PanopticID `json:"id"`
	Center     *Point     `json:"center,omitempty"` // pixel of maximum confidence; nil if unresolved
	Confidence float64    `json:"confidence"`
}

// Adjacency is an unordered pair of touching entities, A < B
type Adjacency struct {
	A      PanopticID `json:"a"`
	B      PanopticID `json:"b"`
	Weight float64    `json:"weight"`
}

// ExtractionWarning reports an entity whose centre could not be resolved.
// The entity still becomes a node, but every adjacency touching it is dropped.
type ExtractionWarning struct {
	Entity  PanopticID   `json:"entity"`
	Dropped []PanopticID `json:"dropped,omitempty"` // neighbours whose edge was dropped
	Err     error        `json:"-"`
}

func (w ExtractionWarning) String() string {
	return fmt.Sprintf("%s: %v (%d edges dropped)", w.Entity, w.Err, len(w.Dropped))
}

// Extraction is the result of one pass over a segmentation output
type Extraction struct {
	Width       int
	Height      int
	Entities    []Entity    // ascending by id
	Adjacencies []Adjacency // ascending by (A, B)
	Warnings    []ExtractionWarning
}

// ProgressFunc is called after each raster row has been scanned
type ProgressFunc func(row, rows int)

// ExtractEntities scans the panoptic raster once and returns the routable
// entities, their centres and their 4-connected adjacency.
//
// The centre of an entity is the first pixel, in row-major order, holding
// the entity's maximum confidence. Weights are only computed after the scan,
// once both centres of every pair are known.
func ExtractEntities(panoptic *PanopticRaster, confidence *ConfidenceRaster, progress ProgressFunc) (*Extraction, error) {
	if panoptic.Width != confidence.Width || panoptic.Height != confidence.Height {
		return nil, fmt.Errorf("panoptic %dx%d, confidence %dx%d: %w",
			panoptic.Width, panoptic.Height, confidence.Width, confidence.Height, ErrRasterMismatch)
	}

	startTime := time.Now()
	log.Printf("🏗️  Extracting entities from %s pixels (%dx%d)...\n",
		humanize.Comma(int64(panoptic.Width*panoptic.Height)), panoptic.Width, panoptic.Height)

	type pair struct{ a, b PanopticID }

	maxConf := make(map[PanopticID]float64)
	centers := make(map[PanopticID]Point)
	seen := make(map[PanopticID]bool)
	adjacent := make(map[pair]bool)

	// Neighbour offsets: up, down, left, right
	offsets := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

	for i := 0; i < panoptic.Height; i++ {
		for j := 0; j < panoptic.Width; j++ {
			id := panoptic.At(i, j)
			if !id.Label().IsRoutable() {
				continue
			}
			seen[id] = true

			// NaN fails the comparison and never becomes a centre
			if c := confidence.At(i, j); c >= 0 {
				if best, ok := maxConf[id]; !ok || c > best {
					maxConf[id] = c
					centers[id] = Point{X: float64(j), Y: float64(i)}
				}
			}

			for _, off := range offsets {
				ni, nj := i+off[0], j+off[1]
				if ni < 0 || ni >= panoptic.Height || nj < 0 || nj >= panoptic.Width {
					continue
				}
				other := panoptic.At(ni, nj)
				if other == id || !other.Label().IsRoutable() {
					continue
				}
				p := pair{id, other}
				if p.a > p.b {
					p.a, p.b = p.b, p.a
				}
				adjacent[p] = true
			}
		}
		if progress != nil {
			progress(i+1, panoptic.Height)
		}
	}

	ext := &Extraction{Width: panoptic.Width, Height: panoptic.Height}

	ids := make([]PanopticID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	unresolved := make(map[PanopticID]int) // id -> index into ext.Warnings
	for _, id := range ids {
		e := Entity{ID: id}
		if c, ok := centers[id]; ok {
			e.Center = &c
			e.Confidence = maxConf[id]
		} else {
			unresolved[id] = len(ext.Warnings)
			ext.Warnings = append(ext.Warnings, ExtractionWarning{Entity: id, Err: ErrUnresolvedCentroid})
		}
		ext.Entities = append(ext.Entities, e)
	}

	pairs := make([]pair, 0, len(adjacent))
	for p := range adjacent {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x].a != pairs[y].a {
			return pairs[x].a < pairs[y].a
		}
		return pairs[x].b < pairs[y].b
	})

	for _, p := range pairs {
		wa, badA := unresolved[p.a]
		wb, badB := unresolved[p.b]
		if badA || badB {
			if badA {
				ext.Warnings[wa].Dropped = append(ext.Warnings[wa].Dropped, p.b)
			}
			if badB {
				ext.Warnings[wb].Dropped = append(ext.Warnings[wb].Dropped, p.a)
			}
			continue
		}
		ca, cb := centers[p.a], centers[p.b]
		ext.Adjacencies = append(ext.Adjacencies, Adjacency{A: p.a, B: p.b, Weight: ca.Distance(cb)})
	}

	log.Printf("   ✅ Found %d entities, %d adjacencies in %v\n",
		len(ext.Entities), len(ext.Adjacencies), time.Since(startTime))
	for _, w := range ext.Warnings {
		log.Printf("   ⚠️  %s\n", w)
	}

	return ext, nil
}

// BuildGraph turns an extraction into a graph. Node ids are the panoptic ids
// of the entities; edges carry the weights computed by the extraction.
func BuildGraph(ext *Extraction) *Graph {
	g := NewGraph()
	for _, e := range ext.Entities {
		var center *Point
		if e.Center != nil {
			c := *e.Center
			center = &c
		}
		g.insertNode(int(e.ID), center)
	}
	for _, a := range ext.Adjacencies {
		g.insertEdge(NewEdgeKey(int(a.A), int(a.B)), a.Weight)
	}
	return g
}

// DetectGraph extracts entities from a segmentation output and builds the
// initial graph from them
func DetectGraph(panoptic *PanopticRaster, confidence *ConfidenceRaster, progress ProgressFunc) (*Graph, *Extraction, error) {
	ext, err := ExtractEntities(panoptic, confidence, progress)
	if err != nil {
		return nil, nil, err
	}
	return BuildGraph(ext), ext, nil
}
