package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToGeoJSON renders the state as a feature collection in pixel coordinates:
// a Point per node with a centre, a LineString per edge, and a LineString per
// highlighted node's path. Every feature carries a "kind" property.
func (s *RenderState) ToGeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	centers := make(map[int]Point, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Center == nil {
			continue
		}
		centers[n.ID] = *n.Center

		f := geojson.NewFeature(n.Center.Orb())
		f.ID = n.ID
		f.Properties["kind"] = "node"
		f.Properties["id"] = n.ID
		f.Properties["mark"] = n.Mark.String()
		f.Properties["onPath"] = n.OnPath
		if n.Color != "" {
			f.Properties["color"] = n.Color
		}
		fc.Append(f)
	}

	for _, e := range s.Edges {
		c1, ok1 := centers[e.A]
		c2, ok2 := centers[e.B]
		if !ok1 || !ok2 {
			continue
		}
		f := geojson.NewFeature(orb.LineString{c1.Orb(), c2.Orb()})
		f.Properties["kind"] = "edge"
		f.Properties["a"] = e.A
		f.Properties["b"] = e.B
		f.Properties["weight"] = e.Weight
		f.Properties["onPath"] = e.OnPath
		fc.Append(f)
	}

	paths := make(map[int][]int, len(s.Nodes))
	for _, n := range s.Nodes {
		paths[n.ID] = n.Path
	}
	for _, id := range s.Highlighted {
		path := paths[id]
		if len(path) < 2 {
			continue
		}
		line := make(orb.LineString, 0, len(path))
		for _, step := range path {
			if c, ok := centers[step]; ok {
				line = append(line, c.Orb())
			}
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "path"
		f.Properties["from"] = id
		f.Properties["to"] = path[len(path)-1]
		fc.Append(f)
	}

	return fc
}
