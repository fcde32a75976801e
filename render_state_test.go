package main

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routedBranch is 1-2-3 with exit 3 plus a side node 4 hanging off 2
func routedBranch(t *testing.T) *Graph {
	t.Helper()
	g := lineGraph(t, 0, 5, 12)
	g.AddNode(Point{X: 5, Y: 5})
	_, err := g.AddEdge(2, 4)
	require.NoError(t, err)
	require.NoError(t, g.SetMark([]int{3}, MarkExit))
	require.NoError(t, g.SetColor(4, "#00ff00"))
	_, err = RouteMarked(g, RouteOptions{})
	require.NoError(t, err)
	return g
}

func TestRenderableState_Highlight(t *testing.T) {
	g := routedBranch(t)

	state := RenderableState(g, []int{1, 99})

	assert.Equal(t, []int{1}, state.Highlighted)
	assert.Equal(t, []int{3}, state.Exits)
	require.Len(t, state.Nodes, 4)

	onPath := map[int]bool{}
	for _, n := range state.Nodes {
		onPath[n.ID] = n.OnPath
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: false}, onPath)

	edgeOnPath := map[EdgeKey]bool{}
	for _, e := range state.Edges {
		edgeOnPath[EdgeKey{A: e.A, B: e.B}] = e.OnPath
	}
	assert.Equal(t, map[EdgeKey]bool{
		{A: 1, B: 2}: true,
		{A: 2, B: 3}: true,
		{A: 2, B: 4}: false,
	}, edgeOnPath)

	assert.Equal(t, "#00ff00", state.Nodes[3].Color)
	assert.Equal(t, MarkExit, state.Nodes[2].Mark)
	assert.Equal(t, 7.0, state.Edges[1].Weight)
}

func TestRenderableState_StaleGraph(t *testing.T) {
	g := routedBranch(t)
	g.AddNode(Point{X: 30, Y: 30})

	state := RenderableState(g, []int{1})
	for _, n := range state.Nodes {
		assert.False(t, n.OnPath, "node %d", n.ID)
		assert.Equal(t, PathStale, n.PathState)
		assert.NotNil(t, n.Path)
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":[]`)
	assert.Contains(t, string(data), `"pathState":"stale"`)
}

func TestRenderState_ToGeoJSON(t *testing.T) {
	g := routedBranch(t)
	g.insertNode(50, nil)

	fc := RenderableState(g, []int{1}).ToGeoJSON()

	kinds := map[string]int{}
	for _, f := range fc.Features {
		kinds[f.Properties.MustString("kind")]++
	}
	assert.Equal(t, map[string]int{"node": 4, "edge": 3, "path": 1}, kinds)

	var path orb.LineString
	for _, f := range fc.Features {
		if f.Properties.MustString("kind") == "path" {
			path = f.Geometry.(orb.LineString)
			assert.Equal(t, 1, f.Properties["from"])
			assert.Equal(t, 3, f.Properties["to"])
		}
	}
	assert.Equal(t, orb.LineString{{0, 0}, {5, 0}, {12, 0}}, path)

	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
	assert.Contains(t, string(data), `"color":"#00ff00"`)
}
