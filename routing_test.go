package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathOf(t *testing.T, g *Graph, id int) []int {
	t.Helper()
	n, ok := g.Node(id)
	require.True(t, ok, "node %d", id)
	return n.Path
}

func TestRoute_LineToSingleExit(t *testing.T) {
	g := lineGraph(t, 0, 5, 12)
	require.NoError(t, g.SetMark([]int{3}, MarkExit))

	res, err := RouteMarked(g, RouteOptions{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, pathOf(t, g, 1))
	assert.Equal(t, []int{2, 3}, pathOf(t, g, 2))
	assert.Equal(t, []int{3}, pathOf(t, g, 3))

	assert.Equal(t, 12.0, res.Distance(1))
	assert.Equal(t, 7.0, res.Distance(2))
	assert.Equal(t, 0.0, res.Distance(3))
	assert.Equal(t, map[int]int{1: 3, 2: 3, 3: 3}, res.NearestExit)
	assert.Empty(t, res.Unreachable)

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		assert.Equal(t, PathComputed, n.PathState)
	}
}

func TestRoute_TieGoesToFirstExit(t *testing.T) {
	tests := []struct {
		name     string
		exits    []int
		wantExit int
		wantPath []int
	}{
		{"exit 1 listed first", []int{1, 5}, 1, []int{3, 2, 1}},
		{"exit 5 listed first", []int{5, 1}, 5, []int{3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := lineGraph(t, 0, 1, 2, 3, 4)
			require.NoError(t, g.SetMark([]int{1, 5}, MarkExit))
			res, err := Route(g, tt.exits, RouteOptions{})
			require.NoError(t, err)

			assert.Equal(t, 2.0, res.Fields[0].Distance(3))
			assert.Equal(t, 2.0, res.Fields[1].Distance(3))
			assert.Equal(t, tt.wantExit, res.NearestExit[3])
			assert.Equal(t, tt.wantPath, pathOf(t, g, 3))

			assert.Equal(t, []int{2, 1}, pathOf(t, g, 2))
			assert.Equal(t, []int{4, 5}, pathOf(t, g, 4))
		})
	}
}

func TestRoute_NearerExitWins(t *testing.T) {
	// 1 --3-- 2 --4-- 3 --2-- 4
	g := lineGraph(t, 0, 3, 7, 9)
	require.NoError(t, g.SetMark([]int{1, 4}, MarkExit))
	res, err := Route(g, []int{1, 4}, RouteOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.NearestExit[2])
	assert.Equal(t, 4, res.NearestExit[3])
	assert.Equal(t, 3.0, res.Distance(2))
	assert.Equal(t, 2.0, res.Distance(3))
}

func TestRoute_RemovedBridge(t *testing.T) {
	g := lineGraph(t, 0, 5, 12)
	require.NoError(t, g.RemoveNodes([]int{2}))
	require.NoError(t, g.SetMark([]int{3}, MarkExit))

	res, err := RouteMarked(g, RouteOptions{})
	require.NoError(t, err)

	assert.Equal(t, []int{}, pathOf(t, g, 1))
	n, _ := g.Node(1)
	assert.Equal(t, PathComputed, n.PathState)
	assert.Equal(t, []int{1}, res.Unreachable)
	assert.Equal(t, []int{3}, pathOf(t, g, 3))
	_, ok := res.NearestExit[1]
	assert.False(t, ok)
}

func TestRoute_NoExit(t *testing.T) {
	g := lineGraph(t, 0, 5, 12)

	_, err := RouteMarked(g, RouteOptions{})
	require.ErrorIs(t, err, ErrNoExit)
	_, err = Route(g, []int{}, RouteOptions{})
	require.ErrorIs(t, err, ErrNoExit)

	requireAllStale(t, g)
}

func TestRoute_UnknownExit(t *testing.T) {
	g := lineGraph(t, 0, 5, 12)
	_, err := Route(g, []int{3, 8}, RouteOptions{})
	require.ErrorIs(t, err, ErrUnknownNode)
	requireAllStale(t, g)
}

func TestRoute_UnmarkedExit(t *testing.T) {
	g := lineGraph(t, 0, 5, 12)
	_, err := Route(g, []int{3}, RouteOptions{})
	require.ErrorIs(t, err, ErrNotExit)
	requireAllStale(t, g)

	// Only a subset of the marked exits may be requested
	require.NoError(t, g.SetMark([]int{1}, MarkExit))
	_, err = Route(g, []int{1, 3}, RouteOptions{})
	require.ErrorIs(t, err, ErrNotExit)
	requireAllStale(t, g)

	require.NoError(t, g.SetMark([]int{3}, MarkExit))
	res, err := Route(g, []int{3}, RouteOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, pathOf(t, g, 1))
	assert.Equal(t, 3, res.NearestExit[1])
}

func TestRoute_GreedyDetour(t *testing.T) {
	// 1 reaches exit 4 through 2 (5+5) or through 3 (sqrt(101)+1). Node 3 sits
	// next to the exit, so the greedy walk takes the longer way.
	build := func(t *testing.T) *Graph {
		g := NewGraph()
		g.AddNode(Point{X: 0, Y: 0})
		g.AddNode(Point{X: 5, Y: 0})
		g.AddNode(Point{X: 10, Y: 1})
		g.AddNode(Point{X: 10, Y: 0})
		for _, pair := range [][2]int{{1, 2}, {2, 4}, {1, 3}, {3, 4}} {
			_, err := g.AddEdge(pair[0], pair[1])
			require.NoError(t, err)
		}
		require.NoError(t, g.SetMark([]int{4}, MarkExit))
		return g
	}
	length := func(t *testing.T, g *Graph, path []int) float64 {
		t.Helper()
		total := 0.0
		for i := 1; i < len(path); i++ {
			w, ok := g.Weight(path[i-1], path[i])
			require.True(t, ok)
			total += w
		}
		return total
	}

	t.Run("greedy", func(t *testing.T) {
		g := build(t)
		res, err := RouteMarked(g, RouteOptions{Mode: PathGreedy})
		require.NoError(t, err)
		path := pathOf(t, g, 1)
		assert.Equal(t, []int{1, 3, 4}, path)
		assert.Equal(t, 10.0, res.Distance(1))
		assert.InDelta(t, 11.0499, length(t, g, path), 1e-4)
	})

	t.Run("predecessor", func(t *testing.T) {
		g := build(t)
		res, err := RouteMarked(g, RouteOptions{Mode: PathPredecessor})
		require.NoError(t, err)
		path := pathOf(t, g, 1)
		assert.Equal(t, []int{1, 2, 4}, path)
		assert.Equal(t, 10.0, res.Distance(1))
		assert.Equal(t, 10.0, length(t, g, path))
	})
}

func TestRoute_ZeroWeightEdge(t *testing.T) {
	// Nodes 1 and 2 share a centre, so the edge between them weighs 0 and
	// node 1 has no neighbour strictly closer to the exit.
	build := func(t *testing.T) *Graph {
		g := NewGraph()
		g.AddNode(Point{X: 0, Y: 0})
		g.AddNode(Point{X: 0, Y: 0})
		g.AddNode(Point{X: 5, Y: 0})
		_, err := g.AddEdge(1, 2)
		require.NoError(t, err)
		_, err = g.AddEdge(2, 3)
		require.NoError(t, err)
		require.NoError(t, g.SetMark([]int{3}, MarkExit))
		return g
	}

	t.Run("greedy leaves the path empty", func(t *testing.T) {
		g := build(t)
		res, err := RouteMarked(g, RouteOptions{Mode: PathGreedy})
		require.NoError(t, err)
		assert.Equal(t, []int{}, pathOf(t, g, 1))
		assert.Equal(t, []int{2, 3}, pathOf(t, g, 2))
		assert.Equal(t, []int{1}, res.Unreachable)
	})

	t.Run("predecessor follows Dijkstra", func(t *testing.T) {
		g := build(t)
		res, err := RouteMarked(g, RouteOptions{Mode: PathPredecessor})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, pathOf(t, g, 1))
		assert.Empty(t, res.Unreachable)
		assert.Equal(t, 5.0, res.Distance(1))
	})
}

func TestRoute_GreedyTieBreaksOnLowestID(t *testing.T) {
	// Diamond 1-{2,3}-4 where both middle nodes are equally far from exit 4
	g := NewGraph()
	g.AddNode(Point{X: 0, Y: 0})
	g.AddNode(Point{X: 3, Y: 4})
	g.AddNode(Point{X: 3, Y: -4})
	g.AddNode(Point{X: 6, Y: 0})
	_, err := g.ConnectAll([]int{1, 2})
	require.NoError(t, err)
	_, err = g.ConnectAll([]int{1, 3})
	require.NoError(t, err)
	_, err = g.ConnectAll([]int{2, 4})
	require.NoError(t, err)
	_, err = g.ConnectAll([]int{3, 4})
	require.NoError(t, err)
	require.NoError(t, g.SetMark([]int{4}, MarkExit))

	_, err = Route(g, []int{4}, RouteOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, pathOf(t, g, 1))
}

func TestRoute_PathsEndAtExits(t *testing.T) {
	// 3x3 grid with unit spacing and two components
	g := NewGraph()
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			g.AddNode(Point{X: float64(x), Y: float64(y)})
		}
	}
	g.AddNode(Point{X: 10, Y: 10}) // 10, isolated
	for id := 1; id <= 9; id++ {
		if id%3 != 0 {
			_, err := g.AddEdge(id, id+1)
			require.NoError(t, err)
		}
		if id <= 6 {
			_, err := g.AddEdge(id, id+3)
			require.NoError(t, err)
		}
	}

	require.NoError(t, g.SetMark([]int{1, 9}, MarkExit))

	for _, mode := range []PathMode{PathGreedy, PathPredecessor} {
		t.Run(mode.String(), func(t *testing.T) {
			res, err := Route(g, []int{1, 9}, RouteOptions{Mode: mode})
			require.NoError(t, err)

			for _, id := range g.NodeIDs() {
				path := pathOf(t, g, id)
				if id == 10 {
					assert.Empty(t, path)
					continue
				}
				require.NotEmpty(t, path, "node %d", id)
				assert.Equal(t, id, path[0])
				exit := path[len(path)-1]
				assert.Equal(t, res.NearestExit[id], exit)
				assert.Contains(t, []int{1, 9}, exit)

				length := 0.0
				for i := 1; i < len(path); i++ {
					w, ok := g.Weight(path[i-1], path[i])
					require.True(t, ok, "path of %d uses a missing edge", id)
					length += w
				}
				if mode == PathPredecessor {
					assert.InDelta(t, res.Distance(id), length, 1e-9)
				} else {
					assert.GreaterOrEqual(t, length+1e-9, res.Distance(id))
				}
			}
			assert.Equal(t, []int{10}, res.Unreachable)
		})
	}
}

func TestParsePathMode(t *testing.T) {
	m, err := ParsePathMode("")
	require.NoError(t, err)
	assert.Equal(t, PathGreedy, m)

	m, err = ParsePathMode("predecessor")
	require.NoError(t, err)
	assert.Equal(t, PathPredecessor, m)

	_, err = ParsePathMode("astar")
	assert.Error(t, err)
}
