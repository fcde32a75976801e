package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Edit command operations accepted from the UI
const (
	OpAddNode      = "add_node"
	OpRemoveNodes  = "remove_nodes"
	OpRemoveNodeAt = "remove_node_at"
	OpAddEdge      = "add_edge"
	OpAddEdges     = "add_edges"
	OpRemoveEdges  = "remove_edges"
	OpRemoveEdgeAt = "remove_edge_at"
	OpMoveNode     = "move_node"
	OpSetMark      = "set_mark"
	OpClearMark    = "clear_mark"
	OpSetColor     = "set_color"
	OpFindPath     = "find_path"
)

const commandSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["op"],
  "properties": {
    "op": {"enum": [
      "add_node", "remove_nodes", "remove_node_at", "add_edge", "add_edges",
      "remove_edges", "remove_edge_at", "move_node", "set_mark", "clear_mark",
      "set_color", "find_path"
    ]},
    "id": {"type": "integer"},
    "a": {"type": "integer"},
    "b": {"type": "integer"},
    "x": {"type": "number"},
    "y": {"type": "number"},
    "ids": {"type": "array", "items": {"type": "integer"}, "minItems": 1},
    "pairs": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["a", "b"],
        "properties": {"a": {"type": "integer"}, "b": {"type": "integer"}}
      }
    },
    "color": {"type": "string"}
  },
  "allOf": [
    {"if": {"properties": {"op": {"enum": ["add_node", "remove_node_at", "remove_edge_at"]}}},
     "then": {"required": ["x", "y"]}},
    {"if": {"properties": {"op": {"enum": ["remove_nodes", "add_edges", "set_mark", "clear_mark"]}}},
     "then": {"required": ["ids"]}},
    {"if": {"properties": {"op": {"const": "add_edge"}}},
     "then": {"required": ["a", "b"]}},
    {"if": {"properties": {"op": {"const": "remove_edges"}}},
     "then": {"required": ["pairs"]}},
    {"if": {"properties": {"op": {"const": "move_node"}}},
     "then": {"required": ["id", "x", "y"]}},
    {"if": {"properties": {"op": {"const": "set_color"}}},
     "then": {"required": ["id", "color"]}}
  ]
}`

var commandSchema = jsonschema.MustCompileString("command.schema.json", commandSchemaJSON)

// Command is one edit request from the UI
type Command struct {
	Op    string    `json:"op"`
	ID    int       `json:"id,omitempty"`
	A     int       `json:"a,omitempty"`
	B     int       `json:"b,omitempty"`
	X     float64   `json:"x,omitempty"`
	Y     float64   `json:"y,omitempty"`
	IDs   []int     `json:"ids,omitempty"`
	Pairs []EdgeKey `json:"pairs,omitempty"`
	Color string    `json:"color,omitempty"`
}

// CommandOptions carries the settings commands need besides the graph
type CommandOptions struct {
	PickRadius        float64
	EdgePickTolerance float64
	Route             RouteOptions
}

// DefaultCommandOptions returns the pick distances of the desktop tool and
// greedy path reconstruction
func DefaultCommandOptions() CommandOptions {
	return CommandOptions{
		PickRadius:        DefaultPickRadius,
		EdgePickTolerance: DefaultEdgePickTolerance,
	}
}

// RouteSummary is the JSON-friendly outcome of a find_path command
type RouteSummary struct {
	Exits       []int           `json:"exits"`
	NearestExit map[int]int     `json:"nearestExit"`
	Distances   map[int]float64 `json:"distances"` // shortest distance, reachable nodes only; a greedy path may be longer
	Unreachable []int           `json:"unreachable"`
}

// CommandResult reports what a command changed
type CommandResult struct {
	Op          string        `json:"op"`
	NodeIDs     []int         `json:"nodeIds,omitempty"` // created or removed nodes
	Edges       []EdgeKey     `json:"edges,omitempty"`   // created or removed edges
	Invalidated bool          `json:"invalidated"`       // cached paths were cleared
	Route       *RouteSummary `json:"route,omitempty"`
}

// ParseCommand validates data against the command schema and decodes it
func ParseCommand(data []byte) (*Command, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	if err := commandSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}

	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return &cmd, nil
}

// Apply runs the command against g. A failing command leaves g unchanged.
func (c *Command) Apply(g *Graph, opts CommandOptions) (*CommandResult, error) {
	res := &CommandResult{Op: c.Op, Invalidated: true}
	at := Point{X: c.X, Y: c.Y}

	switch c.Op {
	case OpAddNode:
		res.NodeIDs = []int{g.AddNode(at)}

	case OpRemoveNodes:
		if err := g.RemoveNodes(c.IDs); err != nil {
			return nil, err
		}
		res.NodeIDs = c.IDs

	case OpRemoveNodeAt:
		id, ok := NewSpatialIndex(g).PickNode(at, opts.PickRadius)
		if !ok {
			return nil, fmt.Errorf("no node at (%.1f, %.1f): %w", c.X, c.Y, ErrUnknownNode)
		}
		if err := g.RemoveNodes([]int{id}); err != nil {
			return nil, err
		}
		res.NodeIDs = []int{id}

	case OpAddEdge:
		key, err := g.AddEdge(c.A, c.B)
		if err != nil {
			return nil, err
		}
		res.Edges = []EdgeKey{key}

	case OpAddEdges:
		keys, err := g.ConnectAll(c.IDs)
		if err != nil {
			return nil, err
		}
		res.Edges = keys

	case OpRemoveEdges:
		if err := g.RemoveEdges(c.Pairs); err != nil {
			return nil, err
		}
		for _, p := range c.Pairs {
			res.Edges = append(res.Edges, NewEdgeKey(p.A, p.B))
		}

	case OpRemoveEdgeAt:
		key, ok := NewSpatialIndex(g).PickEdge(at, opts.EdgePickTolerance)
		if !ok {
			return nil, fmt.Errorf("no edge at (%.1f, %.1f): %w", c.X, c.Y, ErrInvalidEdge)
		}
		if err := g.RemoveEdges([]EdgeKey{key}); err != nil {
			return nil, err
		}
		res.Edges = []EdgeKey{key}

	case OpMoveNode:
		if err := g.MoveNode(c.ID, at); err != nil {
			return nil, err
		}
		res.NodeIDs = []int{c.ID}

	case OpSetMark:
		if err := g.SetMark(c.IDs, MarkExit); err != nil {
			return nil, err
		}
		res.NodeIDs = c.IDs

	case OpClearMark:
		if err := g.ClearMark(c.IDs); err != nil {
			return nil, err
		}
		res.NodeIDs = c.IDs

	case OpSetColor:
		if err := g.SetColor(c.ID, c.Color); err != nil {
			return nil, err
		}
		res.NodeIDs = []int{c.ID}
		res.Invalidated = false

	case OpFindPath:
		route, err := RouteMarked(g, opts.Route)
		if err != nil {
			return nil, err
		}
		res.Invalidated = false
		res.Route = summarizeRoute(route)

	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidCommand, c.Op)
	}

	return res, nil
}

func summarizeRoute(r *RouteResult) *RouteSummary {
	s := &RouteSummary{
		Exits:       r.ExitIDs,
		NearestExit: r.NearestExit,
		Distances:   make(map[int]float64, len(r.NearestExit)),
		Unreachable: r.Unreachable,
	}
	for id := range r.NearestExit {
		s.Distances[id] = r.Distance(id)
	}
	if s.Unreachable == nil {
		s.Unreachable = []int{}
	}
	sort.Ints(s.Unreachable)
	return s
}
