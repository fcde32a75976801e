package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event topic constants
const (
	TopicGraphCreated     = "evac.graph.created"
	TopicGraphChanged     = "evac.graph.changed"
	TopicPathsInvalidated = "evac.paths.invalidated"
	TopicRouteComputed    = "evac.route.computed"
	TopicGraphDeleted     = "evac.graph.deleted"
)

// Event types

type GraphCreated struct {
	GraphID  string `json:"graph_id"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Warnings int    `json:"warnings"`
}

type GraphChanged struct {
	GraphID string         `json:"graph_id"`
	Result  *CommandResult `json:"result"`
}

type PathsInvalidated struct {
	GraphID string `json:"graph_id"`
}

type RouteComputed struct {
	GraphID     string `json:"graph_id"`
	Exits       []int  `json:"exits"`
	Unreachable []int  `json:"unreachable"`
}

type GraphDeleted struct {
	GraphID string `json:"graph_id"`
}

// Publisher publishes graph events
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NoopPublisher discards every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// NATSPublisher publishes JSON-encoded events to NATS subjects named after
// the topic
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("evac-planner"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	return p.conn.Publish(topic, data)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NewPublisher connects to NATS when url is set and falls back to a
// NoopPublisher otherwise
func NewPublisher(url string) (Publisher, error) {
	if url == "" {
		return NoopPublisher{}, nil
	}
	return NewNATSPublisher(url)
}
