package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

const (
	maxUploadBytes  = 256 << 20
	maxCommandBytes = 1 << 20
)

// session is one floor plan loaded into the server. Its mutex serializes
// edits and routing on the graph.
type session struct {
	mu         sync.Mutex
	id         string
	graph      *Graph
	extraction *Extraction
	created    time.Time
}

// Server hosts graphs for the annotation UI
type Server struct {
	cfg       *Config
	opts      CommandOptions
	publisher Publisher

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewServer creates a server with no graphs loaded
func NewServer(cfg *Config, publisher Publisher) *Server {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Server{
		cfg:       cfg,
		opts:      cfg.CommandOptions(),
		publisher: publisher,
		sessions:  make(map[string]*session),
	}
}

// Handler returns the HTTP handler with all routes and CORS applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphs", s.createGraphHandler)
	mux.HandleFunc("GET /graphs/{id}", s.getGraphHandler)
	mux.HandleFunc("GET /graphs/{id}/lines", s.getGraphLinesHandler)
	mux.HandleFunc("POST /graphs/{id}/commands", s.commandHandler)
	mux.HandleFunc("POST /graphs/{id}/route", s.routeHandler)
	mux.HandleFunc("DELETE /graphs/{id}", s.deleteGraphHandler)
	mux.HandleFunc("GET /health", s.healthHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// POST /graphs - Detect a graph from an uploaded segmentation output
func (s *Server) createGraphHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🏗️  Create graph request received")
	defer log.Println("========================================")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Printf("❌ Invalid upload: %v\n", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}

	panFile, panHeader, err := r.FormFile("panoptic")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing panoptic file: %w", err))
		return
	}
	defer panFile.Close()
	confFile, confHeader, err := r.FormFile("confidence")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing confidence file: %w", err))
		return
	}
	defer confFile.Close()

	log.Printf("   Panoptic:   %s (%s)\n", panHeader.Filename, humanize.Bytes(uint64(panHeader.Size)))
	log.Printf("   Confidence: %s (%s)\n", confHeader.Filename, humanize.Bytes(uint64(confHeader.Size)))

	panoptic, confidence, err := ReadSegmentation(r.Context(), panFile, confFile)
	if err != nil {
		log.Printf("❌ %v\n", err)
		writeError(w, statusForError(err), err)
		return
	}

	graph, ext, err := DetectGraph(panoptic, confidence, logProgress())
	if err != nil {
		log.Printf("❌ %v\n", err)
		writeError(w, statusForError(err), err)
		return
	}

	// Snapshot before the session is shared
	numNodes, numEdges := graph.Len(), graph.EdgeCount()
	state := RenderableState(graph, nil)
	warnings := make([]string, 0, len(ext.Warnings))
	for _, warn := range ext.Warnings {
		warnings = append(warnings, warn.String())
	}

	sess := &session{
		id:         uuid.NewString(),
		graph:      graph,
		extraction: ext,
		created:    time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Printf("✅ Graph %s: %d nodes, %d edges\n", sess.id, numNodes, numEdges)

	s.publish(r.Context(), TopicGraphCreated, GraphCreated{
		GraphID:  sess.id,
		Nodes:    numNodes,
		Edges:    numEdges,
		Warnings: len(warnings),
	})

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"id":       sess.id,
		"width":    ext.Width,
		"height":   ext.Height,
		"numNodes": numNodes,
		"numEdges": numEdges,
		"warnings": warnings,
		"state":    state,
	})
}

// GET /graphs/{id} - Renderable state, optionally with highlighted paths
func (s *Server) getGraphHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	highlighted, err := parseIDList(r.URL.Query().Get("highlight"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess.mu.Lock()
	state := RenderableState(sess.graph, highlighted)
	sess.mu.Unlock()

	writeJSON(w, http.StatusOK, state)
}

// GET /graphs/{id}/lines - Graph as a GeoJSON feature collection
func (s *Server) getGraphLinesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	highlighted, err := parseIDList(r.URL.Query().Get("highlight"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess.mu.Lock()
	fc := RenderableState(sess.graph, highlighted).ToGeoJSON()
	sess.mu.Unlock()

	data, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// POST /graphs/{id}/commands - Apply one edit command
func (s *Server) commandHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading command: %w", err))
		return
	}
	cmd, err := ParseCommand(body)
	if err != nil {
		log.Printf("❌ %v\n", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	log.Printf("✏️  %s: %s\n", sess.id, cmd.Op)

	sess.mu.Lock()
	res, err := cmd.Apply(sess.graph, s.opts)
	sess.mu.Unlock()
	if err != nil {
		log.Printf("   ❌ %v\n", err)
		writeError(w, statusForError(err), err)
		return
	}

	s.publishResult(r.Context(), sess.id, res)
	writeJSON(w, http.StatusOK, res)
}

// RouteRequest optionally overrides the path mode of a route call and the
// order of the exits. Exits must already be marked.
type RouteRequest struct {
	Exits []int  `json:"exits,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

// POST /graphs/{id}/route - Route every node to its nearest exit
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")
	defer log.Println("========================================")

	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req RouteRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading request: %w", err))
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			log.Printf("❌ Invalid request body: %v\n", err)
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	opts := s.opts.Route
	if req.Mode != "" {
		mode, err := ParsePathMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts.Mode = mode
	}

	sess.mu.Lock()
	exits := req.Exits
	if len(exits) == 0 {
		exits = sess.graph.ExitIDs()
	}
	log.Printf("   Graph: %s, exits: %v, mode: %s\n", sess.id, exits, opts.Mode)
	result, err := Route(sess.graph, exits, opts)
	sess.mu.Unlock()
	if err != nil {
		log.Printf("❌ %v\n", err)
		writeError(w, statusForError(err), err)
		return
	}

	summary := summarizeRoute(result)
	s.publish(r.Context(), TopicRouteComputed, RouteComputed{
		GraphID:     sess.id,
		Exits:       summary.Exits,
		Unreachable: summary.Unreachable,
	})
	writeJSON(w, http.StatusOK, summary)
}

// DELETE /graphs/{id} - Drop a graph
func (s *Server) deleteGraphHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("graph %s not found", id))
		return
	}
	log.Printf("🗑️  Graph %s deleted\n", id)
	s.publish(r.Context(), TopicGraphDeleted, GraphDeleted{GraphID: id})
	w.WriteHeader(http.StatusNoContent)
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	numGraphs := len(s.sessions)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"numGraphs": numGraphs,
		"pathMode":  s.opts.Route.Mode.String(),
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := r.PathValue("id")
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("graph %s not found", id))
	}
	return sess, ok
}

func (s *Server) publishResult(ctx context.Context, graphID string, res *CommandResult) {
	if res.Route != nil {
		s.publish(ctx, TopicRouteComputed, RouteComputed{
			GraphID:     graphID,
			Exits:       res.Route.Exits,
			Unreachable: res.Route.Unreachable,
		})
		return
	}
	s.publish(ctx, TopicGraphChanged, GraphChanged{GraphID: graphID, Result: res})
	if res.Invalidated {
		s.publish(ctx, TopicPathsInvalidated, PathsInvalidated{GraphID: graphID})
	}
}

// publish never fails a request: events are best effort
func (s *Server) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		log.Printf("⚠️  Failed to publish %s: %v\n", topic, err)
	}
}

// logProgress logs extraction progress every tenth of the raster
func logProgress() ProgressFunc {
	last := -1
	return func(row, rows int) {
		pct := row * 100 / rows
		if pct/10 != last {
			last = pct / 10
			log.Printf("   %3d%% (%d/%d rows)\n", pct, row, rows)
		}
	}
}

// parseIDList parses a comma separated list of node ids
func parseIDList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid node id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCommand):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidEdge), errors.Is(err, ErrNoExit), errors.Is(err, ErrNotExit), errors.Is(err, ErrRasterMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}
