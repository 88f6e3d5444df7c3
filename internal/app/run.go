package app

import (
	"sync"

	"github.com/google/uuid"

	"workspace-graph/internal/graph"
)

// RunContext is the per-run state shared by the stages of one command. It
// holds the first graph built during the run in a write-once slot.
type RunContext struct {
	ID string

	mu     sync.RWMutex
	graph  *graph.Graph
	closed bool
}

func NewRunContext() *RunContext {
	return &RunContext{ID: uuid.NewString()}
}

// Graph returns the cached graph, if one has been stored.
func (r *RunContext) Graph() (*graph.Graph, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph, r.graph != nil
}

// StoreGraph fills the slot once. It reports false when a graph is already
// cached or the run has been closed.
func (r *RunContext) StoreGraph(g *graph.Graph) bool {
	if g == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.graph != nil {
		return false
	}
	r.graph = g
	return true
}

// Close drops the cached graph. Later stores are ignored.
func (r *RunContext) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graph = nil
	r.closed = true
}
