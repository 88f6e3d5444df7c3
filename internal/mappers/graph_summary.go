package mappers

import (
	"context"

	"workspace-graph/internal/graph"
	"workspace-graph/internal/types"
)

const (
	EnvGraphFingerprint = "graph.fingerprint"
	EnvGraphNodes       = "graph.nodes"
	EnvGraphEdges       = "graph.edges"
)

// GraphSummaryMapper records the fingerprint and size of the final graph
// in the environment.
type GraphSummaryMapper struct{}

func (GraphSummaryMapper) Name() string { return "graph_summary" }

func (GraphSummaryMapper) Map(_ context.Context, g *graph.Graph, env types.MapperEnvironment) (*graph.Graph, []types.SideEffectDescriptor, types.MapperEnvironment, error) {
	env = env.
		With(EnvGraphFingerprint, g.Fingerprint()).
		With(EnvGraphNodes, len(g.Nodes())).
		With(EnvGraphEdges, len(g.Edges()))
	return g, nil, env, nil
}
