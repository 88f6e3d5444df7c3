package ports

import (
	"context"

	"workspace-graph/internal/graph"
	"workspace-graph/internal/types"
)

// ModelMapperPort is one pass over the workspace model snapshot. A pass
// returns a new snapshot and must not modify its input.
type ModelMapperPort interface {
	Name() string
	Map(ctx context.Context, snapshot types.WorkspaceWithProjects) (types.WorkspaceWithProjects, []types.SideEffectDescriptor, error)
}

// GraphMapperPort is one pass over the built graph.
type GraphMapperPort interface {
	Name() string
	Map(ctx context.Context, g *graph.Graph, env types.MapperEnvironment) (*graph.Graph, []types.SideEffectDescriptor, types.MapperEnvironment, error)
}

// GraphBuilderPort builds a graph from a model snapshot. Graph mappers that
// reshape the graph rebuild it through this port.
type GraphBuilderPort interface {
	Build(ctx context.Context, snapshot types.WorkspaceWithProjects) (*graph.Graph, error)
}
