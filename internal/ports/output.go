package ports

import (
	"workspace-graph/internal/graph"
	"workspace-graph/internal/types"
)

type GraphOutputPort interface {
	WriteGraph(g *graph.Graph) error
	WriteSideEffects(effects []types.SideEffectDescriptor) error
	WriteEnvironment(env types.MapperEnvironment) error
}
