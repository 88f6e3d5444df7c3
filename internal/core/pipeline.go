package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"workspace-graph/internal/graph"
	"workspace-graph/internal/ports"
	"workspace-graph/internal/types"
)

// ModelPipeline runs model mappers in order over the workspace snapshot.
type ModelPipeline struct {
	Mappers []ports.ModelMapperPort
}

func NewModelPipeline(mappers ...ports.ModelMapperPort) ModelPipeline {
	return ModelPipeline{Mappers: mappers}
}

// Run threads the snapshot through every pass. Each pass receives a deep
// copy of the previous output. When a pass fails nothing accumulated so
// far is returned.
func (p ModelPipeline) Run(ctx context.Context, snapshot types.WorkspaceWithProjects) (types.WorkspaceWithProjects, []types.SideEffectDescriptor, error) {
	current := snapshot.Clone()
	var effects []types.SideEffectDescriptor
	for i, mapper := range p.Mappers {
		if err := ctx.Err(); err != nil {
			return types.WorkspaceWithProjects{}, nil, fmt.Errorf("%s canceled before pass %d (%s): %w", StageModelMapping, i, mapper.Name(), err)
		}
		next, passEffects, err := mapper.Map(ctx, current.Clone())
		if err != nil {
			return types.WorkspaceWithProjects{}, nil, &MapperPassError{
				Stage:    StageModelMapping,
				Pass:     mapper.Name(),
				Index:    i,
				Snapshot: describeSnapshot(current),
				Err:      err,
			}
		}
		effects = append(effects, passEffects...)
		current = next
		log.Ctx(ctx).Debug().
			Str("pass", mapper.Name()).
			Int("side_effects", len(passEffects)).
			Msg("model mapper applied")
	}
	return current, effects, nil
}

// GraphPipeline runs graph mappers in order, threading the environment.
type GraphPipeline struct {
	Mappers []ports.GraphMapperPort
}

func NewGraphPipeline(mappers ...ports.GraphMapperPort) GraphPipeline {
	return GraphPipeline{Mappers: mappers}
}

func (p GraphPipeline) Run(ctx context.Context, g *graph.Graph, env types.MapperEnvironment) (*graph.Graph, []types.SideEffectDescriptor, types.MapperEnvironment, error) {
	current := g
	var effects []types.SideEffectDescriptor
	for i, mapper := range p.Mappers {
		if err := ctx.Err(); err != nil {
			return nil, nil, types.MapperEnvironment{}, fmt.Errorf("%s canceled before pass %d (%s): %w", StageGraphMapping, i, mapper.Name(), err)
		}
		next, passEffects, nextEnv, err := mapper.Map(ctx, current, env)
		if err != nil {
			return nil, nil, types.MapperEnvironment{}, &MapperPassError{
				Stage:    StageGraphMapping,
				Pass:     mapper.Name(),
				Index:    i,
				Snapshot: describeGraph(current),
				Err:      err,
			}
		}
		if next != nil {
			current = next
		}
		effects = append(effects, passEffects...)
		env = nextEnv
		log.Ctx(ctx).Debug().
			Str("pass", mapper.Name()).
			Int("side_effects", len(passEffects)).
			Int("environment", env.Len()).
			Msg("graph mapper applied")
	}
	return current, effects, env, nil
}

func describeSnapshot(snapshot types.WorkspaceWithProjects) string {
	return fmt.Sprintf("workspace=%s projects=%d", snapshot.Workspace.Name, len(snapshot.Projects))
}

func describeGraph(g *graph.Graph) string {
	if g == nil {
		return "graph=<nil>"
	}
	return fmt.Sprintf("workspace=%s nodes=%d edges=%d", g.Workspace().Name, len(g.Nodes()), len(g.Edges()))
}
