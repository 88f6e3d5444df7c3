package mappers

import (
	"context"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"workspace-graph/internal/graph"
	"workspace-graph/internal/policies"
	"workspace-graph/internal/ports"
	"workspace-graph/internal/types"
)

const EnvPrunedTargets = "pruned_targets"

// PruneOrphanExternalTargetsMapper drops external targets that no local
// target reaches, keeping the ones the retention policy names together with
// everything they depend on. The graph is rebuilt when anything is dropped.
// Package-only graphs have no local roots and are left alone.
type PruneOrphanExternalTargetsMapper struct {
	Builder ports.GraphBuilderPort
	Policy  policies.RetentionPolicy
}

func (PruneOrphanExternalTargetsMapper) Name() string { return "prune_orphan_external_targets" }

func (m PruneOrphanExternalTargetsMapper) Map(ctx context.Context, g *graph.Graph, env types.MapperEnvironment) (*graph.Graph, []types.SideEffectDescriptor, types.MapperEnvironment, error) {
	snapshot := g.Snapshot()
	externalNames := map[string]string{}
	for _, project := range snapshot.Projects {
		if project.Type == types.ProjectTypeExternal {
			externalNames[project.Path] = project.Name
		}
	}

	targets := g.NodesOfKind(graph.NodeKindTarget)
	if !hasLocalTarget(targets) {
		return g, nil, env.With(EnvPrunedTargets, []string{}), nil
	}

	retaining := !m.Policy.Empty()
	keep := map[graph.NodeID]struct{}{}
	for _, node := range targets {
		root := !node.External
		if node.External && retaining && m.Policy.Retains(externalNames[node.Project], node.ID.Name) {
			root = true
		}
		if !root {
			continue
		}
		keep[node.ID] = struct{}{}
		for _, dep := range g.TransitiveDependencies(node.ID) {
			keep[dep] = struct{}{}
		}
	}

	var pruned []string
	projects := snapshot.Projects[:0]
	for _, project := range snapshot.Projects {
		if project.Type != types.ProjectTypeExternal {
			projects = append(projects, project)
			continue
		}
		kept := project.Targets[:0]
		for _, target := range project.Targets {
			if _, ok := keep[graph.TargetNode(project.Path, target.Name)]; ok {
				kept = append(kept, target)
				continue
			}
			pruned = append(pruned, types.TargetReference{ProjectPath: project.Path, Name: target.Name}.String())
		}
		if len(kept) == 0 {
			continue
		}
		project.Targets = kept
		projects = append(projects, project)
	}
	sort.Strings(pruned)
	env = env.With(EnvPrunedTargets, pruned)
	if len(pruned) == 0 {
		return g, nil, env, nil
	}

	snapshot.Projects = projects
	if m.Builder == nil {
		return nil, nil, env, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("graph builder is required to rebuild a pruned graph")
	}
	rebuilt, err := m.Builder.Build(ctx, snapshot)
	if err != nil {
		return nil, nil, env, err
	}
	log.Ctx(ctx).Debug().Int("pruned", len(pruned)).Msg("orphan external targets pruned")
	return rebuilt, nil, env, nil
}

func hasLocalTarget(nodes []graph.Node) bool {
	for _, node := range nodes {
		if !node.External {
			return true
		}
	}
	return false
}
