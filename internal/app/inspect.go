package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"workspace-graph/internal/graph"
)

// Inspect summarizes the graph cached in run, loading the workspace first
// when the run has none yet.
func (s Service) Inspect(ctx context.Context, req InspectRequest, run *RunContext) (InspectResult, error) {
	if run == nil {
		run = NewRunContext()
		defer run.Close()
	}
	g, cached := run.Graph()
	if !cached {
		result, err := s.Load(ctx, req.Load, run)
		if err != nil {
			return InspectResult{}, err
		}
		g = result.Graph
	}

	out := InspectResult{
		Workspace:   g.Workspace().Name,
		Fingerprint: g.Fingerprint(),
		Cached:      cached,
		Nodes:       len(g.Nodes()),
		Edges:       len(g.Edges()),
	}
	for _, project := range g.Projects() {
		out.Projects = append(out.Projects, InspectProject{
			Path:    project.Path,
			Name:    project.Name,
			Type:    project.Type,
			Targets: len(project.Targets),
		})
	}

	query := strings.TrimSpace(req.Target)
	if query == "" {
		return out, nil
	}
	for _, node := range g.NodesOfKind(graph.NodeKindTarget) {
		if !matchesTarget(node.ID, query) {
			continue
		}
		out.Targets = append(out.Targets, InspectTarget{
			ID:         node.ID.String(),
			Direct:     nodeStrings(g.DirectDependencies(node.ID)),
			Transitive: nodeStrings(g.TransitiveDependencies(node.ID)),
			Dependents: nodeStrings(g.Dependents(node.ID)),
		})
	}
	if len(out.Targets) == 0 {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("target %s not found in graph", query))
	}
	return out, nil
}

func matchesTarget(id graph.NodeID, query string) bool {
	if strings.Contains(query, ":") {
		return id.String() == query
	}
	return id.Name == query
}

func nodeStrings(ids []graph.NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
