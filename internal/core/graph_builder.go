package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"workspace-graph/internal/graph"
	"workspace-graph/internal/ports"
	"workspace-graph/internal/types"
)

// GraphBuilder turns a validated model snapshot into a graph.Graph.
type GraphBuilder struct {
	FileSystem ports.FileSystemPort
}

func NewGraphBuilder(fs ports.FileSystemPort) GraphBuilder {
	return GraphBuilder{FileSystem: fs}
}

func (b GraphBuilder) Build(ctx context.Context, snapshot types.WorkspaceWithProjects) (*graph.Graph, error) {
	if err := ValidateReferences(StageGraphBuild, snapshot.Projects); err != nil {
		return nil, err
	}
	if cycle := FindCycle(dependencyEdges(snapshot.Projects)); cycle != nil {
		return nil, &CycleError{Stage: StageGraphBuild, Cycle: cycle}
	}

	products := packageProducts(snapshot.Projects)
	var nodes []graph.Node
	var edges []graph.Edge
	for _, project := range snapshot.Projects {
		assert.NotEmpty(ctx, project.Path, "project path must be set")
		external := project.Type == types.ProjectTypeExternal
		for _, target := range project.Targets {
			from := graph.TargetNode(project.Path, target.Name)
			nodes = append(nodes, graph.Node{
				ID:       from,
				Project:  project.Path,
				Product:  target.Product,
				External: external,
			})
			for _, dep := range target.Dependencies {
				to, node, err := b.dependencyNode(project, dep, products)
				if err != nil {
					return nil, err
				}
				if node != nil {
					nodes = append(nodes, *node)
					if node.ID.Kind == graph.NodeKindPackageProduct {
						backing := products[types.PackageProduct{Package: dep.Package, Name: dep.Name}]
						edges = append(edges, graph.Edge{
							From: to,
							To:   graph.TargetNode(backing.ProjectPath, backing.Name),
							Kind: types.DependencyKindTarget,
						})
					}
				}
				edges = append(edges, graph.Edge{From: from, To: to, Kind: dep.Kind})
			}
		}
	}

	g, err := graph.New(snapshot.Workspace, snapshot.Projects, nodes, edges)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to assemble graph").
			WithCause(err)
	}
	log.Ctx(ctx).Debug().
		Int("nodes", len(g.Nodes())).
		Int("edges", len(g.Edges())).
		Msg("graph built")
	return g, nil
}

// dependencyNode returns the id a dependency points at and, for nodes that
// are not targets, the node to add.
func (b GraphBuilder) dependencyNode(project types.Project, dep types.TargetDependency, products map[types.PackageProduct]types.TargetReference) (graph.NodeID, *graph.Node, error) {
	if dep.Kind.Prebuilt() {
		if b.FileSystem != nil && !b.FileSystem.Exists(dep.Path) {
			return graph.NodeID{}, nil, structuralError(StageGraphBuild, KindFrameworkNotFound,
				fmt.Sprintf("Couldn't find framework at %s", dep.Path), dep.Path)
		}
		id := graph.PrebuiltNode(dep.Kind, dep.Path)
		return id, &graph.Node{ID: id}, nil
	}
	switch dep.Kind {
	case types.DependencyKindTarget:
		return graph.TargetNode(project.Path, dep.Name), nil, nil
	case types.DependencyKindProject:
		return graph.TargetNode(dep.ProjectPath, dep.Name), nil, nil
	case types.DependencyKindPackageProduct:
		product := types.PackageProduct{Package: dep.Package, Name: dep.Name}
		backing := products[product]
		id := graph.PackageProductNode(dep.Package, dep.Name)
		return id, &graph.Node{ID: id, Project: backing.ProjectPath, External: true}, nil
	default:
		id := graph.SDKNode(dep.Name)
		return id, &graph.Node{ID: id}, nil
	}
}
