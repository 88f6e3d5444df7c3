package core

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"workspace-graph/internal/types"
)

type CycleDetector struct{}

func NewCycleDetector() CycleDetector {
	return CycleDetector{}
}

// Detect walks the dependency edges of every project target and returns a
// CycleError for the first cycle found. Prebuilt and sdk dependencies are
// leaves and never take part in a cycle.
func (d CycleDetector) Detect(ctx context.Context, projects []types.Project) error {
	adjacency := dependencyEdges(projects)
	cycle := FindCycle(adjacency)
	if cycle != nil {
		log.Ctx(ctx).Debug().Strs("cycle", cycle).Msg("circular dependency found")
		return &CycleError{Stage: StageCycleCheck, Cycle: cycle}
	}
	log.Ctx(ctx).Debug().Int("nodes", len(adjacency)).Msg("no circular dependencies")
	return nil
}

// FindCycle runs a depth-first search with unvisited, in-progress and done
// states. Nodes and neighbours are visited in sorted order, so the cycle
// returned for a given edge set is always the same. A self-loop is reported
// as a single node.
func FindCycle(adjacency map[string][]string) []string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(adjacency))
	var path []string
	var cycle []string

	var visit func(node string) bool
	visit = func(node string) bool {
		state[node] = inProgress
		path = append(path, node)

		neighbours := append([]string(nil), adjacency[node]...)
		sort.Strings(neighbours)
		for _, next := range neighbours {
			switch state[next] {
			case inProgress:
				start := len(path) - 1
				for path[start] != next {
					start--
				}
				cycle = append([]string(nil), path[start:]...)
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}

		path = path[:len(path)-1]
		state[node] = done
		return false
	}

	nodes := make([]string, 0, len(adjacency))
	for node := range adjacency {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if state[node] != unvisited {
			continue
		}
		if visit(node) {
			return cycle
		}
	}
	return nil
}

// dependencyEdges flattens target and package product edges into string
// keyed adjacency. Package products point at the external target that
// backs them.
func dependencyEdges(projects []types.Project) map[string][]string {
	products := packageProducts(projects)
	adjacency := map[string][]string{}
	for _, project := range projects {
		for _, target := range project.Targets {
			from := types.TargetReference{ProjectPath: project.Path, Name: target.Name}.String()
			if _, ok := adjacency[from]; !ok {
				adjacency[from] = nil
			}
			for _, dep := range target.Dependencies {
				switch dep.Kind {
				case types.DependencyKindTarget:
					to := types.TargetReference{ProjectPath: project.Path, Name: dep.Name}.String()
					adjacency[from] = append(adjacency[from], to)
				case types.DependencyKindProject:
					to := types.TargetReference{ProjectPath: dep.ProjectPath, Name: dep.Name}.String()
					adjacency[from] = append(adjacency[from], to)
				case types.DependencyKindPackageProduct:
					product := types.PackageProduct{Package: dep.Package, Name: dep.Name}
					to := packageNodeKey(product)
					adjacency[from] = append(adjacency[from], to)
					if backing, ok := products[product]; ok {
						adjacency[to] = appendMissing(adjacency[to], backing.String())
					}
				}
			}
		}
	}
	return adjacency
}

func packageNodeKey(product types.PackageProduct) string {
	return "package:" + product.String()
}

func appendMissing(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}
