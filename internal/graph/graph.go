package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sort"
	"strings"

	"workspace-graph/internal/types"
)

type Graph struct {
	workspace    types.Workspace
	projects     []types.Project
	projectIndex map[string]int
	nodes        []Node
	nodeIndex    map[NodeID]int
	edges        []Edge
	direct       map[NodeID][]NodeID
	dependents   map[NodeID][]NodeID
	transitive   map[NodeID][]NodeID
}

// New assembles a graph from resolved nodes and edges. Every edge endpoint
// must be a node and the edge set must be acyclic.
func New(workspace types.Workspace, projects []types.Project, nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		workspace:    workspace.Clone(),
		projectIndex: make(map[string]int, len(projects)),
		nodeIndex:    make(map[NodeID]int, len(nodes)),
		direct:       make(map[NodeID][]NodeID, len(nodes)),
		dependents:   make(map[NodeID][]NodeID, len(nodes)),
		transitive:   make(map[NodeID][]NodeID, len(nodes)),
	}

	g.projects = make([]types.Project, len(projects))
	for i, project := range projects {
		g.projects[i] = project.Clone()
	}
	sort.SliceStable(g.projects, func(i, j int) bool {
		return g.projects[i].Path < g.projects[j].Path
	})
	for i, project := range g.projects {
		g.projectIndex[project.Path] = i
	}

	g.nodes = append([]Node(nil), nodes...)
	sort.SliceStable(g.nodes, func(i, j int) bool {
		return g.nodes[i].ID.Less(g.nodes[j].ID)
	})
	g.nodes = slices.CompactFunc(g.nodes, func(a, b Node) bool {
		return a.ID == b.ID
	})
	for i, node := range g.nodes {
		g.nodeIndex[node.ID] = i
	}

	g.edges = append([]Edge(nil), edges...)
	sort.SliceStable(g.edges, func(i, j int) bool {
		return g.edges[i].less(g.edges[j])
	})
	g.edges = slices.Compact(g.edges)
	for _, edge := range g.edges {
		if _, ok := g.nodeIndex[edge.From]; !ok {
			return nil, fmt.Errorf("edge references unknown node: %s", edge.From)
		}
		if _, ok := g.nodeIndex[edge.To]; !ok {
			return nil, fmt.Errorf("edge references unknown node: %s", edge.To)
		}
		g.direct[edge.From] = appendUnique(g.direct[edge.From], edge.To)
		g.dependents[edge.To] = appendUnique(g.dependents[edge.To], edge.From)
	}
	for id := range g.dependents {
		sortIDs(g.dependents[id])
	}

	if err := g.computeClosures(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) computeClosures() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[NodeID]int, len(g.nodes))
	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		switch state[id] {
		case done:
			return nil
		case inProgress:
			return fmt.Errorf("cycle detected at %s", id)
		}
		state[id] = inProgress
		seen := map[NodeID]struct{}{}
		var closure []NodeID
		for _, dep := range g.direct[id] {
			if err := visit(dep); err != nil {
				return err
			}
			for _, candidate := range append([]NodeID{dep}, g.transitive[dep]...) {
				if _, ok := seen[candidate]; ok {
					continue
				}
				seen[candidate] = struct{}{}
				closure = append(closure, candidate)
			}
		}
		sortIDs(closure)
		g.transitive[id] = closure
		state[id] = done
		return nil
	}
	for _, node := range g.nodes {
		if err := visit(node.ID); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) Workspace() types.Workspace {
	return g.workspace.Clone()
}

// Projects returns copies of the projects sorted by path.
func (g *Graph) Projects() []types.Project {
	out := make([]types.Project, len(g.projects))
	for i, project := range g.projects {
		out[i] = project.Clone()
	}
	return out
}

func (g *Graph) Project(path string) (types.Project, bool) {
	idx, ok := g.projectIndex[path]
	if !ok {
		return types.Project{}, false
	}
	return g.projects[idx].Clone(), true
}

// Snapshot returns a deep copy of the models the graph was built from.
func (g *Graph) Snapshot() types.WorkspaceWithProjects {
	return types.WorkspaceWithProjects{
		Workspace: g.Workspace(),
		Projects:  g.Projects(),
	}
}

func (g *Graph) Nodes() []Node {
	return slices.Clone(g.nodes)
}

func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

func (g *Graph) Node(id NodeID) (Node, bool) {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// NodesOfKind returns the nodes of one kind in canonical order.
func (g *Graph) NodesOfKind(kind NodeKind) []Node {
	var out []Node
	for _, node := range g.nodes {
		if node.ID.Kind == kind {
			out = append(out, node)
		}
	}
	return out
}

// DirectDependencies returns the ids the node depends on, in edge order.
func (g *Graph) DirectDependencies(id NodeID) []NodeID {
	return slices.Clone(g.direct[id])
}

// TransitiveDependencies returns every node reachable from id, sorted.
func (g *Graph) TransitiveDependencies(id NodeID) []NodeID {
	return slices.Clone(g.transitive[id])
}

// Dependents returns the ids that depend directly on id, sorted.
func (g *Graph) Dependents(id NodeID) []NodeID {
	return slices.Clone(g.dependents[id])
}

// DependsOn reports whether to is reachable from from.
func (g *Graph) DependsOn(from NodeID, to NodeID) bool {
	_, found := slices.BinarySearchFunc(g.transitive[from], to, compareIDs)
	return found
}

// Fingerprint hashes the canonical node and edge listing.
func (g *Graph) Fingerprint() string {
	var builder strings.Builder
	builder.WriteString(g.workspace.Name)
	builder.WriteString("\n")
	for _, node := range g.nodes {
		builder.WriteString("node ")
		builder.WriteString(node.ID.String())
		builder.WriteString(" ")
		builder.WriteString(string(node.Product))
		builder.WriteString("\n")
	}
	for _, edge := range g.edges {
		builder.WriteString("edge ")
		builder.WriteString(edge.From.String())
		builder.WriteString(" -> ")
		builder.WriteString(edge.To.String())
		builder.WriteString(" ")
		builder.WriteString(string(edge.Kind))
		builder.WriteString("\n")
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}

func appendUnique(ids []NodeID, id NodeID) []NodeID {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func sortIDs(ids []NodeID) {
	slices.SortFunc(ids, compareIDs)
}

func compareIDs(a NodeID, b NodeID) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	default:
		return 1
	}
}
