package app

import (
	"workspace-graph/internal/graph"
	"workspace-graph/internal/types"
)

type LoadRequest struct {
	Path string
	// DisableSandbox is handed to the manifest loader untouched.
	DisableSandbox bool
	MaxWorkers     int
}

type LoadResult struct {
	RunID       string
	Graph       *graph.Graph
	SideEffects []types.SideEffectDescriptor
	Environment types.MapperEnvironment
	LintIssues  []types.LintIssue
}

type LintRequest struct {
	Path           string
	DisableSandbox bool
	MaxWorkers     int
}

type LintResult struct {
	Issues []types.LintIssue
}

func (r LintResult) HasErrors() bool {
	return types.HasErrors(r.Issues)
}

type InspectRequest struct {
	Load LoadRequest
	// Target narrows the report to targets with this name, or to one target
	// when given as path:name.
	Target string
}

type InspectResult struct {
	Workspace   string
	Fingerprint string
	Cached      bool
	Projects    []InspectProject
	Nodes       int
	Edges       int
	Targets     []InspectTarget
}

type InspectProject struct {
	Path    string
	Name    string
	Type    types.ProjectType
	Targets int
}

type InspectTarget struct {
	ID         string
	Direct     []string
	Transitive []string
	Dependents []string
}

type WriteRequest struct {
	Load      LoadRequest
	OutputDir string
}

type WriteResult struct {
	OutputDir   string
	Fingerprint string
	SideEffects int
	LintIssues  []types.LintIssue
}
