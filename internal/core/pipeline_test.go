package core

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-graph/internal/graph"
	"workspace-graph/internal/types"
)

type emittingMapper struct {
	name   string
	effect string
	err    error
}

func (m emittingMapper) Name() string { return m.name }

func (m emittingMapper) Map(_ context.Context, snapshot types.WorkspaceWithProjects) (types.WorkspaceWithProjects, []types.SideEffectDescriptor, error) {
	if m.err != nil {
		return types.WorkspaceWithProjects{}, []types.SideEffectDescriptor{types.FileSideEffect("partial", nil)}, m.err
	}
	snapshot.Workspace.Projects = append(snapshot.Workspace.Projects, m.name)
	return snapshot, []types.SideEffectDescriptor{types.FileSideEffect(m.effect, nil)}, nil
}

// mutatingMapper edits its input in place before returning it.
type mutatingMapper struct{}

func (mutatingMapper) Name() string { return "mutating" }

func (mutatingMapper) Map(_ context.Context, snapshot types.WorkspaceWithProjects) (types.WorkspaceWithProjects, []types.SideEffectDescriptor, error) {
	snapshot.Projects[0].Name = "mutated"
	snapshot.Projects[0].Targets[0].Name = "mutated"
	return snapshot, nil, nil
}

func effectPaths(effects []types.SideEffectDescriptor) []string {
	var out []string
	for _, effect := range effects {
		out = append(out, effect.Path)
	}
	return out
}

func TestModelPipelineRunsPassesInOrder(t *testing.T) {
	pipeline := NewModelPipeline(
		emittingMapper{name: "P1", effect: "A"},
		emittingMapper{name: "P2", effect: "B"},
	)

	snapshot, effects, err := pipeline.Run(t.Context(), types.WorkspaceWithProjects{})
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"A", "B"}, effectPaths(effects)); diff != "" {
		t.Fatalf("unexpected side effects (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"P1", "P2"}, snapshot.Workspace.Projects); diff != "" {
		t.Fatalf("later pass must observe earlier output (-want +got):\n%s", diff)
	}
}

func TestModelPipelineFailureDiscardsSideEffects(t *testing.T) {
	cause := errors.New("boom")
	pipeline := NewModelPipeline(
		emittingMapper{name: "P1", effect: "A"},
		emittingMapper{name: "P2", err: cause},
		emittingMapper{name: "P3", effect: "C"},
	)

	_, effects, err := pipeline.Run(t.Context(), types.WorkspaceWithProjects{Workspace: types.Workspace{Name: "W"}})
	require.Error(t, err)
	assert.Nil(t, effects)
	assert.True(t, errors.Is(err, ErrMapperPass))
	assert.True(t, errors.Is(err, cause))

	var passErr *MapperPassError
	require.True(t, errors.As(err, &passErr))
	assert.Equal(t, "P2", passErr.Pass)
	assert.Equal(t, 1, passErr.Index)
	assert.Equal(t, StageModelMapping, passErr.Stage)
	assert.Equal(t, "workspace=W projects=0", passErr.Snapshot)
}

func TestModelPipelineIsolatesInput(t *testing.T) {
	input := types.WorkspaceWithProjects{Projects: []types.Project{
		{Path: "/A", Name: "A", Targets: []types.Target{{Name: "A"}}},
	}}

	_, _, err := NewModelPipeline(mutatingMapper{}).Run(t.Context(), input)
	require.NoError(t, err)
	assert.Equal(t, "A", input.Projects[0].Name)
	assert.Equal(t, "A", input.Projects[0].Targets[0].Name)
}

func TestModelPipelineStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, effects, err := NewModelPipeline(emittingMapper{name: "P1", effect: "A"}).Run(ctx, types.WorkspaceWithProjects{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, effects)
}

type envMapper struct {
	key   string
	value string
	err   error
}

func (m envMapper) Name() string { return "env:" + m.key }

func (m envMapper) Map(_ context.Context, g *graph.Graph, env types.MapperEnvironment) (*graph.Graph, []types.SideEffectDescriptor, types.MapperEnvironment, error) {
	if m.err != nil {
		return nil, nil, env, m.err
	}
	return g, []types.SideEffectDescriptor{types.FileSideEffect(m.key, nil)}, env.With(m.key, m.value+env.String("prefix")), nil
}

func emptyGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(types.Workspace{Name: "W"}, nil, nil, nil)
	require.NoError(t, err)
	return g
}

func TestGraphPipelineThreadsEnvironment(t *testing.T) {
	g := emptyGraph(t)
	start := types.NewMapperEnvironment().With("prefix", "!")

	out, effects, env, err := NewGraphPipeline(envMapper{key: "a", value: "1"}, envMapper{key: "b", value: "2"}).Run(t.Context(), g, start)
	require.NoError(t, err)
	assert.Same(t, g, out)
	if diff := cmp.Diff([]string{"a", "b"}, effectPaths(effects)); diff != "" {
		t.Fatalf("unexpected side effects (-want +got):\n%s", diff)
	}
	assert.Equal(t, "1!", env.String("a"))
	assert.Equal(t, "2!", env.String("b"))
	assert.Equal(t, 1, start.Len(), "input environment is untouched")
}

func TestGraphPipelineFailure(t *testing.T) {
	_, effects, _, err := NewGraphPipeline(envMapper{key: "a"}, envMapper{key: "b", err: errors.New("bad")}).
		Run(t.Context(), emptyGraph(t), types.NewMapperEnvironment())

	var passErr *MapperPassError
	require.True(t, errors.As(err, &passErr))
	assert.Equal(t, StageGraphMapping, passErr.Stage)
	assert.Equal(t, "env:b", passErr.Pass)
	assert.Nil(t, effects)
}
