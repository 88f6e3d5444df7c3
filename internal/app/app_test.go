package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-graph/internal/adapters"
	"workspace-graph/internal/core"
	"workspace-graph/internal/graph"
	"workspace-graph/internal/mappers"
	"workspace-graph/internal/policies"
	"workspace-graph/internal/ports"
	"workspace-graph/internal/types"
)

type fakeManifests struct {
	manifests types.WorkspaceManifests
	loads     atomic.Int32
}

func (f *fakeManifests) ValidateHasRootManifest(string) error { return nil }

func (f *fakeManifests) LoadWorkspace(context.Context, string, bool) (types.WorkspaceManifests, error) {
	f.loads.Add(1)
	return f.manifests, nil
}

type recordingPackageGraph struct {
	graph    types.ExternalPackageGraph
	located  int
	loaded   int
	notFound bool
}

func (r *recordingPackageGraph) LocatePackageManifest(root string) (string, bool, error) {
	r.located++
	return filepath.Join(root, adapters.PackageManifestName), !r.notFound, nil
}

func (r *recordingPackageGraph) Load(context.Context, string) (types.ExternalPackageGraph, error) {
	r.loaded++
	return r.graph, nil
}

// slowConverter finishes earlier paths last and tracks how many conversions
// run at once.
type slowConverter struct {
	adapters.ManifestConverter
	delays   map[string]time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *slowConverter) ConvertProject(ctx context.Context, manifest types.ProjectManifest, path string, external map[string][]types.TargetDependency) (types.Project, error) {
	current := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		peak := c.peak.Load()
		if current <= peak || c.peak.CompareAndSwap(peak, current) {
			break
		}
	}
	time.Sleep(c.delays[path])
	return c.ManifestConverter.ConvertProject(ctx, manifest, path, external)
}

type allowAll struct{}

func (allowAll) Exists(string) bool { return true }

type recordingModelMapper struct {
	calls int
}

func (r *recordingModelMapper) Name() string { return "recording" }

func (r *recordingModelMapper) Map(_ context.Context, snapshot types.WorkspaceWithProjects) (types.WorkspaceWithProjects, []types.SideEffectDescriptor, error) {
	r.calls++
	return snapshot, []types.SideEffectDescriptor{types.FileSideEffect("model", nil)}, nil
}

type failingGraphMapper struct{}

func (failingGraphMapper) Name() string { return "failing" }

func (failingGraphMapper) Map(context.Context, *graph.Graph, types.MapperEnvironment) (*graph.Graph, []types.SideEffectDescriptor, types.MapperEnvironment, error) {
	return nil, []types.SideEffectDescriptor{types.FileSideEffect("leaked", nil)}, types.MapperEnvironment{}, errors.New("graph pass failed")
}

type warningLinter struct{}

func (warningLinter) Lint(_ context.Context, project types.Project) []types.LintIssue {
	return []types.LintIssue{types.LintWarning("check " + project.Name)}
}

func testService(manifests *fakeManifests, packages *recordingPackageGraph) Service {
	fs := allowAll{}
	builder := core.NewGraphBuilder(fs)
	return Service{
		Manifests:       manifests,
		Converter:       adapters.NewManifestConverter(),
		PackageGraph:    packages,
		FileSystem:      fs,
		WorkspaceLinter: core.NewWorkspaceLinter(fs),
		ProjectLinter:   core.NewSchemeLinter(fs),
		Builder:         builder,
		ModelMappers:    mappers.DefaultModelMappers(),
		GraphMappers:    mappers.DefaultGraphMappers(builder, policies.RetentionPolicy{}),
		Output: func(dir string) ports.GraphOutputPort {
			return adapters.NewGraphOutputFileAdapter(dir)
		},
		MaxWorkers: 2,
	}
}

func manifestsFor(projects map[string]types.ProjectManifest) *fakeManifests {
	return &fakeManifests{manifests: types.WorkspaceManifests{
		Path:      "/W",
		Workspace: types.WorkspaceManifest{Name: "Workspace", Projects: []string{"App", "Core"}},
		Projects:  projects,
	}}
}

func localProjects() map[string]types.ProjectManifest {
	return map[string]types.ProjectManifest{
		"/W/App": {Name: "App", Targets: []types.TargetManifest{
			{Name: "App", Product: types.ProductApp, Dependencies: []types.DependencyManifest{{Project: "../Core", Target: "Core"}}},
		}},
		"/W/Core": {Name: "Core", Targets: []types.TargetManifest{{Name: "Core", Product: types.ProductFramework}}},
	}
}

func alamofireGraph() types.ExternalPackageGraph {
	return types.ExternalPackageGraph{
		ExternalDependencies: map[string][]types.TargetDependency{
			"Alamofire": {{Kind: types.DependencyKindPackageProduct, Package: "Alamofire", Name: "Alamofire"}},
		},
		ExternalProjects: map[string]types.Project{
			"/W/.packages/Alamofire": {Path: "/W/.packages/Alamofire", Name: "Alamofire", Targets: []types.Target{
				{Name: "Alamofire", Product: types.ProductFramework},
			}},
		},
	}
}

func TestLoadSkipsPackageGraphWithoutExternalDependencies(t *testing.T) {
	packages := &recordingPackageGraph{graph: alamofireGraph()}
	service := testService(manifestsFor(localProjects()), packages)

	result, err := service.Load(t.Context(), LoadRequest{Path: "/W"}, nil)
	require.NoError(t, err)
	assert.Zero(t, packages.located, "package loader must not be consulted")
	assert.Zero(t, packages.loaded)
	assert.True(t, result.Graph.DependsOn(graph.TargetNode("/W/App", "App"), graph.TargetNode("/W/Core", "Core")))
	assert.NotEmpty(t, result.RunID)

	want := []types.SideEffectDescriptor{
		types.DirectorySideEffect("/W/App/Derived", types.SideEffectStateAbsent),
		types.DirectorySideEffect("/W/Core/Derived", types.SideEffectStateAbsent),
	}
	if diff := cmp.Diff(want, result.SideEffects); diff != "" {
		t.Fatalf("unexpected side effects (-want +got):\n%s", diff)
	}
	assert.Equal(t, result.Graph.Fingerprint(), result.Environment.String(mappers.EnvGraphFingerprint))
}

func TestLoadMergesPackageGraph(t *testing.T) {
	projects := localProjects()
	coreProject := projects["/W/Core"]
	coreProject.Targets[0].Dependencies = []types.DependencyManifest{{External: "Alamofire"}}
	projects["/W/Core"] = coreProject
	packages := &recordingPackageGraph{graph: alamofireGraph()}

	result, err := testService(manifestsFor(projects), packages).Load(t.Context(), LoadRequest{Path: "/W"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, packages.loaded)

	node, ok := result.Graph.Node(graph.TargetNode("/W/.packages/Alamofire", "Alamofire"))
	require.True(t, ok)
	assert.True(t, node.External)
	assert.True(t, result.Graph.DependsOn(graph.TargetNode("/W/App", "App"), node.ID))
}

func TestLoadPackageOnlyWorkspace(t *testing.T) {
	manifests := &fakeManifests{manifests: types.WorkspaceManifests{
		Path:      "/W",
		Workspace: types.WorkspaceManifest{Name: "Packages"},
	}}
	packages := &recordingPackageGraph{graph: alamofireGraph()}

	result, err := testService(manifests, packages).Load(t.Context(), LoadRequest{Path: "/W"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, packages.loaded)
	require.Len(t, result.Graph.Projects(), 1)
	assert.Equal(t, types.ProjectTypeExternal, result.Graph.Projects()[0].Type)
	assert.Empty(t, result.SideEffects)
}

func TestLoadOrdersProjectsByPathUnderParallelism(t *testing.T) {
	projects := map[string]types.ProjectManifest{}
	delays := map[string]time.Duration{}
	names := []string{"A", "B", "C", "D", "E"}
	for i, name := range names {
		path := "/W/" + name
		projects[path] = types.ProjectManifest{Name: name, Targets: []types.TargetManifest{{Name: name}}}
		delays[path] = time.Duration(len(names)-i) * 5 * time.Millisecond
	}
	service := testService(manifestsFor(projects), &recordingPackageGraph{})
	converter := &slowConverter{delays: delays}
	service.Converter = converter

	result, err := service.Load(t.Context(), LoadRequest{Path: "/W", MaxWorkers: 3}, nil)
	require.NoError(t, err)

	var got []string
	for _, project := range result.Graph.Projects() {
		got = append(got, project.Name)
	}
	if diff := cmp.Diff(names, got); diff != "" {
		t.Fatalf("unexpected project order (-want +got):\n%s", diff)
	}
	assert.LessOrEqual(t, converter.peak.Load(), int32(3))
}

func TestLoadAbortsOnLintErrors(t *testing.T) {
	projects := localProjects()
	app := projects["/W/App"]
	app.Schemes = []types.SchemeManifest{{
		Name: "App",
		Run:  &types.RunActionManifest{Configuration: "CustomDebug"},
		Test: &types.TestActionManifest{Configuration: "Alpha"},
	}}
	projects["/W/App"] = app
	service := testService(manifestsFor(projects), &recordingPackageGraph{})
	recorder := &recordingModelMapper{}
	service.ModelMappers = []ports.ModelMapperPort{recorder}

	_, err := service.Load(t.Context(), LoadRequest{Path: "/W"}, nil)
	var lintErr *core.LintError
	require.True(t, errors.As(err, &lintErr))
	require.Len(t, lintErr.Issues, 2)
	assert.Contains(t, lintErr.Issues[0].Reason, "run action")
	assert.Contains(t, lintErr.Issues[1].Reason, "test action")
	assert.Zero(t, recorder.calls)
}

func TestLoadReturnsWarnings(t *testing.T) {
	service := testService(manifestsFor(localProjects()), &recordingPackageGraph{})
	service.ProjectLinter = warningLinter{}

	result, err := service.Load(t.Context(), LoadRequest{Path: "/W"}, nil)
	require.NoError(t, err)
	want := []types.LintIssue{types.LintWarning("check App"), types.LintWarning("check Core")}
	if diff := cmp.Diff(want, result.LintIssues); diff != "" {
		t.Fatalf("unexpected lint issues (-want +got):\n%s", diff)
	}
}

func TestLoadAbortsOnCycle(t *testing.T) {
	projects := localProjects()
	coreProject := projects["/W/Core"]
	coreProject.Targets[0].Dependencies = []types.DependencyManifest{{Project: "../App", Target: "App"}}
	projects["/W/Core"] = coreProject
	service := testService(manifestsFor(projects), &recordingPackageGraph{})
	recorder := &recordingModelMapper{}
	service.ModelMappers = []ports.ModelMapperPort{recorder}
	run := NewRunContext()

	_, err := service.Load(t.Context(), LoadRequest{Path: "/W"}, run)
	var cycleErr *core.CycleError
	require.True(t, errors.As(err, &cycleErr))
	if diff := cmp.Diff([]string{"/W/App:App", "/W/Core:Core"}, cycleErr.Cycle); diff != "" {
		t.Fatalf("unexpected cycle (-want +got):\n%s", diff)
	}
	assert.Zero(t, recorder.calls)
	_, cached := run.Graph()
	assert.False(t, cached)
}

func TestLoadMapperFailureDiscardsSideEffects(t *testing.T) {
	service := testService(manifestsFor(localProjects()), &recordingPackageGraph{})
	service.GraphMappers = []ports.GraphMapperPort{failingGraphMapper{}}
	run := NewRunContext()

	result, err := service.Load(t.Context(), LoadRequest{Path: "/W"}, run)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMapperPass))
	assert.Nil(t, result.SideEffects)
	_, cached := run.Graph()
	assert.True(t, cached, "graph built before the failing pass stays cached")
}

func TestLoadHonoursCancellation(t *testing.T) {
	manifests := manifestsFor(localProjects())
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := testService(manifests, &recordingPackageGraph{}).Load(ctx, LoadRequest{Path: "/W"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, manifests.loads.Load())
}

func TestRunContextWriteOnce(t *testing.T) {
	run := NewRunContext()
	first, err := graph.New(types.Workspace{Name: "first"}, nil, nil, nil)
	require.NoError(t, err)
	second, err := graph.New(types.Workspace{Name: "second"}, nil, nil, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var stored atomic.Int32
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if run.StoreGraph(first) {
				stored.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if g, ok := run.Graph(); ok {
				assert.Equal(t, "first", g.Workspace().Name)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), stored.Load())
	assert.False(t, run.StoreGraph(second))

	run.Close()
	_, ok := run.Graph()
	assert.False(t, ok)
	assert.False(t, run.StoreGraph(second))
}

func TestInspectReusesCachedGraph(t *testing.T) {
	manifests := manifestsFor(localProjects())
	service := testService(manifests, &recordingPackageGraph{})
	run := NewRunContext()
	defer run.Close()

	first, err := service.Inspect(t.Context(), InspectRequest{Load: LoadRequest{Path: "/W"}, Target: "App"}, run)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.Len(t, first.Targets, 1)
	assert.Equal(t, []string{"/W/Core:Core"}, first.Targets[0].Direct)

	second, err := service.Inspect(t.Context(), InspectRequest{Target: "/W/Core:Core"}, run)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, []string{"/W/App:App"}, second.Targets[0].Dependents)
	assert.Equal(t, int32(1), manifests.loads.Load())

	_, err = service.Inspect(t.Context(), InspectRequest{Target: "Missing"}, run)
	require.Error(t, err)
}

func TestLintCollectsWithoutAborting(t *testing.T) {
	projects := localProjects()
	app := projects["/W/App"]
	app.Schemes = []types.SchemeManifest{{Name: "App", Run: &types.RunActionManifest{Configuration: "Nope"}}}
	projects["/W/App"] = app

	result, err := testService(manifestsFor(projects), &recordingPackageGraph{}).Lint(t.Context(), LintRequest{Path: "/W"})
	require.NoError(t, err)
	assert.True(t, result.HasErrors())
	require.Len(t, result.Issues, 1)
}

func TestWriteGraph(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	service := testService(manifestsFor(localProjects()), &recordingPackageGraph{})

	result, err := service.WriteGraph(t.Context(), WriteRequest{Load: LoadRequest{Path: "/W"}, OutputDir: dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SideEffects)
	for _, name := range []string{adapters.GraphFileName, adapters.SideEffectsFileName, adapters.EnvironmentFileName} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	_, err = service.WriteGraph(t.Context(), WriteRequest{Load: LoadRequest{Path: "/W"}}, nil)
	require.Error(t, err)
}
