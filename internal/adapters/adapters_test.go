package adapters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"workspace-graph/internal/core"
	"workspace-graph/internal/graph"
	"workspace-graph/internal/types"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const appManifest = `name: App
targets:
  - name: App
    product: app
    dependencies:
      - project: ../Core
        target: Core
      - external: Alamofire
  - name: AppTests
    product: unit_tests
    dependencies:
      - target: App
schemes:
  - name: App
    build:
      targets:
        - target: App
    run:
      configuration: Debug
      executable:
        target: App
      storekit_configuration: Config.storekit
`

const coreManifest = `name: Core
configurations:
  - name: Debug
    variant: debug
targets:
  - name: Core
    product: framework
    dependencies:
      - sdk: UIKit
      - xcframework: Vendor/Crash.xcframework
`

func TestManifestFileAdapterLoadsWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, WorkspaceManifestName), "name: Workspace\nprojects:\n  - App\n")
	writeFile(t, filepath.Join(root, "App", ProjectManifestName), appManifest)
	writeFile(t, filepath.Join(root, "Core", ProjectManifestName), coreManifest)

	adapter := NewManifestFileAdapter()
	require.NoError(t, adapter.ValidateHasRootManifest(root))

	manifests, err := adapter.LoadWorkspace(t.Context(), root, false)
	require.NoError(t, err)
	assert.Equal(t, "Workspace", manifests.Workspace.Name)
	want := []string{filepath.Join(root, "App"), filepath.Join(root, "Core")}
	if diff := cmp.Diff(want, manifests.ProjectPaths()); diff != "" {
		t.Fatalf("project dependencies are followed (-want +got):\n%s", diff)
	}
	assert.True(t, manifests.HasExternalDependencies())
	assert.False(t, manifests.PackageOnly())
}

func TestManifestFileAdapterSynthesizesWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectManifestName), coreManifest)

	manifests, err := NewManifestFileAdapter().LoadWorkspace(t.Context(), root, true)
	require.NoError(t, err)
	assert.Equal(t, "Core", manifests.Workspace.Name)
	assert.Equal(t, []string{"."}, manifests.Workspace.Projects)
	assert.Len(t, manifests.Projects, 1)
}

func TestManifestFileAdapterGlobsProjects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, WorkspaceManifestName), "name: W\nprojects:\n  - Projects/*\n")
	writeFile(t, filepath.Join(root, "Projects", "B", ProjectManifestName), "name: B\ntargets: []\n")
	writeFile(t, filepath.Join(root, "Projects", "A", ProjectManifestName), "name: A\ntargets: []\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Projects", "Empty"), 0755))

	manifests, err := NewManifestFileAdapter().LoadWorkspace(t.Context(), root, false)
	require.NoError(t, err)
	want := []string{filepath.Join(root, "Projects", "A"), filepath.Join(root, "Projects", "B")}
	if diff := cmp.Diff(want, manifests.ProjectPaths()); diff != "" {
		t.Fatalf("unexpected projects (-want +got):\n%s", diff)
	}
}

func TestManifestFileAdapterErrors(t *testing.T) {
	root := t.TempDir()
	adapter := NewManifestFileAdapter()

	err := adapter.ValidateHasRootManifest(root)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(adapter.ValidateHasRootManifest("")))

	writeFile(t, filepath.Join(root, ProjectManifestName), "name: [broken\n")
	_, err = adapter.LoadWorkspace(t.Context(), root, false)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	missing := t.TempDir()
	writeFile(t, filepath.Join(missing, WorkspaceManifestName), "name: W\nprojects:\n  - Nowhere\n")
	_, err = adapter.LoadWorkspace(t.Context(), missing, false)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestManifestConverterConvertsProject(t *testing.T) {
	var manifest types.ProjectManifest
	require.NoError(t, yaml.Unmarshal([]byte(appManifest), &manifest))
	external := map[string][]types.TargetDependency{
		"Alamofire": {{Kind: types.DependencyKindPackageProduct, Package: "Alamofire", Name: "Alamofire"}},
	}

	project, err := NewManifestConverter().ConvertProject(t.Context(), manifest, "/W/App", external)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectTypeLocal, project.Type)
	if diff := cmp.Diff([]string{"Debug", "Release"}, project.ConfigurationNames()); diff != "" {
		t.Fatalf("default configurations (-want +got):\n%s", diff)
	}

	app, ok := project.Target("App")
	require.True(t, ok)
	want := []types.TargetDependency{
		{Kind: types.DependencyKindProject, ProjectPath: "/W/Core", Name: "Core"},
		{Kind: types.DependencyKindPackageProduct, Package: "Alamofire", Name: "Alamofire"},
	}
	if diff := cmp.Diff(want, app.Dependencies); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}

	require.Len(t, project.Schemes, 1)
	run := project.Schemes[0].RunAction
	require.NotNil(t, run)
	assert.Equal(t, &types.TargetReference{ProjectPath: "/W/App", Name: "App"}, run.Executable)
	assert.Equal(t, "/W/App/Config.storekit", run.StoreKitConfigurationPath)
}

func TestManifestConverterUnresolvedExternal(t *testing.T) {
	var manifest types.ProjectManifest
	require.NoError(t, yaml.Unmarshal([]byte(appManifest), &manifest))

	_, err := NewManifestConverter().ConvertProject(t.Context(), manifest, "/W/App", nil)
	require.Error(t, err)
	var structural *core.StructuralConfigurationError
	require.True(t, errors.As(err, &structural))
	assert.Equal(t, core.KindUnresolvedExternal, structural.Kind)
}

func TestManifestConverterRejectsInvalidManifests(t *testing.T) {
	converter := NewManifestConverter()
	cases := []types.ProjectManifest{
		{Targets: []types.TargetManifest{{Product: types.ProductApp}}},
		{Targets: []types.TargetManifest{{Name: "T", Product: "spaceship"}}},
		{Targets: []types.TargetManifest{{Name: "T", Dependencies: []types.DependencyManifest{{}}}}},
		{Targets: []types.TargetManifest{{Name: "T", Dependencies: []types.DependencyManifest{{Package: "P"}}}}},
		{Schemes: []types.SchemeManifest{{Name: "S"}, {Name: "S"}}},
	}
	for i, manifest := range cases {
		_, err := converter.ConvertProject(t.Context(), manifest, "/W/P", nil)
		require.Error(t, err, "case %d", i)
	}
}

func TestManifestConverterConvertsWorkspace(t *testing.T) {
	manifest := types.WorkspaceManifest{
		Projects: []string{"Core", "App", "./App"},
		Schemes: []types.SchemeManifest{{
			Name:  "All",
			Build: &types.BuildActionManifest{Targets: []types.TargetReferenceManifest{{Project: "App", Target: "App"}}},
		}},
	}
	workspace, err := NewManifestConverter().ConvertWorkspace(t.Context(), manifest, "/W")
	require.NoError(t, err)
	assert.Equal(t, "W", workspace.Name)
	assert.Equal(t, []string{"/W/App", "/W/Core"}, workspace.Projects)
	assert.Equal(t, "/W/App", workspace.Schemes[0].BuildAction.Targets[0].ProjectPath)
}

func TestPackageGraphFileAdapter(t *testing.T) {
	root := t.TempDir()
	adapter := NewPackageGraphFileAdapter()

	_, found, err := adapter.LocatePackageManifest(root)
	require.NoError(t, err)
	assert.False(t, found)

	writeFile(t, filepath.Join(root, PackageManifestName), `packages:
  - name: Alamofire
    path: .build/checkouts/Alamofire
    products:
      - name: Alamofire
        product: framework
      - name: AlamofireDynamic
        product: dynamic_library
        dependencies:
          - target: Alamofire
`)
	path, found, err := adapter.LocatePackageManifest(root)
	require.NoError(t, err)
	require.True(t, found)

	packageGraph, err := adapter.Load(t.Context(), path)
	require.NoError(t, err)
	projectPath := filepath.Join(root, ".build", "checkouts", "Alamofire")
	project, ok := packageGraph.ExternalProjects[projectPath]
	require.True(t, ok)
	assert.Equal(t, types.ProjectTypeExternal, project.Type)
	assert.Len(t, project.Targets, 2)

	want := []types.TargetDependency{{Kind: types.DependencyKindPackageProduct, Package: "Alamofire", Name: "AlamofireDynamic"}}
	if diff := cmp.Diff(want, packageGraph.ExternalDependencies["AlamofireDynamic"]); diff != "" {
		t.Fatalf("unexpected external dependency (-want +got):\n%s", diff)
	}
}

func TestPackageGraphFileAdapterRejectsDuplicateProducts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, PackageManifestName), `packages:
  - name: A
    path: a
    products: [{name: Shared}]
  - name: B
    path: b
    products: [{name: Shared}]
`)
	_, err := NewPackageGraphFileAdapter().Load(t.Context(), filepath.Join(root, PackageManifestName))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeAlreadyExists, errbuilder.CodeOf(err))
}

func TestOSFileSystem(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	writeFile(t, file, "x")

	fs := NewOSFileSystem()
	assert.True(t, fs.Exists(file))
	assert.True(t, fs.Exists(dir))
	assert.False(t, fs.Exists(filepath.Join(dir, "missing")))
	assert.False(t, fs.Exists(""))
}

func TestGraphOutputFileAdapter(t *testing.T) {
	app := graph.TargetNode("/W/App", "App")
	coreNode := graph.TargetNode("/W/Core", "Core")
	g, err := graph.New(types.Workspace{Name: "W"},
		[]types.Project{{Path: "/W/App", Name: "App", Type: types.ProjectTypeLocal, Targets: []types.Target{{Name: "App"}}}},
		[]graph.Node{{ID: app, Project: "/W/App", Product: types.ProductApp}, {ID: coreNode, Project: "/W/Core"}},
		[]graph.Edge{{From: app, To: coreNode, Kind: types.DependencyKindProject}})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	adapter := NewGraphOutputFileAdapter(dir)
	require.NoError(t, adapter.WriteGraph(g))
	require.NoError(t, adapter.WriteSideEffects([]types.SideEffectDescriptor{
		types.DirectorySideEffect("/W/App/Derived", types.SideEffectStateAbsent),
	}))
	require.NoError(t, adapter.WriteEnvironment(types.NewMapperEnvironment().With("graph.nodes", 2)))

	data, err := os.ReadFile(filepath.Join(dir, GraphFileName))
	require.NoError(t, err)
	var doc GraphDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, g.Fingerprint(), doc.Fingerprint)
	if diff := cmp.Diff(g.Edges(), doc.Edges); diff != "" {
		t.Fatalf("unexpected edges (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"App"}, doc.Projects[0].Targets)

	data, err = os.ReadFile(filepath.Join(dir, SideEffectsFileName))
	require.NoError(t, err)
	var effects []types.SideEffectDescriptor
	require.NoError(t, yaml.Unmarshal(data, &effects))
	require.Len(t, effects, 1)
	assert.Equal(t, types.SideEffectKindDirectory, effects[0].Kind)

	data, err = os.ReadFile(filepath.Join(dir, EnvironmentFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "graph.nodes: 2")

	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(NewGraphOutputFileAdapter("").WriteGraph(g)))
}
