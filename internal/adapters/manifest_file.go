package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"workspace-graph/internal/ports"
	"workspace-graph/internal/shared"
	"workspace-graph/internal/types"
)

const (
	WorkspaceManifestName = "workspace.yaml"
	ProjectManifestName   = "project.yaml"
	PackageManifestName   = "packages.yaml"
)

// ManifestFileAdapter reads workspace.yaml and project.yaml files.
type ManifestFileAdapter struct{}

func NewManifestFileAdapter() ManifestFileAdapter {
	return ManifestFileAdapter{}
}

func (a ManifestFileAdapter) ValidateHasRootManifest(path string) error {
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workspace path is empty")
	}
	for _, name := range []string{WorkspaceManifestName, ProjectManifestName, PackageManifestName} {
		if fileExists(filepath.Join(path, name)) {
			return nil
		}
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no %s, %s or %s found at %s", WorkspaceManifestName, ProjectManifestName, PackageManifestName, path))
}

func (a ManifestFileAdapter) LoadWorkspace(ctx context.Context, path string, disableSandbox bool) (types.WorkspaceManifests, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return types.WorkspaceManifests{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to resolve workspace path").
			WithCause(err)
	}
	manifests := types.WorkspaceManifests{
		Path:     root,
		Projects: map[string]types.ProjectManifest{},
	}

	var pending []string
	switch {
	case fileExists(filepath.Join(root, WorkspaceManifestName)):
		var workspace types.WorkspaceManifest
		if err := readYAML(filepath.Join(root, WorkspaceManifestName), &workspace); err != nil {
			return types.WorkspaceManifests{}, err
		}
		dirs, err := expandProjectDirs(root, workspace.Projects)
		if err != nil {
			return types.WorkspaceManifests{}, err
		}
		manifests.Workspace = workspace
		pending = dirs
	case fileExists(filepath.Join(root, ProjectManifestName)):
		pending = []string{root}
	default:
		manifests.Workspace = types.WorkspaceManifest{Name: filepath.Base(root)}
	}

	for len(pending) > 0 {
		dir := pending[0]
		pending = pending[1:]
		if _, ok := manifests.Projects[dir]; ok {
			continue
		}
		var project types.ProjectManifest
		if err := readYAML(filepath.Join(dir, ProjectManifestName), &project); err != nil {
			return types.WorkspaceManifests{}, err
		}
		manifests.Projects[dir] = project
		pending = append(pending, referencedProjectDirs(dir, project)...)
	}

	if manifests.Workspace.Name == "" {
		manifests.Workspace.Name = synthesizedWorkspaceName(root, manifests.Projects)
	}
	if len(manifests.Workspace.Projects) == 0 && len(manifests.Projects) > 0 {
		manifests.Workspace.Projects = []string{"."}
	}
	log.Ctx(ctx).Debug().
		Str("path", root).
		Int("projects", len(manifests.Projects)).
		Bool("disable_sandbox", disableSandbox).
		Msg("manifests loaded")
	return manifests, nil
}

// expandProjectDirs resolves workspace project entries relative to root.
// Entries containing `*` are globbed and keep only directories that hold a
// project manifest.
func expandProjectDirs(root string, entries []string) ([]string, error) {
	var dirs []string
	for _, entry := range entries {
		if !strings.Contains(entry, "*") {
			dirs = append(dirs, shared.ResolvePath(root, entry))
			continue
		}
		matches, err := filepath.Glob(filepath.Join(root, entry))
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid project pattern %q", entry)).
				WithCause(err)
		}
		for _, match := range matches {
			if fileExists(filepath.Join(match, ProjectManifestName)) {
				dirs = append(dirs, filepath.Clean(match))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func referencedProjectDirs(dir string, project types.ProjectManifest) []string {
	var dirs []string
	for _, target := range project.Targets {
		for _, dep := range target.Dependencies {
			if dep.Project != "" {
				dirs = append(dirs, shared.ResolvePath(dir, dep.Project))
			}
		}
	}
	return shared.SortedUnique(dirs)
}

func synthesizedWorkspaceName(root string, projects map[string]types.ProjectManifest) string {
	if project, ok := projects[root]; ok && project.Name != "" {
		return project.Name
	}
	return filepath.Base(root)
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("manifest not found: %s", path)).
			WithCause(err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse %s", path)).
			WithCause(err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var _ ports.ManifestLoaderPort = ManifestFileAdapter{}
