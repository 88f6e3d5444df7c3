package ports

import (
	"context"

	"workspace-graph/internal/types"
)

// ManifestLoaderPort locates and parses workspace and project manifests.
type ManifestLoaderPort interface {
	// ValidateHasRootManifest fails when path holds no workspace, project or
	// package manifest.
	ValidateHasRootManifest(path string) error

	// LoadWorkspace loads the workspace at path together with every project
	// it references, directly or through project dependencies. A root with
	// only a project manifest yields a synthesized single-project workspace.
	LoadWorkspace(ctx context.Context, path string, disableSandbox bool) (types.WorkspaceManifests, error)
}
