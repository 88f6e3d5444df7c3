package ports

import (
	"context"

	"workspace-graph/internal/types"
)

// ConverterPort turns parsed manifests into graph models. Implementations
// must be safe for concurrent use; conversions run in parallel.
type ConverterPort interface {
	ConvertWorkspace(ctx context.Context, manifest types.WorkspaceManifest, path string) (types.Workspace, error)
	ConvertProject(ctx context.Context, manifest types.ProjectManifest, path string, externalDependencies map[string][]types.TargetDependency) (types.Project, error)
}
