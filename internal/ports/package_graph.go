package ports

import (
	"context"

	"workspace-graph/internal/types"
)

// PackageGraphLoaderPort loads the externally resolved package graph.
type PackageGraphLoaderPort interface {
	// LocatePackageManifest returns the package manifest path under root and
	// whether one exists.
	LocatePackageManifest(root string) (string, bool, error)
	Load(ctx context.Context, manifestPath string) (types.ExternalPackageGraph, error)
}
