package adapters

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"workspace-graph/internal/ports"
	"workspace-graph/internal/shared"
	"workspace-graph/internal/types"
)

// PackageGraphFileAdapter reads an already resolved package graph from
// packages.yaml. Every package becomes an external project and every
// product is exposed as an external dependency under its own name.
type PackageGraphFileAdapter struct{}

func NewPackageGraphFileAdapter() PackageGraphFileAdapter {
	return PackageGraphFileAdapter{}
}

func (a PackageGraphFileAdapter) LocatePackageManifest(root string) (string, bool, error) {
	if root == "" {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package graph root is empty")
	}
	path := filepath.Join(root, PackageManifestName)
	return path, fileExists(path), nil
}

func (a PackageGraphFileAdapter) Load(ctx context.Context, manifestPath string) (types.ExternalPackageGraph, error) {
	var manifest types.PackageGraphManifest
	if err := readYAML(manifestPath, &manifest); err != nil {
		return types.ExternalPackageGraph{}, err
	}
	root := filepath.Dir(manifestPath)

	packages := append([]types.PackageManifest(nil), manifest.Packages...)
	sort.SliceStable(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})

	graph := types.ExternalPackageGraph{
		ExternalDependencies: map[string][]types.TargetDependency{},
		ExternalProjects:     map[string]types.Project{},
	}
	owners := map[string]string{}
	for _, pkg := range packages {
		if pkg.Name == "" {
			return types.ExternalPackageGraph{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("package without a name in %s", manifestPath))
		}
		path := shared.ResolvePath(root, pkg.Path)
		if pkg.Path == "" {
			path = filepath.Join(root, ".packages", pkg.Name)
		}
		if _, ok := graph.ExternalProjects[path]; ok {
			return types.ExternalPackageGraph{}, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("package path %s is declared more than once", path))
		}

		project := types.Project{
			Path:           path,
			Name:           pkg.Name,
			Type:           types.ProjectTypeExternal,
			Configurations: convertConfigurations(nil),
		}
		for _, product := range pkg.Products {
			target, err := convertTarget(product, path, nil)
			if err != nil {
				return types.ExternalPackageGraph{}, err
			}
			project.Targets = append(project.Targets, target)

			if owner, ok := owners[product.Name]; ok {
				return types.ExternalPackageGraph{}, errbuilder.New().
					WithCode(errbuilder.CodeAlreadyExists).
					WithMsg(fmt.Sprintf("product %s is exposed by both %s and %s", product.Name, owner, pkg.Name))
			}
			owners[product.Name] = pkg.Name
			graph.ExternalDependencies[product.Name] = []types.TargetDependency{{
				Kind:    types.DependencyKindPackageProduct,
				Package: pkg.Name,
				Name:    product.Name,
			}}
		}
		graph.ExternalProjects[path] = project
	}

	log.Ctx(ctx).Debug().
		Str("path", manifestPath).
		Int("packages", len(graph.ExternalProjects)).
		Int("products", len(graph.ExternalDependencies)).
		Msg("package graph loaded")
	return graph, nil
}

var _ ports.PackageGraphLoaderPort = PackageGraphFileAdapter{}
