package core

import (
	"context"
	"fmt"
	"sort"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"workspace-graph/internal/types"
)

// ShouldLoadPackageGraph decides whether the external package graph is
// needed at all. Workspaces whose projects never reference a package are
// served without touching the package loader.
func ShouldLoadPackageGraph(manifests types.WorkspaceManifests) bool {
	return manifests.PackageOnly() || manifests.HasExternalDependencies()
}

type Merger struct{}

func NewMerger() Merger {
	return Merger{}
}

// Merge appends the external package projects to the local ones and checks
// the structural invariants of the combined set.
func (m Merger) Merge(ctx context.Context, local []types.Project, external types.ExternalPackageGraph) ([]types.Project, error) {
	localPaths := map[string]struct{}{}
	localNames := map[string]string{}
	merged := make([]types.Project, 0, len(local)+len(external.ExternalProjects))
	for _, project := range local {
		assert.NotEmpty(ctx, project.Path, "project path must be set")
		if _, ok := localPaths[project.Path]; ok {
			return nil, structuralError(StageMerge, KindDuplicateProject,
				fmt.Sprintf("project path %s is declared more than once", project.Path), project.Path)
		}
		localPaths[project.Path] = struct{}{}
		localNames[project.Name] = project.Path
		project = project.Clone()
		if project.Type == "" {
			project.Type = types.ProjectTypeLocal
		}
		merged = append(merged, project)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Path < merged[j].Path
	})

	externalPaths := make([]string, 0, len(external.ExternalProjects))
	for path := range external.ExternalProjects {
		externalPaths = append(externalPaths, path)
	}
	sort.Strings(externalPaths)
	for _, path := range externalPaths {
		project := external.ExternalProjects[path].Clone()
		if project.Path == "" {
			project.Path = path
		}
		if _, ok := localPaths[project.Path]; ok {
			return nil, structuralError(StageMerge, KindProjectCollision,
				fmt.Sprintf("external project at %s collides with a local project at the same path", project.Path), project.Path)
		}
		if localPath, ok := localNames[project.Name]; ok {
			return nil, structuralError(StageMerge, KindProjectCollision,
				fmt.Sprintf("external project %s collides with local project %s at %s", project.Name, project.Name, localPath),
				project.Name, localPath, project.Path)
		}
		project.Type = types.ProjectTypeExternal
		merged = append(merged, project)
	}

	if err := ValidateReferences(StageMerge, merged); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Int("local", len(local)).
		Int("external", len(externalPaths)).
		Msg("projects merged")
	return merged, nil
}

// ValidateReferences checks target name uniqueness and that every target,
// project and package product reference resolves within projects. Project
// scheme references into the scheme's own project must name a declared
// target; references into other projects are left to the linter.
func ValidateReferences(stage string, projects []types.Project) error {
	if err := validateReferences(projects); err != nil {
		err.Stage = stage
		return err
	}
	return nil
}

func validateReferences(projects []types.Project) *StructuralConfigurationError {
	index, err := indexProjects(projects)
	if err != nil {
		return err
	}
	products := packageProducts(projects)
	for _, project := range projects {
		for _, target := range project.Targets {
			from := types.TargetReference{ProjectPath: project.Path, Name: target.Name}
			for _, dep := range target.Dependencies {
				if err := validateDependency(index, products, project, from, dep); err != nil {
					return err
				}
			}
		}
		if err := validateSchemeReferences(index, project); err != nil {
			return err
		}
	}
	return nil
}

func validateSchemeReferences(index projectIndex, project types.Project) *StructuralConfigurationError {
	for _, scheme := range project.Schemes {
		for _, ref := range schemeTargetReferences(scheme) {
			if !samePath(ref.ProjectPath, project.Path) || index.hasTarget(project.Path, ref.Name) {
				continue
			}
			return structuralError(StageMerge, KindTargetNotFound,
				fmt.Sprintf("scheme %s references target %s which is not defined in project %s", scheme.Name, ref.Name, project.Name),
				project.Path, scheme.Name, ref.Name)
		}
	}
	return nil
}

func validateDependency(index projectIndex, products map[types.PackageProduct]types.TargetReference, project types.Project, from types.TargetReference, dep types.TargetDependency) *StructuralConfigurationError {
	if dep.Kind.Prebuilt() {
		if dep.Path == "" {
			return structuralError(StageMerge, KindInvalidDependency,
				fmt.Sprintf("target %s declares a %s dependency without a path", from, dep.Kind), from.String())
		}
		return nil
	}
	switch dep.Kind {
	case types.DependencyKindTarget:
		if !index.hasTarget(project.Path, dep.Name) {
			return structuralError(StageMerge, KindTargetNotFound,
				fmt.Sprintf("target %s depends on %s which is not defined in project %s", from, dep.Name, project.Name),
				from.String(), dep.Name)
		}
	case types.DependencyKindProject:
		if !index.hasTarget(dep.ProjectPath, dep.Name) {
			return structuralError(StageMerge, KindTargetNotFound,
				fmt.Sprintf("target %s depends on %s:%s which does not exist", from, dep.ProjectPath, dep.Name),
				from.String(), dep.ProjectPath+":"+dep.Name)
		}
	case types.DependencyKindPackageProduct:
		product := types.PackageProduct{Package: dep.Package, Name: dep.Name}
		if _, ok := products[product]; !ok {
			return structuralError(StageMerge, KindUnresolvedPackageProduct,
				fmt.Sprintf("target %s depends on package product %s which is not part of the package graph", from, product),
				from.String(), product.String())
		}
	case types.DependencyKindSDK:
		if dep.Name == "" {
			return structuralError(StageMerge, KindInvalidDependency,
				fmt.Sprintf("target %s declares an sdk dependency without a name", from), from.String())
		}
	default:
		return structuralError(StageMerge, KindInvalidDependency,
			fmt.Sprintf("target %s declares unknown dependency kind %q", from, dep.Kind), from.String())
	}
	return nil
}

type projectIndex map[string]map[string]struct{}

func (i projectIndex) hasTarget(projectPath string, name string) bool {
	targets, ok := i[projectPath]
	if !ok {
		return false
	}
	_, ok = targets[name]
	return ok
}

func indexProjects(projects []types.Project) (projectIndex, *StructuralConfigurationError) {
	index := projectIndex{}
	for _, project := range projects {
		if _, ok := index[project.Path]; ok {
			return nil, structuralError(StageMerge, KindDuplicateProject,
				fmt.Sprintf("project path %s is declared more than once", project.Path), project.Path)
		}
		targets := make(map[string]struct{}, len(project.Targets))
		for _, target := range project.Targets {
			if _, ok := targets[target.Name]; ok {
				return nil, structuralError(StageMerge, KindDuplicateTarget,
					fmt.Sprintf("target %s is declared more than once in project %s", target.Name, project.Name),
					project.Path, target.Name)
			}
			targets[target.Name] = struct{}{}
		}
		index[project.Path] = targets
	}
	return index, nil
}

// packageProducts maps every product exposed by an external project to the
// target backing it. The package name is the external project name.
func packageProducts(projects []types.Project) map[types.PackageProduct]types.TargetReference {
	products := map[types.PackageProduct]types.TargetReference{}
	for _, project := range projects {
		if project.Type != types.ProjectTypeExternal {
			continue
		}
		for _, target := range project.Targets {
			products[types.PackageProduct{Package: project.Name, Name: target.Name}] = types.TargetReference{
				ProjectPath: project.Path,
				Name:        target.Name,
			}
		}
	}
	return products
}
