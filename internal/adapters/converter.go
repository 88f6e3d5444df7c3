package adapters

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"workspace-graph/internal/core"
	"workspace-graph/internal/ports"
	"workspace-graph/internal/shared"
	"workspace-graph/internal/types"
)

var knownProducts = map[types.Product]struct{}{
	types.ProductApp:              {},
	types.ProductFramework:        {},
	types.ProductStaticLibrary:    {},
	types.ProductUnitTests:        {},
	types.ProductUITests:          {},
	types.ProductBundle:           {},
	types.ProductCommandLineTool:  {},
	types.ProductStaticFramework:  {},
	types.ProductDynamicLibrary:   {},
	types.ProductAppExtension:     {},
	types.ProductWatchApplication: {},
}

// ManifestConverter turns manifests into graph models. Relative paths are
// resolved against the directory of the manifest that declares them.
type ManifestConverter struct{}

func NewManifestConverter() ManifestConverter {
	return ManifestConverter{}
}

func (c ManifestConverter) ConvertWorkspace(_ context.Context, manifest types.WorkspaceManifest, path string) (types.Workspace, error) {
	projects := make([]string, 0, len(manifest.Projects))
	for _, entry := range manifest.Projects {
		projects = append(projects, shared.ResolvePath(path, entry))
	}
	schemes, err := convertSchemes(manifest.Schemes, path)
	if err != nil {
		return types.Workspace{}, err
	}
	return types.Workspace{
		Name:     shared.DefaultName(manifest.Name, path),
		Path:     path,
		Projects: shared.SortedUnique(projects),
		Schemes:  schemes,
	}, nil
}

func (c ManifestConverter) ConvertProject(_ context.Context, manifest types.ProjectManifest, path string, externalDependencies map[string][]types.TargetDependency) (types.Project, error) {
	targets := make([]types.Target, 0, len(manifest.Targets))
	for _, target := range manifest.Targets {
		converted, err := convertTarget(target, path, externalDependencies)
		if err != nil {
			return types.Project{}, err
		}
		targets = append(targets, converted)
	}
	schemes, err := convertSchemes(manifest.Schemes, path)
	if err != nil {
		return types.Project{}, err
	}
	return types.Project{
		Path:           path,
		Name:           shared.DefaultName(manifest.Name, path),
		Type:           types.ProjectTypeLocal,
		Targets:        targets,
		Configurations: convertConfigurations(manifest.Configurations),
		Schemes:        schemes,
		Options:        types.ProjectOptions{AutogenerateSchemes: manifest.Options.AutogenerateSchemes},
	}, nil
}

// convertConfigurations defaults to Debug and Release when a project
// declares none.
func convertConfigurations(manifests []types.ConfigurationManifest) []types.BuildConfiguration {
	if len(manifests) == 0 {
		return []types.BuildConfiguration{
			{Name: "Debug", Variant: types.ConfigurationVariantDebug},
			{Name: "Release", Variant: types.ConfigurationVariantRelease},
		}
	}
	out := make([]types.BuildConfiguration, 0, len(manifests))
	for _, manifest := range manifests {
		variant := manifest.Variant
		if variant == "" {
			variant = types.ConfigurationVariantDebug
		}
		out = append(out, types.BuildConfiguration{Name: manifest.Name, Variant: variant})
	}
	return out
}

func convertTarget(manifest types.TargetManifest, projectPath string, externalDependencies map[string][]types.TargetDependency) (types.Target, error) {
	if manifest.Name == "" {
		return types.Target{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("target without a name in %s", projectPath))
	}
	product := manifest.Product
	if product == "" {
		product = types.ProductFramework
	}
	if _, ok := knownProducts[product]; !ok {
		return types.Target{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("target %s has unknown product %q", manifest.Name, product))
	}
	target := types.Target{Name: manifest.Name, Product: product}
	for _, dep := range manifest.Dependencies {
		converted, err := convertDependency(dep, manifest.Name, projectPath, externalDependencies)
		if err != nil {
			return types.Target{}, err
		}
		target.Dependencies = append(target.Dependencies, converted...)
	}
	return target, nil
}

func convertDependency(dep types.DependencyManifest, targetName string, projectPath string, externalDependencies map[string][]types.TargetDependency) ([]types.TargetDependency, error) {
	switch {
	case dep.External != "":
		expanded, ok := externalDependencies[dep.External]
		if !ok {
			return nil, &core.StructuralConfigurationError{
				Stage:       core.StageMerge,
				Kind:        core.KindUnresolvedExternal,
				Identifiers: []string{projectPath + ":" + targetName, dep.External},
				Msg:         fmt.Sprintf("target %s depends on external dependency %s which the package graph does not provide", targetName, dep.External),
			}
		}
		return append([]types.TargetDependency(nil), expanded...), nil
	case dep.Package != "":
		if dep.Product == "" {
			return nil, invalidDependency(targetName, "package dependency without a product")
		}
		return []types.TargetDependency{{Kind: types.DependencyKindPackageProduct, Package: dep.Package, Name: dep.Product}}, nil
	case dep.Project != "":
		if dep.Target == "" {
			return nil, invalidDependency(targetName, "project dependency without a target")
		}
		return []types.TargetDependency{{Kind: types.DependencyKindProject, ProjectPath: shared.ResolvePath(projectPath, dep.Project), Name: dep.Target}}, nil
	case dep.Target != "":
		return []types.TargetDependency{{Kind: types.DependencyKindTarget, Name: dep.Target}}, nil
	case dep.Framework != "":
		return []types.TargetDependency{{Kind: types.DependencyKindFramework, Path: shared.ResolvePath(projectPath, dep.Framework)}}, nil
	case dep.XCFramework != "":
		return []types.TargetDependency{{Kind: types.DependencyKindXCFramework, Path: shared.ResolvePath(projectPath, dep.XCFramework)}}, nil
	case dep.Library != "":
		return []types.TargetDependency{{Kind: types.DependencyKindLibrary, Path: shared.ResolvePath(projectPath, dep.Library)}}, nil
	case dep.SDK != "":
		return []types.TargetDependency{{Kind: types.DependencyKindSDK, Name: dep.SDK}}, nil
	default:
		return nil, invalidDependency(targetName, "empty dependency")
	}
}

func invalidDependency(targetName string, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("target %s: %s", targetName, reason))
}

func convertSchemes(manifests []types.SchemeManifest, path string) ([]types.Scheme, error) {
	schemes := make([]types.Scheme, 0, len(manifests))
	seen := map[string]struct{}{}
	for _, manifest := range manifests {
		if manifest.Name == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("scheme without a name in %s", path))
		}
		if _, ok := seen[manifest.Name]; ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("scheme %s is declared more than once in %s", manifest.Name, path))
		}
		seen[manifest.Name] = struct{}{}
		schemes = append(schemes, convertScheme(manifest, path))
	}
	return schemes, nil
}

func convertScheme(manifest types.SchemeManifest, path string) types.Scheme {
	scheme := types.Scheme{Name: manifest.Name, Shared: manifest.Shared}
	if build := manifest.Build; build != nil {
		scheme.BuildAction = &types.BuildAction{
			Targets:     convertReferences(build.Targets, path),
			PreActions:  convertExecutionActions(build.PreActions, path),
			PostActions: convertExecutionActions(build.PostActions, path),
		}
	}
	if test := manifest.Test; test != nil {
		scheme.TestAction = &types.TestAction{
			Targets:           convertReferences(test.Targets, path),
			ConfigurationName: test.Configuration,
			Coverage:          test.Coverage,
			PreActions:        convertExecutionActions(test.PreActions, path),
			PostActions:       convertExecutionActions(test.PostActions, path),
		}
	}
	if run := manifest.Run; run != nil {
		action := &types.RunAction{
			ConfigurationName: run.Configuration,
			Executable:        convertReference(run.Executable, path),
			PreActions:        convertExecutionActions(run.PreActions, path),
			PostActions:       convertExecutionActions(run.PostActions, path),
		}
		if run.StoreKitConfiguration != "" {
			action.StoreKitConfigurationPath = shared.ResolvePath(path, run.StoreKitConfiguration)
		}
		scheme.RunAction = action
	}
	if profile := manifest.Profile; profile != nil {
		scheme.ProfileAction = &types.ProfileAction{
			ConfigurationName: profile.Configuration,
			Executable:        convertReference(profile.Executable, path),
		}
	}
	return scheme
}

// convertReference resolves a scheme target reference. A reference without
// a project points into the declaring manifest's directory.
func convertReference(manifest *types.TargetReferenceManifest, path string) *types.TargetReference {
	if manifest == nil {
		return nil
	}
	projectPath := path
	if manifest.Project != "" {
		projectPath = shared.ResolvePath(path, manifest.Project)
	}
	return &types.TargetReference{ProjectPath: projectPath, Name: manifest.Target}
}

func convertReferences(manifests []types.TargetReferenceManifest, path string) []types.TargetReference {
	if len(manifests) == 0 {
		return nil
	}
	out := make([]types.TargetReference, 0, len(manifests))
	for i := range manifests {
		out = append(out, *convertReference(&manifests[i], path))
	}
	return out
}

func convertExecutionActions(manifests []types.ExecutionActionManifest, path string) []types.ExecutionAction {
	if len(manifests) == 0 {
		return nil
	}
	out := make([]types.ExecutionAction, 0, len(manifests))
	for _, manifest := range manifests {
		out = append(out, types.ExecutionAction{
			Title:      manifest.Title,
			ScriptText: manifest.Script,
			Target:     convertReference(manifest.Target, path),
		})
	}
	return out
}

var _ ports.ConverterPort = ManifestConverter{}
