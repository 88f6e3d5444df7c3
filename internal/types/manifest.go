package types

import "sort"

type WorkspaceManifest struct {
	Name     string           `yaml:"name"`
	Projects []string         `yaml:"projects"`
	Schemes  []SchemeManifest `yaml:"schemes,omitempty"`
}

type ConfigurationManifest struct {
	Name    string               `yaml:"name"`
	Variant ConfigurationVariant `yaml:"variant"`
}

type ProjectOptionsManifest struct {
	AutogenerateSchemes bool `yaml:"autogenerate_schemes,omitempty"`
}

type ProjectManifest struct {
	Name           string                  `yaml:"name"`
	Configurations []ConfigurationManifest `yaml:"configurations,omitempty"`
	Options        ProjectOptionsManifest  `yaml:"options,omitempty"`
	Targets        []TargetManifest        `yaml:"targets"`
	Schemes        []SchemeManifest        `yaml:"schemes,omitempty"`
}

// ContainsExternalDependencies reports whether any target pulls from the
// external package graph, either by external name or by package product.
func (m ProjectManifest) ContainsExternalDependencies() bool {
	for _, target := range m.Targets {
		for _, dep := range target.Dependencies {
			if dep.External != "" || dep.Package != "" {
				return true
			}
		}
	}
	return false
}

type TargetManifest struct {
	Name         string               `yaml:"name"`
	Product      Product              `yaml:"product"`
	Dependencies []DependencyManifest `yaml:"dependencies,omitempty"`
}

// DependencyManifest is a tagged union; exactly one selector is expected.
// Project is combined with Target, Package with Product.
type DependencyManifest struct {
	Target      string `yaml:"target,omitempty"`
	Project     string `yaml:"project,omitempty"`
	External    string `yaml:"external,omitempty"`
	Package     string `yaml:"package,omitempty"`
	Product     string `yaml:"product,omitempty"`
	Framework   string `yaml:"framework,omitempty"`
	XCFramework string `yaml:"xcframework,omitempty"`
	Library     string `yaml:"library,omitempty"`
	SDK         string `yaml:"sdk,omitempty"`
}

type TargetReferenceManifest struct {
	Project string `yaml:"project,omitempty"`
	Target  string `yaml:"target"`
}

type ExecutionActionManifest struct {
	Title  string                   `yaml:"title"`
	Script string                   `yaml:"script"`
	Target *TargetReferenceManifest `yaml:"target,omitempty"`
}

type BuildActionManifest struct {
	Targets     []TargetReferenceManifest `yaml:"targets"`
	PreActions  []ExecutionActionManifest `yaml:"pre_actions,omitempty"`
	PostActions []ExecutionActionManifest `yaml:"post_actions,omitempty"`
}

type TestActionManifest struct {
	Targets       []TargetReferenceManifest `yaml:"targets"`
	Configuration string                    `yaml:"configuration,omitempty"`
	Coverage      bool                      `yaml:"coverage,omitempty"`
	PreActions    []ExecutionActionManifest `yaml:"pre_actions,omitempty"`
	PostActions   []ExecutionActionManifest `yaml:"post_actions,omitempty"`
}

type RunActionManifest struct {
	Configuration         string                    `yaml:"configuration,omitempty"`
	Executable            *TargetReferenceManifest  `yaml:"executable,omitempty"`
	StoreKitConfiguration string                    `yaml:"storekit_configuration,omitempty"`
	PreActions            []ExecutionActionManifest `yaml:"pre_actions,omitempty"`
	PostActions           []ExecutionActionManifest `yaml:"post_actions,omitempty"`
}

type ProfileActionManifest struct {
	Configuration string                   `yaml:"configuration,omitempty"`
	Executable    *TargetReferenceManifest `yaml:"executable,omitempty"`
}

type SchemeManifest struct {
	Name    string                 `yaml:"name"`
	Shared  bool                   `yaml:"shared,omitempty"`
	Build   *BuildActionManifest   `yaml:"build,omitempty"`
	Test    *TestActionManifest    `yaml:"test,omitempty"`
	Run     *RunActionManifest     `yaml:"run,omitempty"`
	Profile *ProfileActionManifest `yaml:"profile,omitempty"`
}

// WorkspaceManifests is everything the manifest loader found under a root
// path. Projects is keyed by absolute project directory.
type WorkspaceManifests struct {
	Path      string
	Workspace WorkspaceManifest
	Projects  map[string]ProjectManifest
}

func (m WorkspaceManifests) ProjectPaths() []string {
	paths := make([]string, 0, len(m.Projects))
	for path := range m.Projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// PackageOnly reports whether the root describes nothing but packages.
func (m WorkspaceManifests) PackageOnly() bool {
	return len(m.Projects) == 0
}

func (m WorkspaceManifests) HasExternalDependencies() bool {
	for _, project := range m.Projects {
		if project.ContainsExternalDependencies() {
			return true
		}
	}
	return false
}

type PackageGraphManifest struct {
	Packages []PackageManifest `yaml:"packages"`
}

type PackageManifest struct {
	Name     string           `yaml:"name"`
	Path     string           `yaml:"path"`
	Products []TargetManifest `yaml:"products"`
}
