package types

import "slices"

// TargetReference identifies a target by the path of its owning project and
// its name.
type TargetReference struct {
	ProjectPath string
	Name        string
}

func (r TargetReference) String() string {
	return r.ProjectPath + ":" + r.Name
}

type TargetDependency struct {
	Kind DependencyKind
	// Name is the target, product or sdk name.
	Name string
	// ProjectPath is set for project dependencies.
	ProjectPath string
	// Package is set for package product dependencies.
	Package string
	// Path is set for prebuilt binaries.
	Path string
}

type Target struct {
	Name         string
	Product      Product
	Dependencies []TargetDependency
}

func (t Target) Clone() Target {
	t.Dependencies = slices.Clone(t.Dependencies)
	return t
}

type BuildConfiguration struct {
	Name    string
	Variant ConfigurationVariant
}

type ExecutionAction struct {
	Title      string
	ScriptText string
	Target     *TargetReference
}

type BuildAction struct {
	Targets     []TargetReference
	PreActions  []ExecutionAction
	PostActions []ExecutionAction
}

type TestAction struct {
	Targets           []TargetReference
	ConfigurationName string
	Coverage          bool
	PreActions        []ExecutionAction
	PostActions       []ExecutionAction
}

type RunAction struct {
	ConfigurationName         string
	Executable                *TargetReference
	StoreKitConfigurationPath string
	PreActions                []ExecutionAction
	PostActions               []ExecutionAction
}

type ProfileAction struct {
	ConfigurationName string
	Executable        *TargetReference
}

type Scheme struct {
	Name          string
	Shared        bool
	BuildAction   *BuildAction
	TestAction    *TestAction
	RunAction     *RunAction
	ProfileAction *ProfileAction
}

func (s Scheme) Clone() Scheme {
	if s.BuildAction != nil {
		action := *s.BuildAction
		action.Targets = slices.Clone(action.Targets)
		action.PreActions = cloneExecutionActions(action.PreActions)
		action.PostActions = cloneExecutionActions(action.PostActions)
		s.BuildAction = &action
	}
	if s.TestAction != nil {
		action := *s.TestAction
		action.Targets = slices.Clone(action.Targets)
		action.PreActions = cloneExecutionActions(action.PreActions)
		action.PostActions = cloneExecutionActions(action.PostActions)
		s.TestAction = &action
	}
	if s.RunAction != nil {
		action := *s.RunAction
		action.Executable = cloneReference(action.Executable)
		action.PreActions = cloneExecutionActions(action.PreActions)
		action.PostActions = cloneExecutionActions(action.PostActions)
		s.RunAction = &action
	}
	if s.ProfileAction != nil {
		action := *s.ProfileAction
		action.Executable = cloneReference(action.Executable)
		s.ProfileAction = &action
	}
	return s
}

type ProjectOptions struct {
	AutogenerateSchemes bool
}

type Project struct {
	Path           string
	Name           string
	Type           ProjectType
	Targets        []Target
	Configurations []BuildConfiguration
	Schemes        []Scheme
	Options        ProjectOptions
}

func (p Project) Clone() Project {
	targets := make([]Target, len(p.Targets))
	for i, target := range p.Targets {
		targets[i] = target.Clone()
	}
	schemes := make([]Scheme, len(p.Schemes))
	for i, scheme := range p.Schemes {
		schemes[i] = scheme.Clone()
	}
	p.Targets = targets
	p.Schemes = schemes
	p.Configurations = slices.Clone(p.Configurations)
	return p
}

// Target returns the target with the given name.
func (p Project) Target(name string) (Target, bool) {
	for _, target := range p.Targets {
		if target.Name == name {
			return target, true
		}
	}
	return Target{}, false
}

// ConfigurationNames returns the declared configuration names in order.
func (p Project) ConfigurationNames() []string {
	names := make([]string, 0, len(p.Configurations))
	for _, configuration := range p.Configurations {
		names = append(names, configuration.Name)
	}
	return names
}

type Workspace struct {
	Name     string
	Path     string
	Projects []string
	Schemes  []Scheme
}

func (w Workspace) Clone() Workspace {
	w.Projects = slices.Clone(w.Projects)
	schemes := make([]Scheme, len(w.Schemes))
	for i, scheme := range w.Schemes {
		schemes[i] = scheme.Clone()
	}
	w.Schemes = schemes
	return w
}

type PackageProduct struct {
	Package string
	Name    string
}

func (p PackageProduct) String() string {
	return p.Package + "/" + p.Name
}

// ExternalPackageGraph is the package graph resolved outside the core.
// ExternalDependencies maps a dependency name used by local manifests to
// the dependencies it expands to.
type ExternalPackageGraph struct {
	ExternalDependencies map[string][]TargetDependency
	ExternalProjects     map[string]Project
}

// WorkspaceWithProjects is the snapshot model mappers operate on.
type WorkspaceWithProjects struct {
	Workspace Workspace
	Projects  []Project
}

func (w WorkspaceWithProjects) Clone() WorkspaceWithProjects {
	projects := make([]Project, len(w.Projects))
	for i, project := range w.Projects {
		projects[i] = project.Clone()
	}
	return WorkspaceWithProjects{
		Workspace: w.Workspace.Clone(),
		Projects:  projects,
	}
}

func cloneReference(ref *TargetReference) *TargetReference {
	if ref == nil {
		return nil
	}
	copied := *ref
	return &copied
}

func cloneExecutionActions(actions []ExecutionAction) []ExecutionAction {
	if actions == nil {
		return nil
	}
	out := make([]ExecutionAction, len(actions))
	for i, action := range actions {
		action.Target = cloneReference(action.Target)
		out[i] = action
	}
	return out
}
