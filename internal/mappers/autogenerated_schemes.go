package mappers

import (
	"context"

	"github.com/rs/zerolog/log"

	"workspace-graph/internal/types"
)

// AutogeneratedSchemesMapper adds one shared scheme per target for local
// projects that opt in through autogenerate_schemes. Targets that already
// have a scheme with their name are left alone.
type AutogeneratedSchemesMapper struct{}

func (AutogeneratedSchemesMapper) Name() string { return "autogenerated_schemes" }

func (m AutogeneratedSchemesMapper) Map(ctx context.Context, snapshot types.WorkspaceWithProjects) (types.WorkspaceWithProjects, []types.SideEffectDescriptor, error) {
	snapshot = snapshot.Clone()
	added := 0
	for i, project := range snapshot.Projects {
		if project.Type == types.ProjectTypeExternal || !project.Options.AutogenerateSchemes {
			continue
		}
		existing := make(map[string]struct{}, len(project.Schemes))
		for _, scheme := range project.Schemes {
			existing[scheme.Name] = struct{}{}
		}
		configuration := debugConfiguration(project)
		for _, target := range project.Targets {
			if _, ok := existing[target.Name]; ok {
				continue
			}
			project.Schemes = append(project.Schemes, autogeneratedScheme(project, target, configuration))
			added++
		}
		snapshot.Projects[i] = project
	}
	log.Ctx(ctx).Debug().Int("schemes", added).Msg("schemes autogenerated")
	return snapshot, nil, nil
}

func autogeneratedScheme(project types.Project, target types.Target, configuration string) types.Scheme {
	self := types.TargetReference{ProjectPath: project.Path, Name: target.Name}
	scheme := types.Scheme{
		Name:        target.Name,
		Shared:      true,
		BuildAction: &types.BuildAction{Targets: []types.TargetReference{self}},
	}

	var testTargets []types.TargetReference
	if target.Product.Testable() {
		testTargets = append(testTargets, self)
	} else {
		for _, candidate := range project.Targets {
			if candidate.Product.Testable() && dependsOnTarget(candidate, target.Name) {
				testTargets = append(testTargets, types.TargetReference{ProjectPath: project.Path, Name: candidate.Name})
			}
		}
	}
	if len(testTargets) > 0 {
		scheme.TestAction = &types.TestAction{Targets: testTargets, ConfigurationName: configuration}
	}
	if target.Product.Runnable() {
		executable := self
		scheme.RunAction = &types.RunAction{ConfigurationName: configuration, Executable: &executable}
	}
	return scheme
}

func dependsOnTarget(target types.Target, name string) bool {
	for _, dep := range target.Dependencies {
		if dep.Kind == types.DependencyKindTarget && dep.Name == name {
			return true
		}
	}
	return false
}

// debugConfiguration returns the first debug configuration, falling back to
// the first declared one.
func debugConfiguration(project types.Project) string {
	for _, configuration := range project.Configurations {
		if configuration.Variant == types.ConfigurationVariantDebug {
			return configuration.Name
		}
	}
	if len(project.Configurations) > 0 {
		return project.Configurations[0].Name
	}
	return ""
}
