package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"workspace-graph/internal/ports"
	"workspace-graph/internal/types"
)

const (
	actionRun     = "run"
	actionTest    = "test"
	actionProfile = "profile"
)

// SchemeLinter validates the schemes of a single project. It can only see
// the project it lints, so any reference into another project is reported.
type SchemeLinter struct {
	FileSystem ports.FileSystemPort
}

func NewSchemeLinter(fs ports.FileSystemPort) SchemeLinter {
	return SchemeLinter{FileSystem: fs}
}

func (l SchemeLinter) Lint(ctx context.Context, project types.Project) []types.LintIssue {
	var issues []types.LintIssue
	issues = append(issues, lintConfigurations(project.Schemes, project.ConfigurationNames())...)
	issues = append(issues, l.lintTargetReferences(project)...)
	issues = append(issues, lintStoreKit(l.FileSystem, project.Schemes)...)
	log.Ctx(ctx).Debug().
		Str("project", project.Path).
		Int("issues", len(issues)).
		Msg("project schemes linted")
	return issues
}

func (l SchemeLinter) lintTargetReferences(project types.Project) []types.LintIssue {
	var issues []types.LintIssue
	for _, scheme := range project.Schemes {
		seen := map[types.TargetReference]struct{}{}
		for _, ref := range schemeTargetReferences(scheme) {
			if samePath(ref.ProjectPath, project.Path) {
				continue
			}
			key := types.TargetReference{ProjectPath: filepath.Clean(ref.ProjectPath), Name: ref.Name}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			issues = append(issues, types.LintError(fmt.Sprintf(
				"The target '%s' specified in scheme '%s' is not defined in the project named '%s'. Consider using a workspace scheme instead to reference a target in another project.",
				ref.Name, scheme.Name, project.Name)))
		}
	}
	return issues
}

// lintConfigurations reports every action configuration missing from
// available. Run issues come first across all schemes, then test, then
// profile.
func lintConfigurations(schemes []types.Scheme, available []string) []types.LintIssue {
	known := make(map[string]struct{}, len(available))
	for _, name := range available {
		known[name] = struct{}{}
	}
	missing := func(action string, name string) []types.LintIssue {
		if name == "" {
			return nil
		}
		if _, ok := known[name]; ok {
			return nil
		}
		return []types.LintIssue{types.LintError(fmt.Sprintf(
			"The build configuration '%s' specified in the scheme's %s action isn't defined in the project.", name, action))}
	}

	var issues []types.LintIssue
	for _, scheme := range schemes {
		if scheme.RunAction != nil {
			issues = append(issues, missing(actionRun, scheme.RunAction.ConfigurationName)...)
		}
	}
	for _, scheme := range schemes {
		if scheme.TestAction != nil {
			issues = append(issues, missing(actionTest, scheme.TestAction.ConfigurationName)...)
		}
	}
	for _, scheme := range schemes {
		if scheme.ProfileAction != nil {
			issues = append(issues, missing(actionProfile, scheme.ProfileAction.ConfigurationName)...)
		}
	}
	return issues
}

// lintStoreKit skips the check when fs is nil.
func lintStoreKit(fs ports.FileSystemPort, schemes []types.Scheme) []types.LintIssue {
	if fs == nil {
		return nil
	}
	var issues []types.LintIssue
	for _, scheme := range schemes {
		if scheme.RunAction == nil || scheme.RunAction.StoreKitConfigurationPath == "" {
			continue
		}
		path := scheme.RunAction.StoreKitConfigurationPath
		if fs.Exists(path) {
			continue
		}
		issues = append(issues, types.LintError("StoreKit configuration file not found at path "+path))
	}
	return issues
}

// schemeTargetReferences lists every target a scheme points at, in action
// order: build, test, run, profile.
func schemeTargetReferences(scheme types.Scheme) []types.TargetReference {
	var refs []types.TargetReference
	addActions := func(actions []types.ExecutionAction) {
		for _, action := range actions {
			if action.Target != nil {
				refs = append(refs, *action.Target)
			}
		}
	}
	if build := scheme.BuildAction; build != nil {
		refs = append(refs, build.Targets...)
		addActions(build.PreActions)
		addActions(build.PostActions)
	}
	if test := scheme.TestAction; test != nil {
		refs = append(refs, test.Targets...)
		addActions(test.PreActions)
		addActions(test.PostActions)
	}
	if run := scheme.RunAction; run != nil {
		if run.Executable != nil {
			refs = append(refs, *run.Executable)
		}
		addActions(run.PreActions)
		addActions(run.PostActions)
	}
	if profile := scheme.ProfileAction; profile != nil && profile.Executable != nil {
		refs = append(refs, *profile.Executable)
	}
	return refs
}

func samePath(a string, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
