package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"workspace-graph/internal/ports"
	"workspace-graph/internal/types"
)

// WorkspaceLinter validates workspace schemes against every project of the
// workspace, resolving the cross-project references a project linter
// cannot see.
type WorkspaceLinter struct {
	FileSystem ports.FileSystemPort
}

func NewWorkspaceLinter(fs ports.FileSystemPort) WorkspaceLinter {
	return WorkspaceLinter{FileSystem: fs}
}

func (l WorkspaceLinter) Lint(ctx context.Context, workspace types.Workspace, projects []types.Project) []types.LintIssue {
	byPath := make(map[string]types.Project, len(projects))
	configurations := map[string]struct{}{}
	for _, project := range projects {
		byPath[filepath.Clean(project.Path)] = project
		if project.Type == types.ProjectTypeExternal {
			continue
		}
		for _, name := range project.ConfigurationNames() {
			configurations[name] = struct{}{}
		}
	}
	available := make([]string, 0, len(configurations))
	for name := range configurations {
		available = append(available, name)
	}
	sort.Strings(available)

	var issues []types.LintIssue
	issues = append(issues, lintConfigurations(workspace.Schemes, available)...)
	for _, scheme := range workspace.Schemes {
		seen := map[types.TargetReference]struct{}{}
		for _, ref := range schemeTargetReferences(scheme) {
			key := types.TargetReference{ProjectPath: filepath.Clean(ref.ProjectPath), Name: ref.Name}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if project, ok := byPath[key.ProjectPath]; ok {
				if _, ok := project.Target(ref.Name); ok {
					continue
				}
			}
			issues = append(issues, types.LintError(fmt.Sprintf(
				"The target '%s' specified in scheme '%s' is not defined in the project at path '%s'.",
				ref.Name, scheme.Name, ref.ProjectPath)))
		}
	}
	issues = append(issues, lintStoreKit(l.FileSystem, workspace.Schemes)...)
	log.Ctx(ctx).Debug().
		Str("workspace", workspace.Name).
		Int("issues", len(issues)).
		Msg("workspace schemes linted")
	return issues
}

// LintAll runs the workspace linter and then the project linter over every
// project in path order, returning the concatenated issues.
func LintAll(ctx context.Context, workspaceLinter ports.WorkspaceLinterPort, projectLinter ports.ProjectLinterPort, workspace types.Workspace, projects []types.Project) []types.LintIssue {
	sorted := append([]types.Project(nil), projects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	var issues []types.LintIssue
	if workspaceLinter != nil {
		issues = append(issues, workspaceLinter.Lint(ctx, workspace, sorted)...)
	}
	if projectLinter != nil {
		for _, project := range sorted {
			issues = append(issues, projectLinter.Lint(ctx, project)...)
		}
	}
	return issues
}

// ReportLintIssues logs every issue and returns a LintError when any of
// them has error severity. Warnings alone never fail.
func ReportLintIssues(ctx context.Context, issues []types.LintIssue) error {
	logger := log.Ctx(ctx)
	for _, issue := range issues {
		switch issue.Severity {
		case types.SeverityError:
			logger.Error().Msg(issue.Reason)
		default:
			logger.Warn().Msg(issue.Reason)
		}
	}
	if !types.HasErrors(issues) {
		return nil
	}
	return &LintError{Stage: StageLint, Issues: append([]types.LintIssue(nil), issues...)}
}
