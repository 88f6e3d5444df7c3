package ports

import (
	"context"

	"workspace-graph/internal/types"
)

type ProjectLinterPort interface {
	Lint(ctx context.Context, project types.Project) []types.LintIssue
}

type WorkspaceLinterPort interface {
	Lint(ctx context.Context, workspace types.Workspace, projects []types.Project) []types.LintIssue
}
