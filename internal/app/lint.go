package app

import (
	"context"

	"workspace-graph/internal/core"
)

// Lint runs the load sequence up to and including linting and returns every
// issue. Error issues are reported, not raised.
func (s Service) Lint(ctx context.Context, req LintRequest) (LintResult, error) {
	snapshot, err := s.loadModels(ctx, req.Path, req.DisableSandbox, req.MaxWorkers)
	if err != nil {
		return LintResult{}, err
	}
	issues := core.LintAll(ctx, s.WorkspaceLinter, s.ProjectLinter, snapshot.Workspace, snapshot.Projects)
	return LintResult{Issues: issues}, nil
}
