package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"workspace-graph/internal/app"
	"workspace-graph/internal/core"
)

type lintOptions struct {
	Load loadOptions
}

func newLintCommand() *cobra.Command {
	opts := lintOptions{}
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Report scheme and configuration issues without building the graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLint(cmd.Context(), cmd, opts)
		},
	}
	bindLoadFlags(cmd, &opts.Load)
	return cmd
}

func runLint(ctx context.Context, cmd *cobra.Command, opts lintOptions) error {
	service, err := opts.Load.service(cmd)
	if err != nil {
		return err
	}
	load := opts.Load.request(cmd)
	result, err := service.Lint(ctx, app.LintRequest{
		Path:           load.Path,
		DisableSandbox: load.DisableSandbox,
		MaxWorkers:     load.MaxWorkers,
	})
	if err != nil {
		return err
	}
	for _, issue := range result.Issues {
		fmt.Println(issue.String())
	}
	if result.HasErrors() {
		return &core.LintError{Stage: core.StageLint, Issues: result.Issues}
	}
	if len(result.Issues) == 0 {
		fmt.Println("no issues found")
	}
	return nil
}
