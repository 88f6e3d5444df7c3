package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"workspace-graph/internal/app"
)

type graphOptions struct {
	Load      loadOptions
	OutputDir string
}

func newGraphCommand() *cobra.Command {
	opts := graphOptions{}
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Load the workspace and write the compiled graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraph(cmd.Context(), cmd, opts)
		},
	}
	bindLoadFlags(cmd, &opts.Load)
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	return cmd
}

func runGraph(ctx context.Context, cmd *cobra.Command, opts graphOptions) error {
	service, err := opts.Load.service(cmd)
	if err != nil {
		return err
	}
	result, err := service.WriteGraph(ctx, app.WriteRequest{
		Load:      opts.Load.request(cmd),
		OutputDir: resolveString(cmd, opts.OutputDir, "output", "output"),
	}, nil)
	if err != nil {
		return err
	}
	for _, issue := range result.LintIssues {
		fmt.Println(issue.String())
	}
	fmt.Printf("graph written: %s\n", result.OutputDir)
	fmt.Printf("fingerprint: %s\n", result.Fingerprint)
	fmt.Printf("side effects: %d\n", result.SideEffects)
	return nil
}
