package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"workspace-graph/internal/app"
)

type inspectOptions struct {
	Load   loadOptions
	Target string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the workspace graph and target dependencies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}
	bindLoadFlags(cmd, &opts.Load)
	cmd.Flags().StringVar(&opts.Target, "target", "", "Target name or path:name to report dependencies for")
	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts inspectOptions) error {
	service, err := opts.Load.service(cmd)
	if err != nil {
		return err
	}
	run := app.NewRunContext()
	defer run.Close()
	result, err := service.Inspect(ctx, app.InspectRequest{
		Load:   opts.Load.request(cmd),
		Target: opts.Target,
	}, run)
	if err != nil {
		return err
	}

	fmt.Printf("workspace: %s\n", result.Workspace)
	fmt.Printf("fingerprint: %s\n", result.Fingerprint)
	fmt.Printf("nodes: %d edges: %d\n", result.Nodes, result.Edges)
	fmt.Println("projects:")
	for _, project := range result.Projects {
		fmt.Printf("- %s (%s) %s: %d targets\n", project.Name, project.Type, project.Path, project.Targets)
	}
	for _, target := range result.Targets {
		fmt.Printf("target %s\n", target.ID)
		printIDs("direct", target.Direct)
		printIDs("transitive", target.Transitive)
		printIDs("dependents", target.Dependents)
	}
	return nil
}

func printIDs(label string, ids []string) {
	if len(ids) == 0 {
		fmt.Printf("  %s: none\n", label)
		return
	}
	fmt.Printf("  %s: %s\n", label, strings.Join(ids, ", "))
}
