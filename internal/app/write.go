package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// WriteGraph loads the workspace and writes the graph, side effects and
// environment into the output directory.
func (s Service) WriteGraph(ctx context.Context, req WriteRequest, run *RunContext) (WriteResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return WriteResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	if s.Output == nil {
		return WriteResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("graph output is not configured")
	}
	result, err := s.Load(ctx, req.Load, run)
	if err != nil {
		return WriteResult{}, err
	}

	output := s.Output(outputDir)
	if err := output.WriteGraph(result.Graph); err != nil {
		return WriteResult{}, err
	}
	if err := output.WriteSideEffects(result.SideEffects); err != nil {
		return WriteResult{}, err
	}
	if err := output.WriteEnvironment(result.Environment); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{
		OutputDir:   outputDir,
		Fingerprint: result.Graph.Fingerprint(),
		SideEffects: len(result.SideEffects),
		LintIssues:  result.LintIssues,
	}, nil
}
