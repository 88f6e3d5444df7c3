package app

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"workspace-graph/internal/core"
	"workspace-graph/internal/types"
)

// Load runs the fixed load sequence: root manifest check, manifest load,
// optional package graph, conversion, merge, lint, cycle check, model
// passes, graph build and graph passes. The first graph built is stored in
// run. A nil run gets a private context that is closed on return.
func (s Service) Load(ctx context.Context, req LoadRequest, run *RunContext) (LoadResult, error) {
	if run == nil {
		run = NewRunContext()
		defer run.Close()
	}
	logger := log.Ctx(ctx).With().Str("run_id", run.ID).Logger()
	ctx = logger.WithContext(ctx)

	snapshot, err := s.loadModels(ctx, req.Path, req.DisableSandbox, req.MaxWorkers)
	if err != nil {
		return LoadResult{}, err
	}

	issues := core.LintAll(ctx, s.WorkspaceLinter, s.ProjectLinter, snapshot.Workspace, snapshot.Projects)
	if err := core.ReportLintIssues(ctx, issues); err != nil {
		return LoadResult{}, err
	}

	if err := canceled(ctx, core.StageCycleCheck); err != nil {
		return LoadResult{}, err
	}
	if err := core.NewCycleDetector().Detect(ctx, snapshot.Projects); err != nil {
		return LoadResult{}, err
	}

	mapped, modelEffects, err := core.NewModelPipeline(s.ModelMappers...).Run(ctx, snapshot)
	if err != nil {
		return LoadResult{}, err
	}

	if s.Builder == nil {
		return LoadResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("graph builder is not configured")
	}
	g, err := s.Builder.Build(ctx, mapped)
	if err != nil {
		return LoadResult{}, err
	}
	run.StoreGraph(g)

	final, graphEffects, env, err := core.NewGraphPipeline(s.GraphMappers...).Run(ctx, g, types.NewMapperEnvironment())
	if err != nil {
		return LoadResult{}, err
	}

	effects := make([]types.SideEffectDescriptor, 0, len(modelEffects)+len(graphEffects))
	effects = append(effects, modelEffects...)
	effects = append(effects, graphEffects...)
	logger.Debug().
		Int("projects", len(final.Projects())).
		Int("side_effects", len(effects)).
		Int("lint_issues", len(issues)).
		Msg("workspace graph loaded")
	return LoadResult{
		RunID:       run.ID,
		Graph:       final,
		SideEffects: effects,
		Environment: env,
		LintIssues:  issues,
	}, nil
}

// loadModels produces the merged model snapshot.
func (s Service) loadModels(ctx context.Context, path string, disableSandbox bool, maxWorkers int) (types.WorkspaceWithProjects, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return types.WorkspaceWithProjects{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workspace path is required")
	}
	if err := s.Manifests.ValidateHasRootManifest(path); err != nil {
		return types.WorkspaceWithProjects{}, err
	}
	if err := canceled(ctx, "manifest load"); err != nil {
		return types.WorkspaceWithProjects{}, err
	}
	manifests, err := s.Manifests.LoadWorkspace(ctx, path, disableSandbox)
	if err != nil {
		return types.WorkspaceWithProjects{}, err
	}

	external, err := s.loadPackageGraph(ctx, manifests)
	if err != nil {
		return types.WorkspaceWithProjects{}, err
	}

	workspace, err := s.Converter.ConvertWorkspace(ctx, manifests.Workspace, manifests.Path)
	if err != nil {
		return types.WorkspaceWithProjects{}, err
	}
	local, err := s.convertProjects(ctx, manifests, external.ExternalDependencies, s.workers(maxWorkers))
	if err != nil {
		return types.WorkspaceWithProjects{}, err
	}

	merged, err := core.NewMerger().Merge(ctx, local, external)
	if err != nil {
		return types.WorkspaceWithProjects{}, err
	}
	return types.WorkspaceWithProjects{Workspace: workspace, Projects: merged}, nil
}

func (s Service) loadPackageGraph(ctx context.Context, manifests types.WorkspaceManifests) (types.ExternalPackageGraph, error) {
	logger := log.Ctx(ctx)
	if !core.ShouldLoadPackageGraph(manifests) {
		logger.Debug().Msg("no external dependencies, package graph skipped")
		return types.ExternalPackageGraph{}, nil
	}
	if s.PackageGraph == nil {
		return types.ExternalPackageGraph{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("workspace uses external dependencies but no package graph loader is configured")
	}
	manifestPath, found, err := s.PackageGraph.LocatePackageManifest(manifests.Path)
	if err != nil {
		return types.ExternalPackageGraph{}, err
	}
	if !found {
		logger.Debug().Str("path", manifests.Path).Msg("no package manifest found")
		return types.ExternalPackageGraph{}, nil
	}
	return s.PackageGraph.Load(ctx, manifestPath)
}

// convertProjects converts every project manifest with at most workers
// conversions in flight. Results land in the slot of their path, so the
// output is in path order whatever order conversions finish in.
func (s Service) convertProjects(ctx context.Context, manifests types.WorkspaceManifests, external map[string][]types.TargetDependency, workers int) ([]types.Project, error) {
	paths := manifests.ProjectPaths()
	results := make([]types.Project, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, path := range paths {
		group.Go(func() error {
			project, err := s.Converter.ConvertProject(groupCtx, manifests.Projects[path], path, external)
			if err != nil {
				return err
			}
			results[i] = project
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Int("projects", len(results)).
		Int("workers", workers).
		Msg("projects converted")
	return results, nil
}

func (s Service) workers(requested int) int {
	switch {
	case requested > 0:
		return requested
	case s.MaxWorkers > 0:
		return s.MaxWorkers
	default:
		return runtime.GOMAXPROCS(0)
	}
}

func canceled(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load canceled before %s: %w", stage, err)
	}
	return nil
}
