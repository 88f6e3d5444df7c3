package app

import (
	"workspace-graph/internal/adapters"
	"workspace-graph/internal/core"
	"workspace-graph/internal/mappers"
	"workspace-graph/internal/policies"
	"workspace-graph/internal/ports"
)

type Service struct {
	Manifests       ports.ManifestLoaderPort
	Converter       ports.ConverterPort
	PackageGraph    ports.PackageGraphLoaderPort
	FileSystem      ports.FileSystemPort
	WorkspaceLinter ports.WorkspaceLinterPort
	ProjectLinter   ports.ProjectLinterPort
	Builder         ports.GraphBuilderPort
	ModelMappers    []ports.ModelMapperPort
	GraphMappers    []ports.GraphMapperPort
	Output          func(dir string) ports.GraphOutputPort
	MaxWorkers      int
}

func NewService() Service {
	fs := adapters.NewOSFileSystem()
	builder := core.NewGraphBuilder(fs)
	return Service{
		Manifests:       adapters.NewManifestFileAdapter(),
		Converter:       adapters.NewManifestConverter(),
		PackageGraph:    adapters.NewPackageGraphFileAdapter(),
		FileSystem:      fs,
		WorkspaceLinter: core.NewWorkspaceLinter(fs),
		ProjectLinter:   core.NewSchemeLinter(fs),
		Builder:         builder,
		ModelMappers:    mappers.DefaultModelMappers(),
		GraphMappers:    mappers.DefaultGraphMappers(builder, policies.RetentionPolicy{}),
		Output: func(dir string) ports.GraphOutputPort {
			return adapters.NewGraphOutputFileAdapter(dir)
		},
	}
}

// WithRetention returns a copy of the service whose default graph passes
// keep the external targets matched by policy.
func (s Service) WithRetention(policy policies.RetentionPolicy) Service {
	s.GraphMappers = mappers.DefaultGraphMappers(s.Builder, policy)
	return s
}
