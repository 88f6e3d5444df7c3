package mappers

import (
	"workspace-graph/internal/policies"
	"workspace-graph/internal/ports"
)

// DefaultModelMappers returns the built-in model passes in execution order.
func DefaultModelMappers() []ports.ModelMapperPort {
	return []ports.ModelMapperPort{
		AutogeneratedSchemesMapper{},
		DerivedDirectoryMapper{},
	}
}

// DefaultGraphMappers returns the built-in graph passes in execution order.
// The summary runs last so it describes the pruned graph.
func DefaultGraphMappers(builder ports.GraphBuilderPort, policy policies.RetentionPolicy) []ports.GraphMapperPort {
	return []ports.GraphMapperPort{
		PruneOrphanExternalTargetsMapper{Builder: builder, Policy: policy},
		GraphSummaryMapper{},
	}
}
