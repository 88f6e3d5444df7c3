package mappers

import (
	"context"
	"path/filepath"

	"workspace-graph/internal/types"
)

const DerivedDirectoryName = "Derived"

// DerivedDirectoryMapper asks for the derived directory of every local
// project to be cleared before generation. The snapshot is returned as is.
type DerivedDirectoryMapper struct{}

func (DerivedDirectoryMapper) Name() string { return "derived_directory" }

func (DerivedDirectoryMapper) Map(_ context.Context, snapshot types.WorkspaceWithProjects) (types.WorkspaceWithProjects, []types.SideEffectDescriptor, error) {
	var effects []types.SideEffectDescriptor
	for _, project := range snapshot.Projects {
		if project.Type == types.ProjectTypeExternal {
			continue
		}
		effects = append(effects, types.DirectorySideEffect(filepath.Join(project.Path, DerivedDirectoryName), types.SideEffectStateAbsent))
	}
	return snapshot, effects, nil
}
