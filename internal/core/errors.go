package core

import (
	"errors"
	"fmt"
	"strings"

	"workspace-graph/internal/types"
)

// Sentinel errors for errors.Is checks on the fatal error kinds.
var (
	ErrStructural = errors.New("structural configuration error")
	ErrCycle      = errors.New("circular dependency")
	ErrLint       = errors.New("lint errors")
	ErrMapperPass = errors.New("mapper pass failed")
)

// Stage names attached to fatal errors.
const (
	StageMerge        = "merge"
	StageLint         = "lint"
	StageCycleCheck   = "cycle_check"
	StageModelMapping = "model_mapping"
	StageGraphBuild   = "graph_build"
	StageGraphMapping = "graph_mapping"
)

// Structural error kinds.
const (
	KindDuplicateProject         = "duplicate_project"
	KindDuplicateTarget          = "duplicate_target"
	KindProjectCollision         = "project_collision"
	KindUnresolvedPackageProduct = "unresolved_package_product"
	KindUnresolvedExternal       = "unresolved_external_dependency"
	KindTargetNotFound           = "target_not_found"
	KindFrameworkNotFound        = "framework_not_found"
	KindInvalidDependency        = "invalid_dependency"
)

type StructuralConfigurationError struct {
	Stage       string
	Kind        string
	Identifiers []string
	Msg         string
}

func (e *StructuralConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return ErrStructural.Error()
	}
	return fmt.Sprintf("%s: %s", ErrStructural.Error(), e.Msg)
}

func (e *StructuralConfigurationError) Unwrap() error { return ErrStructural }

func structuralError(stage string, kind string, msg string, identifiers ...string) *StructuralConfigurationError {
	return &StructuralConfigurationError{
		Stage:       stage,
		Kind:        kind,
		Identifiers: identifiers,
		Msg:         msg,
	}
}

// CycleError carries the cycle as an ordered node sequence without
// repeating the first node at the end.
type CycleError struct {
	Stage string
	Cycle []string
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Cycle) == 0 {
		return ErrCycle.Error()
	}
	path := append(append([]string(nil), e.Cycle...), e.Cycle[0])
	return fmt.Sprintf("%s: %s", ErrCycle.Error(), strings.Join(path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// LintError aborts a load after every lint issue has been collected.
type LintError struct {
	Stage  string
	Issues []types.LintIssue
}

func (e *LintError) Error() string {
	if e == nil {
		return ""
	}
	errs := types.FilterSeverity(e.Issues, types.SeverityError)
	lines := make([]string, 0, len(errs))
	for _, issue := range errs {
		lines = append(lines, "  - "+issue.Reason)
	}
	return fmt.Sprintf("%s: %d error(s) found\n%s", ErrLint.Error(), len(errs), strings.Join(lines, "\n"))
}

func (e *LintError) Unwrap() error { return ErrLint }

// MapperPassError identifies the failing pass and the snapshot it received.
type MapperPassError struct {
	Stage    string
	Pass     string
	Index    int
	Snapshot string
	Err      error
}

func (e *MapperPassError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s pass %d (%s) on %s: %v", ErrMapperPass.Error(), e.Stage, e.Index, e.Pass, e.Snapshot, e.Err)
}

func (e *MapperPassError) Unwrap() error { return e.Err }

func (e *MapperPassError) Is(target error) bool { return target == ErrMapperPass }
