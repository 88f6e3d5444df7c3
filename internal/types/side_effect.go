package types

import (
	"maps"
	"slices"
	"sort"
)

// SideEffectDescriptor is a deferred instruction produced by mapper passes.
// The core only collects and orders descriptors; callers interpret them.
type SideEffectDescriptor struct {
	Kind     SideEffectKind  `yaml:"kind"`
	Path     string          `yaml:"path,omitempty"`
	Contents []byte          `yaml:"contents,omitempty"`
	State    SideEffectState `yaml:"state,omitempty"`
	Command  []string        `yaml:"command,omitempty"`
}

func FileSideEffect(path string, contents []byte) SideEffectDescriptor {
	return SideEffectDescriptor{Kind: SideEffectKindFile, Path: path, Contents: contents, State: SideEffectStatePresent}
}

func DirectorySideEffect(path string, state SideEffectState) SideEffectDescriptor {
	return SideEffectDescriptor{Kind: SideEffectKindDirectory, Path: path, State: state}
}

// MapperEnvironment is an immutable string-keyed map threaded through graph
// mappers. With returns an updated copy and leaves the receiver untouched.
type MapperEnvironment struct {
	values map[string]any
}

func NewMapperEnvironment() MapperEnvironment {
	return MapperEnvironment{}
}

func (e MapperEnvironment) With(key string, value any) MapperEnvironment {
	values := maps.Clone(e.values)
	if values == nil {
		values = map[string]any{}
	}
	values[key] = value
	return MapperEnvironment{values: values}
}

func (e MapperEnvironment) Value(key string) (any, bool) {
	value, ok := e.values[key]
	return value, ok
}

func (e MapperEnvironment) String(key string) string {
	value, ok := e.values[key].(string)
	if !ok {
		return ""
	}
	return value
}

func (e MapperEnvironment) Keys() []string {
	keys := slices.Collect(maps.Keys(e.values))
	sort.Strings(keys)
	return keys
}

func (e MapperEnvironment) Len() int {
	return len(e.values)
}
