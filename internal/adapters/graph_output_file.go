package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"workspace-graph/internal/graph"
	"workspace-graph/internal/ports"
	"workspace-graph/internal/types"
)

const (
	GraphFileName       = "graph.yaml"
	SideEffectsFileName = "side-effects.yaml"
	EnvironmentFileName = "environment.yaml"
)

// GraphDocument is the on-disk hand-off format for the build-plan generator.
type GraphDocument struct {
	Workspace   string            `yaml:"workspace"`
	Fingerprint string            `yaml:"fingerprint"`
	Projects    []ProjectDocument `yaml:"projects"`
	Nodes       []graph.Node      `yaml:"nodes"`
	Edges       []graph.Edge      `yaml:"edges"`
}

type ProjectDocument struct {
	Path    string            `yaml:"path"`
	Name    string            `yaml:"name"`
	Type    types.ProjectType `yaml:"type"`
	Targets []string          `yaml:"targets"`
}

func NewGraphDocument(g *graph.Graph) GraphDocument {
	doc := GraphDocument{
		Workspace:   g.Workspace().Name,
		Fingerprint: g.Fingerprint(),
		Nodes:       g.Nodes(),
		Edges:       g.Edges(),
	}
	for _, project := range g.Projects() {
		entry := ProjectDocument{Path: project.Path, Name: project.Name, Type: project.Type}
		for _, target := range project.Targets {
			entry.Targets = append(entry.Targets, target.Name)
		}
		doc.Projects = append(doc.Projects, entry)
	}
	return doc
}

type GraphOutputFileAdapter struct {
	Dir string
}

func NewGraphOutputFileAdapter(dir string) GraphOutputFileAdapter {
	return GraphOutputFileAdapter{Dir: dir}
}

func (a GraphOutputFileAdapter) WriteGraph(g *graph.Graph) error {
	if g == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("graph is nil")
	}
	return a.writeYAML(GraphFileName, NewGraphDocument(g))
}

func (a GraphOutputFileAdapter) WriteSideEffects(effects []types.SideEffectDescriptor) error {
	if effects == nil {
		effects = []types.SideEffectDescriptor{}
	}
	return a.writeYAML(SideEffectsFileName, effects)
}

func (a GraphOutputFileAdapter) WriteEnvironment(env types.MapperEnvironment) error {
	values := make(map[string]any, env.Len())
	for _, key := range env.Keys() {
		value, _ := env.Value(key)
		values[key] = value
	}
	return a.writeYAML(EnvironmentFileName, values)
}

func (a GraphOutputFileAdapter) writeYAML(filename string, value any) error {
	path, err := a.ensurePath(filename)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode " + filename).
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + filename).
			WithCause(err)
	}
	return nil
}

func (a GraphOutputFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

var _ ports.GraphOutputPort = GraphOutputFileAdapter{}
