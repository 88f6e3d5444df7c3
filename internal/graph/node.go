package graph

import (
	"path/filepath"

	"workspace-graph/internal/types"
)

type NodeKind string

const (
	NodeKindTarget         NodeKind = "target"
	NodeKindPackageProduct NodeKind = "package_product"
	NodeKindFramework      NodeKind = "framework"
	NodeKindXCFramework    NodeKind = "xcframework"
	NodeKindLibrary        NodeKind = "library"
	NodeKindSDK            NodeKind = "sdk"
)

// NodeID keys a node. Path holds the project path for targets, the package
// name for package products and the binary path for prebuilt nodes.
type NodeID struct {
	Kind NodeKind `yaml:"kind"`
	Path string   `yaml:"path,omitempty"`
	Name string   `yaml:"name"`
}

func TargetNode(projectPath string, name string) NodeID {
	return NodeID{Kind: NodeKindTarget, Path: projectPath, Name: name}
}

func PackageProductNode(pkg string, name string) NodeID {
	return NodeID{Kind: NodeKindPackageProduct, Path: pkg, Name: name}
}

func PrebuiltNode(kind types.DependencyKind, path string) NodeID {
	nodeKind := NodeKindLibrary
	switch kind {
	case types.DependencyKindFramework:
		nodeKind = NodeKindFramework
	case types.DependencyKindXCFramework:
		nodeKind = NodeKindXCFramework
	}
	return NodeID{Kind: nodeKind, Path: path, Name: filepath.Base(path)}
}

func SDKNode(name string) NodeID {
	return NodeID{Kind: NodeKindSDK, Name: name}
}

func (id NodeID) String() string {
	switch id.Kind {
	case NodeKindTarget:
		return id.Path + ":" + id.Name
	case NodeKindPackageProduct:
		return "package:" + id.Path + "/" + id.Name
	case NodeKindSDK:
		return "sdk:" + id.Name
	default:
		return string(id.Kind) + ":" + id.Path
	}
}

// Less orders ids by path, then name, then kind.
func (id NodeID) Less(other NodeID) bool {
	if id.Path != other.Path {
		return id.Path < other.Path
	}
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	return id.Kind < other.Kind
}

type Node struct {
	ID NodeID `yaml:"id"`
	// Project is the owning project path for targets and the backing
	// external project path for package products.
	Project  string        `yaml:"project,omitempty"`
	Product  types.Product `yaml:"product,omitempty"`
	External bool          `yaml:"external,omitempty"`
}

type Edge struct {
	From NodeID               `yaml:"from"`
	To   NodeID               `yaml:"to"`
	Kind types.DependencyKind `yaml:"kind"`
}

func (e Edge) less(other Edge) bool {
	if e.From != other.From {
		return e.From.Less(other.From)
	}
	if e.To != other.To {
		return e.To.Less(other.To)
	}
	return e.Kind < other.Kind
}
