package adapters

import (
	"os"

	"workspace-graph/internal/ports"
)

type OSFileSystem struct{}

func NewOSFileSystem() OSFileSystem {
	return OSFileSystem{}
}

// Exists reports whether anything is present at path. Frameworks are
// directories, so directories count.
func (OSFileSystem) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

var _ ports.FileSystemPort = OSFileSystem{}
