// Package shared provides common utility functions used across multiple
// packages in the workspace-graph codebase.
package shared

import (
	"path/filepath"
	"sort"
	"strings"
)

// ResolvePath returns path unchanged when it is absolute and joined onto
// base otherwise. The result is always cleaned.
func ResolvePath(base string, path string) string {
	trimmed := strings.TrimSpace(path)
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

// SortedUnique returns the distinct values in ascending order.
func SortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// DefaultName falls back to the base name of path when name is blank.
func DefaultName(name string, path string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return filepath.Base(path)
}
