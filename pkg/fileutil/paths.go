package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePathFromConfig resolves a path from a configuration file.
// If the provided path is already absolute, it's returned as is.
// If it's relative, it's joined with the configDir to create an absolute path.
func ResolvePathFromConfig(configDir, pathFromYAML string) (string, error) {
	if pathFromYAML == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(pathFromYAML) {
		return filepath.Clean(pathFromYAML), nil
	}
	return filepath.Join(configDir, pathFromYAML), nil
}

// EnsureParentDir creates the directory that will contain path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}
	return nil
}
