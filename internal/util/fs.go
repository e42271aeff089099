package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the intake or artifact directory if it is missing.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin pins a client-supplied filename inside root. Only the base name
// survives, so an upload cannot write outside the intake directory.
func SafeJoin(root, name string) string {
	return filepath.Join(root, filepath.Base(name))
}
