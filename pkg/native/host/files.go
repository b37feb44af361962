package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RemoveFiles deletes the files in dir accepted by match and then removes dir
// if it is left empty. A missing directory is not an error.
func RemoveFiles(dir string, match func(name string) bool) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("IO error: %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !match(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("IO error: %w", err)
		}
	}
	// Unrelated files keep the directory alive.
	_ = os.Remove(dir)
	return nil
}
