package files

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to path by staging it in a uniquely named temp file
// in the same directory and renaming it into place, so a reader never observes
// a truncated file under the final name. Parent directories are created as
// needed. A crash between write and rename can leave a stray *.tmp-* file next
// to the target; that residue is harmless and is not cleaned up here.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// RemoveQuiet unlinks path and swallows the error. Used for post-commit asset
// cleanup where an already-missing file must never mask the success of the
// database mutation that committed before it.
func RemoveQuiet(path string) {
	_ = os.Remove(path)
}
