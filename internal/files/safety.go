package files

import (
	"path/filepath"
	"strings"

	"campaignsmith/internal/apperr"
)

// AssertInside fails with an UnsafePath error when candidate resolves outside
// root. It must be called before every read, write or delete whose path is
// derived from a database-stored relative path or a user-supplied title;
// slugified names are re-validated here as defense in depth.
func AssertInside(root, candidate string) error {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(candidate))
	if err != nil {
		return apperr.UnsafePath(candidate)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return apperr.UnsafePath(candidate)
	}
	return nil
}
