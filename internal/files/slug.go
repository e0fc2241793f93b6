// Package files holds the filesystem primitives shared by every component
// that touches a project directory: slug derivation, path-escape checks and
// atomic writes.
package files

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9\-_]`)
	hyphenRunRe  = regexp.MustCompile(`-+`)
)

// Slugify derives a filesystem-safe base name from a display name: lowercase,
// whitespace to hyphens, strip anything outside [a-z0-9-_], collapse hyphen
// runs, trim edge hyphens. Falls back to the given fallback token when the
// result is empty.
func Slugify(input, fallback string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = disallowedRe.ReplaceAllString(s, "")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}
