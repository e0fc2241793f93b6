package service

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/files"
)

// allowedImageExts are the extensions trusted as-is when present on the
// uploaded filename. Anything else falls back to the MIME type.
var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".svg":  true,
}

var mimeToExt = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// safeExtension derives a storage extension for an upload. The original
// extension is trusted when allow-listed, otherwise the declared MIME type
// decides, otherwise a neutral .bin.
func safeExtension(filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if allowedImageExts[ext] {
		return ext
	}
	if ext, ok := mimeToExt[strings.ToLower(contentType)]; ok {
		return ext
	}
	return ".bin"
}

// validateImageUpload enforces the MIME allow-list and the byte ceiling
// before any filename or path is derived from the upload.
func validateImageUpload(u Upload, limit int64, entity string) error {
	if len(u.Data) == 0 {
		return apperr.Validation("FILE_REQUIRED", "file")
	}
	if _, ok := mimeToExt[strings.ToLower(u.ContentType)]; !ok {
		return apperr.Validation("UNSUPPORTED_IMAGE_TYPE", "file")
	}
	if int64(len(u.Data)) > limit {
		return apperr.TooLarge(fmt.Sprintf("%s_TOO_LARGE", strings.ToUpper(entity)), limit)
	}
	return nil
}

// assetFilename builds the stored filename for an entity's file: a slug of
// its display name with the entity id appended so renames never collide.
func assetFilename(displayName, fallback, id, ext string) string {
	return fmt.Sprintf("%s-%s%s", files.Slugify(displayName, fallback), id, ext)
}
