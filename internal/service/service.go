// Package service implements the application logic over the project stores:
// project lifecycle, map hierarchy, markers and their links, notes,
// characters and relationships. Handlers stay thin; every rule lives here.
package service

import (
	"context"
	"fmt"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/storage"
)

// Limits holds the byte ceilings enforced before any file is written.
type Limits struct {
	MaxMapImageBytes int64
	MaxPhotoBytes    int64
	MaxNoteBytes     int64
}

// Upload is an incoming file body with the metadata the client sent for it.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// openProjectStore resolves a project by id and opens its store. The caller
// owns the returned store and must Close it.
func openProjectStore(ctx context.Context, registry *storage.Registry, projectID string) (*storage.ProjectStore, *storage.Project, error) {
	project, err := registry.GetByID(ctx, projectID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, nil, apperr.NotFound("project")
		}
		return nil, nil, apperr.Storage(err, "failed to look up project")
	}
	store, err := storage.OpenProject(project.Path)
	if err != nil {
		return nil, nil, apperr.Storage(err, fmt.Sprintf("failed to open project store at %s", project.Path))
	}
	return store, project, nil
}
