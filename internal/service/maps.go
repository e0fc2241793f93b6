package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/contextutil"
	"campaignsmith/internal/files"
	"campaignsmith/internal/storage"
)

// maxHierarchyDepth bounds the parent-chain walk so a corrupted store can
// never send the re-parent check into an endless loop.
const maxHierarchyDepth = 1000

// MapService manages map metadata, their image files and the parent/child
// hierarchy within each project.
type MapService struct {
	registry *storage.Registry
	locator  storage.Locator
	limits   Limits
}

func NewMapService(registry *storage.Registry, locator storage.Locator, limits Limits) *MapService {
	return &MapService{registry: registry, locator: locator, limits: limits}
}

// CreateMapInput carries the fields accepted when creating a map.
type CreateMapInput struct {
	Title       string
	ParentMapID *string
	File        Upload
}

// PatchMapInput is a partial map update. SetParent reports whether the
// request mentioned the parent at all; a nil ParentMapID with SetParent
// detaches the map to the root of the hierarchy.
type PatchMapInput struct {
	Title       *string
	SetParent   bool
	ParentMapID *string
	Version     *int64
}

func (s *MapService) List(ctx context.Context, projectID string) ([]storage.Map, error) {
	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	maps, err := storage.ListMaps(ctx, store.DB(), projectID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list maps")
	}
	return maps, nil
}

func (s *MapService) Get(ctx context.Context, mapID string) (*storage.Map, error) {
	store, err := s.locator.OwnerOfMap(ctx, mapID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	defer store.Close()

	m, err := storage.MapByID(ctx, store.DB(), mapID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return m, nil
}

// Create validates the upload and the parent reference, writes the image
// file, and only then inserts the row. A crash between the two steps leaves
// an orphan file, never a row pointing at nothing.
func (s *MapService) Create(ctx context.Context, projectID string, input CreateMapInput) (*storage.Map, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > 120 {
		return nil, apperr.Validation("INVALID_MAP_TITLE", "title")
	}
	if err := validateImageUpload(input.File, s.limits.MaxMapImageBytes, "map_image"); err != nil {
		return nil, err
	}

	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if input.ParentMapID != nil {
		ok, err := storage.MapExistsInProject(ctx, store.DB(), *input.ParentMapID, projectID)
		if err != nil {
			return nil, apperr.Storage(err, "failed to check parent map")
		}
		if !ok {
			return nil, apperr.InvalidReference("INVALID_PARENT_MAP", "parent map does not exist in this project")
		}
	}

	id := uuid.New().String()
	ext := safeExtension(input.File.Filename, input.File.ContentType)
	rel := path.Join(storage.MapAssetDir, assetFilename(title, "map", id, ext))
	abs := store.AbsPath(rel)
	if err := files.AssertInside(store.Root(), abs); err != nil {
		return nil, err
	}
	if err := files.WriteAtomic(abs, input.File.Data); err != nil {
		return nil, apperr.Storage(err, "failed to write map image")
	}

	now := storage.NowISO()
	m := &storage.Map{
		ID:          id,
		ProjectID:   projectID,
		ParentMapID: input.ParentMapID,
		Title:       title,
		Filename:    rel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := storage.InsertMap(ctx, store.DB(), m); err != nil {
		return nil, apperr.Storage(err, "failed to insert map")
	}

	contextutil.LoggerFromContext(ctx).Info("map created",
		"map_id", id, "project_id", projectID)
	return m, nil
}

// FilePath resolves a map's image to an absolute path for serving.
func (s *MapService) FilePath(ctx context.Context, mapID string) (string, error) {
	store, err := s.locator.OwnerOfMap(ctx, mapID)
	if err != nil {
		return "", mapLookupErr(err)
	}
	defer store.Close()

	m, err := storage.MapByID(ctx, store.DB(), mapID)
	if err != nil {
		return "", mapLookupErr(err)
	}
	abs := store.AbsPath(m.Filename)
	if err := files.AssertInside(store.Root(), abs); err != nil {
		return "", err
	}
	return abs, nil
}

// Patch renames a map or moves it in the hierarchy. Re-parenting rejects any
// parent whose own ancestry contains the map being moved, so the forest can
// never acquire a cycle.
func (s *MapService) Patch(ctx context.Context, mapID string, input PatchMapInput) (*storage.Map, error) {
	store, err := s.locator.OwnerOfMap(ctx, mapID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	defer store.Close()

	var updated *storage.Map
	err = store.WithTx(ctx, func(tx *sql.Tx) error {
		m, err := storage.MapByID(ctx, tx, mapID)
		if err != nil {
			return mapLookupErr(err)
		}
		if input.Version != nil && *input.Version != m.Version {
			return apperr.Conflict("map")
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" || len(title) > 120 {
				return apperr.Validation("INVALID_MAP_TITLE", "title")
			}
			m.Title = title
		}
		if input.SetParent {
			if input.ParentMapID != nil {
				if *input.ParentMapID == mapID {
					return apperr.Validation("MAP_CYCLE", "parent_map_id")
				}
				ok, err := storage.MapExistsInProject(ctx, tx, *input.ParentMapID, m.ProjectID)
				if err != nil {
					return apperr.Storage(err, "failed to check parent map")
				}
				if !ok {
					return apperr.InvalidReference("INVALID_PARENT_MAP", "parent map does not exist in this project")
				}
				if err := assertNoCycle(ctx, tx, mapID, *input.ParentMapID); err != nil {
					return err
				}
			}
			m.ParentMapID = input.ParentMapID
		}

		m.UpdatedAt = storage.NowISO()
		if err := storage.UpdateMap(ctx, tx, m); err != nil {
			return apperr.Storage(err, "failed to update map")
		}
		m.Version++
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a map. In one transaction it clears inbound marker links,
// deletes the map's own markers, splices its children onto its parent and
// deletes the row; the image file is unlinked only after the commit.
func (s *MapService) Delete(ctx context.Context, mapID string) error {
	store, err := s.locator.OwnerOfMap(ctx, mapID)
	if err != nil {
		return mapLookupErr(err)
	}
	defer store.Close()

	m, err := storage.MapByID(ctx, store.DB(), mapID)
	if err != nil {
		return mapLookupErr(err)
	}

	err = store.WithTx(ctx, func(tx *sql.Tx) error {
		if err := storage.ClearMarkerLinksToMap(ctx, tx, mapID); err != nil {
			return fmt.Errorf("failed to clear marker links: %w", err)
		}
		if err := storage.DeleteMarkersOnMap(ctx, tx, mapID); err != nil {
			return fmt.Errorf("failed to delete markers: %w", err)
		}
		if err := storage.SpliceMapChildren(ctx, tx, mapID, m.ParentMapID); err != nil {
			return fmt.Errorf("failed to re-parent child maps: %w", err)
		}
		if err := storage.DeleteMap(ctx, tx, mapID); err != nil {
			return fmt.Errorf("failed to delete map: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperr.Storage(err, "failed to delete map")
	}

	abs := store.AbsPath(m.Filename)
	if err := files.AssertInside(store.Root(), abs); err == nil {
		files.RemoveQuiet(abs)
	}

	contextutil.LoggerFromContext(ctx).Info("map deleted",
		"map_id", mapID, "project_id", m.ProjectID)
	return nil
}

// assertNoCycle walks the ancestry of the proposed parent and fails if it
// passes through the map being moved.
func assertNoCycle(ctx context.Context, q storage.Querier, mapID, parentID string) error {
	current := parentID
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		ancestor, err := storage.MapByID(ctx, q, current)
		if err != nil {
			if err == storage.ErrNotFound {
				return nil
			}
			return apperr.Storage(err, "failed to walk map ancestry")
		}
		if ancestor.ParentMapID == nil {
			return nil
		}
		if *ancestor.ParentMapID == mapID {
			return apperr.Validation("MAP_CYCLE", "parent_map_id")
		}
		current = *ancestor.ParentMapID
	}
	return apperr.Validation("MAP_CYCLE", "parent_map_id")
}

func mapLookupErr(err error) error {
	if err == storage.ErrNotFound {
		return apperr.NotFound("map")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Storage(err, "failed to load map")
}
