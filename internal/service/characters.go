package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/contextutil"
	"campaignsmith/internal/files"
	"campaignsmith/internal/storage"
)

// CharacterService manages characters, their photos and their relationships.
type CharacterService struct {
	registry *storage.Registry
	locator  storage.Locator
	limits   Limits
}

func NewCharacterService(registry *storage.Registry, locator storage.Locator, limits Limits) *CharacterService {
	return &CharacterService{registry: registry, locator: locator, limits: limits}
}

// CreateCharacterInput carries the fields accepted when creating a character.
type CreateCharacterInput struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Notes   string   `json:"notes"`
	Tags    []string `json:"tags"`
}

// CharacterPatch is a partial character update.
type CharacterPatch struct {
	Name    *string
	Summary *string
	Notes   *string
	Tags    *[]string
	Version *int64
}

func (s *CharacterService) List(ctx context.Context, projectID string) ([]storage.Character, error) {
	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	characters, err := storage.ListCharacters(ctx, store.DB(), projectID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list characters")
	}
	return characters, nil
}

func (s *CharacterService) Get(ctx context.Context, characterID string) (*storage.Character, error) {
	store, err := s.locator.OwnerOfCharacter(ctx, characterID)
	if err != nil {
		return nil, characterLookupErr(err)
	}
	defer store.Close()

	c, err := storage.CharacterByID(ctx, store.DB(), characterID)
	if err != nil {
		return nil, characterLookupErr(err)
	}
	return c, nil
}

func (s *CharacterService) Create(ctx context.Context, projectID string, input CreateCharacterInput) (*storage.Character, error) {
	if err := s.validateCharacterFields(input.Name, input.Summary, input.Notes, input.Tags); err != nil {
		return nil, err
	}

	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	now := storage.NowISO()
	c := &storage.Character{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      strings.TrimSpace(input.Name),
		Summary:   input.Summary,
		Notes:     input.Notes,
		Tags:      input.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if err := storage.InsertCharacter(ctx, store.DB(), c); err != nil {
		return nil, apperr.Storage(err, "failed to insert character")
	}

	contextutil.LoggerFromContext(ctx).Info("character created",
		"character_id", c.ID, "project_id", projectID)
	return c, nil
}

func (s *CharacterService) Patch(ctx context.Context, characterID string, patch CharacterPatch) (*storage.Character, error) {
	store, err := s.locator.OwnerOfCharacter(ctx, characterID)
	if err != nil {
		return nil, characterLookupErr(err)
	}
	defer store.Close()

	var updated *storage.Character
	err = store.WithTx(ctx, func(tx *sql.Tx) error {
		c, err := storage.CharacterByID(ctx, tx, characterID)
		if err != nil {
			return characterLookupErr(err)
		}
		if patch.Version != nil && *patch.Version != c.Version {
			return apperr.Conflict("character")
		}

		if patch.Name != nil {
			c.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Summary != nil {
			c.Summary = *patch.Summary
		}
		if patch.Notes != nil {
			c.Notes = *patch.Notes
		}
		if patch.Tags != nil {
			c.Tags = *patch.Tags
			if c.Tags == nil {
				c.Tags = []string{}
			}
		}
		if err := s.validateCharacterFields(c.Name, c.Summary, c.Notes, c.Tags); err != nil {
			return err
		}

		c.UpdatedAt = storage.NowISO()
		if err := storage.UpdateCharacter(ctx, tx, c); err != nil {
			return apperr.Storage(err, "failed to update character")
		}
		c.Version++
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the character and its relationships in one transaction,
// then unlinks the photo file if one exists.
func (s *CharacterService) Delete(ctx context.Context, characterID string) error {
	store, err := s.locator.OwnerOfCharacter(ctx, characterID)
	if err != nil {
		return characterLookupErr(err)
	}
	defer store.Close()

	c, err := storage.CharacterByID(ctx, store.DB(), characterID)
	if err != nil {
		return characterLookupErr(err)
	}

	err = store.WithTx(ctx, func(tx *sql.Tx) error {
		if err := storage.DeleteRelationshipsForCharacter(ctx, tx, c.ProjectID, characterID); err != nil {
			return fmt.Errorf("failed to delete relationships: %w", err)
		}
		if err := storage.DeleteCharacter(ctx, tx, characterID); err != nil {
			return fmt.Errorf("failed to delete character: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperr.Storage(err, "failed to delete character")
	}

	if c.PhotoPath != "" {
		abs := store.AbsPath(c.PhotoPath)
		if err := files.AssertInside(store.Root(), abs); err == nil {
			files.RemoveQuiet(abs)
		}
	}

	contextutil.LoggerFromContext(ctx).Info("character deleted",
		"character_id", characterID, "project_id", c.ProjectID)
	return nil
}

// SetPhoto stores a new photo, points the row at it, and only then removes
// the previous file. The row never references a file that was not written.
func (s *CharacterService) SetPhoto(ctx context.Context, characterID string, upload Upload) (*storage.Character, error) {
	if err := validateImageUpload(upload, s.limits.MaxPhotoBytes, "photo"); err != nil {
		return nil, err
	}

	store, err := s.locator.OwnerOfCharacter(ctx, characterID)
	if err != nil {
		return nil, characterLookupErr(err)
	}
	defer store.Close()

	c, err := storage.CharacterByID(ctx, store.DB(), characterID)
	if err != nil {
		return nil, characterLookupErr(err)
	}

	ext := safeExtension(upload.Filename, upload.ContentType)
	rel := path.Join(storage.CharacterDir, assetFilename(c.Name, "character", c.ID, ext))
	abs := store.AbsPath(rel)
	if err := files.AssertInside(store.Root(), abs); err != nil {
		return nil, err
	}
	if err := files.WriteAtomic(abs, upload.Data); err != nil {
		return nil, apperr.Storage(err, "failed to write photo")
	}

	oldPath := c.PhotoPath
	c.PhotoPath = rel
	c.UpdatedAt = storage.NowISO()
	if err := storage.UpdateCharacter(ctx, store.DB(), c); err != nil {
		return nil, apperr.Storage(err, "failed to update character")
	}
	c.Version++

	if oldPath != "" && oldPath != rel {
		oldAbs := store.AbsPath(oldPath)
		if err := files.AssertInside(store.Root(), oldAbs); err == nil {
			files.RemoveQuiet(oldAbs)
		}
	}
	return c, nil
}

// ClearPhoto detaches and removes the character's photo, if any.
func (s *CharacterService) ClearPhoto(ctx context.Context, characterID string) (*storage.Character, error) {
	store, err := s.locator.OwnerOfCharacter(ctx, characterID)
	if err != nil {
		return nil, characterLookupErr(err)
	}
	defer store.Close()

	c, err := storage.CharacterByID(ctx, store.DB(), characterID)
	if err != nil {
		return nil, characterLookupErr(err)
	}
	if c.PhotoPath == "" {
		return c, nil
	}

	oldAbs := store.AbsPath(c.PhotoPath)
	c.PhotoPath = ""
	c.UpdatedAt = storage.NowISO()
	if err := storage.UpdateCharacter(ctx, store.DB(), c); err != nil {
		return nil, apperr.Storage(err, "failed to update character")
	}
	c.Version++

	if err := files.AssertInside(store.Root(), oldAbs); err == nil {
		files.RemoveQuiet(oldAbs)
	}
	return c, nil
}

// PhotoPath resolves a character's photo to an absolute path and content
// type for serving.
func (s *CharacterService) PhotoPath(ctx context.Context, characterID string) (string, string, error) {
	store, err := s.locator.OwnerOfCharacter(ctx, characterID)
	if err != nil {
		return "", "", characterLookupErr(err)
	}
	defer store.Close()

	c, err := storage.CharacterByID(ctx, store.DB(), characterID)
	if err != nil {
		return "", "", characterLookupErr(err)
	}
	if c.PhotoPath == "" {
		return "", "", apperr.NotFound("photo")
	}
	abs := store.AbsPath(c.PhotoPath)
	if err := files.AssertInside(store.Root(), abs); err != nil {
		return "", "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(abs))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return abs, contentType, nil
}

func (s *CharacterService) validateCharacterFields(name, summary, notes string, tags []string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 120 {
		return apperr.Validation("INVALID_CHARACTER_NAME", "name")
	}
	if int64(len(summary)) > s.limits.MaxNoteBytes {
		return apperr.TooLarge("SUMMARY_TOO_LARGE", s.limits.MaxNoteBytes)
	}
	if int64(len(notes)) > s.limits.MaxNoteBytes {
		return apperr.TooLarge("NOTES_TOO_LARGE", s.limits.MaxNoteBytes)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" || len(tag) > 60 {
			return apperr.Validation("INVALID_CHARACTER_TAG", "tags")
		}
	}
	return nil
}

func characterLookupErr(err error) error {
	if err == storage.ErrNotFound {
		return apperr.NotFound("character")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Storage(err, "failed to load character")
}
