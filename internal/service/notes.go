package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/contextutil"
	"campaignsmith/internal/files"
	"campaignsmith/internal/storage"
)

// NoteService manages note metadata rows and their body files.
type NoteService struct {
	registry *storage.Registry
	locator  storage.Locator
	limits   Limits
	markdown goldmark.Markdown
}

func NewNoteService(registry *storage.Registry, locator storage.Locator, limits Limits) *NoteService {
	return &NoteService{
		registry: registry,
		locator:  locator,
		limits:   limits,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// CreateNoteInput carries the fields accepted when creating a note.
type CreateNoteInput struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

func (s *NoteService) List(ctx context.Context, projectID string) ([]storage.Note, error) {
	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	notes, err := storage.ListNotes(ctx, store.DB(), projectID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list notes")
	}
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, noteID string) (*storage.Note, error) {
	store, err := s.locator.OwnerOfNote(ctx, noteID)
	if err != nil {
		return nil, noteLookupErr(err)
	}
	defer store.Close()

	n, err := storage.NoteByID(ctx, store.DB(), noteID)
	if err != nil {
		return nil, noteLookupErr(err)
	}
	return n, nil
}

// Create writes an empty body file, then inserts the metadata row. The row
// is the commit point; a crash in between leaves only an orphan file.
func (s *NoteService) Create(ctx context.Context, projectID string, input CreateNoteInput) (*storage.Note, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > 120 {
		return nil, apperr.Validation("INVALID_NOTE_TITLE", "title")
	}
	noteType := input.Type
	if noteType == "" {
		noteType = "md"
	}
	if !contains(storage.NoteTypes, noteType) {
		return nil, apperr.Validation("INVALID_NOTE_TYPE", "type")
	}

	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	id := uuid.New().String()
	rel := path.Join(storage.NoteDir, assetFilename(title, "note", id, "."+noteType))
	abs := store.AbsPath(rel)
	if err := files.AssertInside(store.Root(), abs); err != nil {
		return nil, err
	}
	if err := files.WriteAtomic(abs, nil); err != nil {
		return nil, apperr.Storage(err, "failed to create note file")
	}

	now := storage.NowISO()
	n := &storage.Note{
		ID:        id,
		ProjectID: projectID,
		Title:     title,
		Path:      rel,
		Type:      noteType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := storage.InsertNote(ctx, store.DB(), n); err != nil {
		return nil, apperr.Storage(err, "failed to insert note")
	}

	contextutil.LoggerFromContext(ctx).Info("note created",
		"note_id", id, "project_id", projectID)
	return n, nil
}

// Content returns a note and its body.
func (s *NoteService) Content(ctx context.Context, noteID string) (*storage.Note, string, error) {
	store, n, abs, err := s.resolve(ctx, noteID)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// Row without a body file; treat as empty rather than failing.
			return n, "", nil
		}
		return nil, "", apperr.Storage(err, "failed to read note file")
	}
	return n, string(data), nil
}

// Save replaces a note's body. The version check and the byte ceiling run
// before anything touches the filesystem.
func (s *NoteService) Save(ctx context.Context, noteID, content string, version *int64) (*storage.Note, error) {
	if int64(len(content)) > s.limits.MaxNoteBytes {
		return nil, apperr.TooLarge("NOTE_TOO_LARGE", s.limits.MaxNoteBytes)
	}

	store, n, abs, err := s.resolve(ctx, noteID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if version != nil && *version != n.Version {
		return nil, apperr.Conflict("note")
	}

	if err := files.WriteAtomic(abs, []byte(content)); err != nil {
		return nil, apperr.Storage(err, "failed to write note file")
	}
	n.UpdatedAt = storage.NowISO()
	if err := storage.TouchNote(ctx, store.DB(), noteID, n.UpdatedAt); err != nil {
		return nil, apperr.Storage(err, "failed to update note")
	}
	n.Version++
	return n, nil
}

// Render returns the note body as HTML: markdown through goldmark, plain
// text escaped inside a pre block.
func (s *NoteService) Render(ctx context.Context, noteID string) (string, error) {
	n, content, err := s.Content(ctx, noteID)
	if err != nil {
		return "", err
	}
	if n.Type == "txt" {
		return fmt.Sprintf("<pre>%s</pre>", html.EscapeString(content)), nil
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		return "", apperr.Storage(err, "failed to render markdown")
	}
	return buf.String(), nil
}

// Delete clears any marker links pointing at the note and removes the row in
// one transaction, then unlinks the body file.
func (s *NoteService) Delete(ctx context.Context, noteID string) error {
	store, n, abs, err := s.resolve(ctx, noteID)
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.WithTx(ctx, func(tx *sql.Tx) error {
		if err := storage.ClearMarkerLinksToNote(ctx, tx, noteID); err != nil {
			return fmt.Errorf("failed to clear marker links: %w", err)
		}
		if err := storage.DeleteNote(ctx, tx, noteID); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperr.Storage(err, "failed to delete note")
	}

	files.RemoveQuiet(abs)
	contextutil.LoggerFromContext(ctx).Info("note deleted",
		"note_id", noteID, "project_id", n.ProjectID)
	return nil
}

// resolve locates a note's owning store and checks its body path stays
// inside the project root. The caller owns the returned store.
func (s *NoteService) resolve(ctx context.Context, noteID string) (*storage.ProjectStore, *storage.Note, string, error) {
	store, err := s.locator.OwnerOfNote(ctx, noteID)
	if err != nil {
		return nil, nil, "", noteLookupErr(err)
	}
	n, err := storage.NoteByID(ctx, store.DB(), noteID)
	if err != nil {
		store.Close()
		return nil, nil, "", noteLookupErr(err)
	}
	abs := store.AbsPath(n.Path)
	if err := files.AssertInside(store.Root(), abs); err != nil {
		store.Close()
		return nil, nil, "", err
	}
	return store, n, abs, nil
}

func noteLookupErr(err error) error {
	if err == storage.ErrNotFound {
		return apperr.NotFound("note")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Storage(err, "failed to load note")
}
