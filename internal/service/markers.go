package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/storage"
)

// MarkerService manages markers and their exclusive note-or-map links.
type MarkerService struct {
	locator storage.Locator
	limits  Limits
}

func NewMarkerService(locator storage.Locator, limits Limits) *MarkerService {
	return &MarkerService{locator: locator, limits: limits}
}

const defaultMarkerColor = "#ef4444"

// CreateMarkerInput carries the fields accepted when creating a marker.
type CreateMarkerInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Points      []storage.Point `json:"points"`
	Style       json.RawMessage `json:"style"`
	MarkerType  string          `json:"marker_type"`
	Color       string          `json:"color"`
	Icon        string          `json:"icon"`
	LinkType    string          `json:"link_type"`
	LinkNoteID  string          `json:"link_note_id"`
	LinkMapID   string          `json:"link_map_id"`
}

// MarkerPatch is a partial marker update. LinkSet reports whether the request
// mentioned any of the three link fields; when it did, the full link triple
// is rebuilt from the patch merged over the stored values and re-validated as
// a whole.
type MarkerPatch struct {
	Title       *string
	Description *string
	X           *float64
	Y           *float64
	Points      *[]storage.Point
	Style       *json.RawMessage
	MarkerType  *string
	Color       *string
	Icon        *string
	LinkSet     bool
	LinkType    *string
	LinkNoteID  *string
	LinkMapID   *string
	Version     *int64
}

func (s *MarkerService) List(ctx context.Context, mapID string) ([]storage.Marker, error) {
	store, err := s.locator.OwnerOfMap(ctx, mapID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	defer store.Close()

	markers, err := storage.ListMarkers(ctx, store.DB(), mapID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list markers")
	}
	return markers, nil
}

func (s *MarkerService) Create(ctx context.Context, mapID string, input CreateMarkerInput) (*storage.Marker, error) {
	store, err := s.locator.OwnerOfMap(ctx, mapID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	defer store.Close()

	now := storage.NowISO()
	m := &storage.Marker{
		ID:          uuid.New().String(),
		MapID:       mapID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		X:           input.X,
		Y:           input.Y,
		Points:      input.Points,
		Style:       input.Style,
		MarkerType:  input.MarkerType,
		Color:       input.Color,
		Icon:        input.Icon,
		LinkType:    input.LinkType,
		LinkNoteID:  input.LinkNoteID,
		LinkMapID:   input.LinkMapID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if m.MarkerType == "" {
		m.MarkerType = "location"
	}
	if m.Color == "" {
		m.Color = defaultMarkerColor
	}
	if err := s.validateMarkerShape(m); err != nil {
		return nil, err
	}

	err = store.WithTx(ctx, func(tx *sql.Tx) error {
		host, err := storage.MapByID(ctx, tx, mapID)
		if err != nil {
			return mapLookupErr(err)
		}
		if err := assertLinkTargets(ctx, tx, m, host.ProjectID); err != nil {
			return err
		}
		if err := storage.InsertMarker(ctx, tx, m); err != nil {
			return apperr.Storage(err, "failed to insert marker")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MarkerService) Patch(ctx context.Context, markerID string, patch MarkerPatch) (*storage.Marker, error) {
	store, err := s.locator.OwnerOfMarker(ctx, markerID)
	if err != nil {
		return nil, markerLookupErr(err)
	}
	defer store.Close()

	var updated *storage.Marker
	err = store.WithTx(ctx, func(tx *sql.Tx) error {
		m, err := storage.MarkerByID(ctx, tx, markerID)
		if err != nil {
			return markerLookupErr(err)
		}
		if patch.Version != nil && *patch.Version != m.Version {
			return apperr.Conflict("marker")
		}

		if patch.Title != nil {
			m.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			m.Description = *patch.Description
		}
		if patch.X != nil {
			m.X = *patch.X
		}
		if patch.Y != nil {
			m.Y = *patch.Y
		}
		if patch.Points != nil {
			m.Points = *patch.Points
		}
		if patch.Style != nil {
			m.Style = *patch.Style
		}
		if patch.MarkerType != nil {
			m.MarkerType = *patch.MarkerType
		}
		if patch.Color != nil {
			m.Color = *patch.Color
		}
		if patch.Icon != nil {
			m.Icon = *patch.Icon
		}
		if patch.LinkSet {
			if patch.LinkType != nil {
				m.LinkType = *patch.LinkType
			}
			if patch.LinkNoteID != nil {
				m.LinkNoteID = *patch.LinkNoteID
			}
			if patch.LinkMapID != nil {
				m.LinkMapID = *patch.LinkMapID
			}
			normalizeLink(m)
		}

		if err := s.validateMarkerShape(m); err != nil {
			return err
		}
		if patch.LinkSet {
			host, err := storage.MapByID(ctx, tx, m.MapID)
			if err != nil {
				return apperr.Storage(err, "failed to load marker map")
			}
			if err := assertLinkTargets(ctx, tx, m, host.ProjectID); err != nil {
				return err
			}
		}

		m.UpdatedAt = storage.NowISO()
		if err := storage.UpdateMarker(ctx, tx, m); err != nil {
			return apperr.Storage(err, "failed to update marker")
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

func (s *MarkerService) Delete(ctx context.Context, markerID string) error {
	store, err := s.locator.OwnerOfMarker(ctx, markerID)
	if err != nil {
		return markerLookupErr(err)
	}
	defer store.Close()

	if err := storage.DeleteMarker(ctx, store.DB(), markerID); err != nil {
		if err == storage.ErrNotFound {
			return apperr.NotFound("marker")
		}
		return apperr.Storage(err, "failed to delete marker")
	}
	return nil
}

func (s *MarkerService) validateMarkerShape(m *storage.Marker) error {
	if m.Title == "" || len(m.Title) > 120 {
		return apperr.Validation("INVALID_MARKER_TITLE", "title")
	}
	if int64(len(m.Description)) > s.limits.MaxNoteBytes {
		return apperr.TooLarge("DESCRIPTION_TOO_LARGE", s.limits.MaxNoteBytes)
	}
	if m.X < 0 || m.X > 1 || m.Y < 0 || m.Y > 1 {
		return apperr.Validation("MARKER_OUT_OF_BOUNDS", "x", "y")
	}
	if !contains(storage.MarkerTypes, m.MarkerType) {
		return apperr.Validation("INVALID_MARKER_TYPE", "marker_type")
	}
	if !colorPattern.MatchString(m.Color) {
		return apperr.Validation("INVALID_MARKER_COLOR", "color")
	}
	return validateLinkTriple(m.LinkType, m.LinkNoteID, m.LinkMapID)
}

// validateLinkTriple rejects any combination of link fields other than the
// three legal states: no link, a note link with only a note id, or a map
// link with only a map id.
func validateLinkTriple(linkType, noteID, mapID string) error {
	switch linkType {
	case storage.LinkNone:
		if noteID != "" || mapID != "" {
			return apperr.Validation("MARKER_LINK_INCONSISTENT", "link_type", "link_note_id", "link_map_id")
		}
	case storage.LinkNote:
		if noteID == "" || mapID != "" {
			return apperr.Validation("MARKER_LINK_INCONSISTENT", "link_type", "link_note_id", "link_map_id")
		}
	case storage.LinkMap:
		if mapID == "" || noteID != "" {
			return apperr.Validation("MARKER_LINK_INCONSISTENT", "link_type", "link_note_id", "link_map_id")
		}
	default:
		return apperr.Validation("INVALID_LINK_TYPE", "link_type")
	}
	return nil
}

// normalizeLink drops whatever id the active link type does not use, so a
// patch that switches link kinds cannot drag a stale id along.
func normalizeLink(m *storage.Marker) {
	switch m.LinkType {
	case storage.LinkNote:
		m.LinkMapID = ""
	case storage.LinkMap:
		m.LinkNoteID = ""
	default:
		m.LinkType = storage.LinkNone
		m.LinkNoteID = ""
		m.LinkMapID = ""
	}
}

// assertLinkTargets verifies the linked note or map exists in the marker's
// own project before the link is persisted.
func assertLinkTargets(ctx context.Context, q storage.Querier, m *storage.Marker, projectID string) error {
	switch m.LinkType {
	case storage.LinkNote:
		ok, err := storage.NoteExists(ctx, q, m.LinkNoteID)
		if err != nil {
			return apperr.Storage(err, "failed to check linked note")
		}
		if !ok {
			return apperr.InvalidReference("LINK_NOTE_NOT_FOUND", "linked note does not exist in this project")
		}
	case storage.LinkMap:
		ok, err := storage.MapExistsInProject(ctx, q, m.LinkMapID, projectID)
		if err != nil {
			return apperr.Storage(err, "failed to check linked map")
		}
		if !ok {
			return apperr.InvalidReference("LINK_MAP_NOT_FOUND", "linked map does not exist in this project")
		}
	}
	return nil
}

func markerLookupErr(err error) error {
	if err == storage.ErrNotFound {
		return apperr.NotFound("marker")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Storage(err, "failed to load marker")
}
