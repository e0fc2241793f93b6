package service

import (
	"context"

	"github.com/google/uuid"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/storage"
)

const maxRelationshipNoteLen = 5000

// RelationshipService manages directed relationship edges between characters
// of a single project.
type RelationshipService struct {
	registry *storage.Registry
	locator  storage.Locator
}

func NewRelationshipService(registry *storage.Registry, locator storage.Locator) *RelationshipService {
	return &RelationshipService{registry: registry, locator: locator}
}

// CreateRelationshipInput carries the fields accepted when creating a
// relationship.
type CreateRelationshipInput struct {
	FromCharacterID string `json:"from_character_id"`
	ToCharacterID   string `json:"to_character_id"`
	Type            string `json:"type"`
	Note            string `json:"note"`
}

func (s *RelationshipService) List(ctx context.Context, projectID string) ([]storage.Relationship, error) {
	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	relationships, err := storage.ListRelationships(ctx, store.DB(), projectID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list relationships")
	}
	return relationships, nil
}

func (s *RelationshipService) Create(ctx context.Context, projectID string, input CreateRelationshipInput) (*storage.Relationship, error) {
	if input.FromCharacterID == "" || input.ToCharacterID == "" {
		return nil, apperr.Validation("RELATIONSHIP_ENDPOINTS_REQUIRED", "from_character_id", "to_character_id")
	}
	if input.FromCharacterID == input.ToCharacterID {
		return nil, apperr.Validation("RELATIONSHIP_SELF", "from_character_id", "to_character_id")
	}
	if !contains(storage.RelationshipTypes, input.Type) {
		return nil, apperr.Validation("INVALID_RELATIONSHIP_TYPE", "type")
	}
	if len(input.Note) > maxRelationshipNoteLen {
		return nil, apperr.Validation("RELATIONSHIP_NOTE_TOO_LONG", "note")
	}

	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	for _, id := range []string{input.FromCharacterID, input.ToCharacterID} {
		ok, err := storage.CharacterExistsInProject(ctx, store.DB(), id, projectID)
		if err != nil {
			return nil, apperr.Storage(err, "failed to check relationship endpoint")
		}
		if !ok {
			return nil, apperr.NotFound("character")
		}
	}

	now := storage.NowISO()
	r := &storage.Relationship{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		FromCharacterID: input.FromCharacterID,
		ToCharacterID:   input.ToCharacterID,
		Type:            input.Type,
		Note:            input.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := storage.InsertRelationship(ctx, store.DB(), r); err != nil {
		return nil, apperr.Storage(err, "failed to insert relationship")
	}
	return r, nil
}

func (s *RelationshipService) Delete(ctx context.Context, projectID, relationshipID string) error {
	store, _, err := openProjectStore(ctx, s.registry, projectID)
	if err != nil {
		return err
	}
	defer store.Close()
	return deleteRelationship(ctx, store, relationshipID)
}

// DeleteByID removes a relationship addressed by bare id, resolving its
// owning project through the locator.
func (s *RelationshipService) DeleteByID(ctx context.Context, relationshipID string) error {
	store, err := s.locator.OwnerOfRelationship(ctx, relationshipID)
	if err != nil {
		if err == storage.ErrNotFound {
			return apperr.NotFound("relationship")
		}
		return apperr.Storage(err, "failed to locate relationship")
	}
	defer store.Close()
	return deleteRelationship(ctx, store, relationshipID)
}

func deleteRelationship(ctx context.Context, store *storage.ProjectStore, relationshipID string) error {
	if err := storage.DeleteRelationship(ctx, store.DB(), relationshipID); err != nil {
		if err == storage.ErrNotFound {
			return apperr.NotFound("relationship")
		}
		return apperr.Storage(err, "failed to delete relationship")
	}
	return nil
}
