package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_locator.go -package=mocks campaignsmith/internal/storage Locator

import (
	"context"
	"fmt"
)

// Locator resolves a bare entity id to the project store that owns it. There
// is deliberately no global index of entities: a project directory remains
// fully self-describing so it can be moved or copied without updating
// anything else. The interface exists so a maintained id-to-project index
// could replace the scan without touching call sites.
type Locator interface {
	// Each method returns an open ProjectStore that the caller must Close,
	// or ErrNotFound when no registered project contains the id.
	OwnerOfMap(ctx context.Context, mapID string) (*ProjectStore, error)
	OwnerOfMarker(ctx context.Context, markerID string) (*ProjectStore, error)
	OwnerOfNote(ctx context.Context, noteID string) (*ProjectStore, error)
	OwnerOfCharacter(ctx context.Context, characterID string) (*ProjectStore, error)
	OwnerOfRelationship(ctx context.Context, relationshipID string) (*ProjectStore, error)
}

// ScanLocator finds owners by opening every registered project in registry
// listing order and probing for the id. O(number of projects) per lookup; an
// accepted ceiling while project counts stay in the tens.
type ScanLocator struct {
	registry *Registry
}

// NewScanLocator creates a ScanLocator over the given registry.
func NewScanLocator(registry *Registry) *ScanLocator {
	return &ScanLocator{registry: registry}
}

// scan opens each project store in turn and keeps the first one whose probe
// reports a hit. Projects whose store cannot be opened are skipped, matching
// the tolerance for a half-moved project folder.
func (l *ScanLocator) scan(ctx context.Context, probe func(context.Context, *ProjectStore) (bool, error)) (*ProjectStore, error) {
	projects, err := l.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for scan: %w", err)
	}

	for _, p := range projects {
		store, err := OpenProject(p.Path)
		if err != nil {
			continue
		}
		found, err := probe(ctx, store)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		if found {
			return store, nil
		}
		_ = store.Close()
	}
	return nil, ErrNotFound
}

func (l *ScanLocator) ownerOf(ctx context.Context, table, id string) (*ProjectStore, error) {
	return l.scan(ctx, func(ctx context.Context, s *ProjectStore) (bool, error) {
		// table is one of our fixed table names, never user input.
		var one int
		err := s.DB().QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
		if err != nil {
			// Absent row and probe failure both mean "not in this project".
			return false, nil
		}
		return one == 1, nil
	})
}

// OwnerOfMap implements Locator.
func (l *ScanLocator) OwnerOfMap(ctx context.Context, mapID string) (*ProjectStore, error) {
	return l.ownerOf(ctx, "maps", mapID)
}

// OwnerOfMarker implements Locator.
func (l *ScanLocator) OwnerOfMarker(ctx context.Context, markerID string) (*ProjectStore, error) {
	return l.ownerOf(ctx, "markers", markerID)
}

// OwnerOfNote implements Locator.
func (l *ScanLocator) OwnerOfNote(ctx context.Context, noteID string) (*ProjectStore, error) {
	return l.ownerOf(ctx, "notes", noteID)
}

// OwnerOfCharacter implements Locator.
func (l *ScanLocator) OwnerOfCharacter(ctx context.Context, characterID string) (*ProjectStore, error) {
	return l.ownerOf(ctx, "characters", characterID)
}

// OwnerOfRelationship implements Locator.
func (l *ScanLocator) OwnerOfRelationship(ctx context.Context, relationshipID string) (*ProjectStore, error) {
	return l.ownerOf(ctx, "relationships", relationshipID)
}
