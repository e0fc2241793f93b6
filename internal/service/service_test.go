package service

import (
	"context"
	"path/filepath"
	"testing"

	"campaignsmith/internal/storage"
)

func testLimits() Limits {
	return Limits{
		MaxMapImageBytes: 40 << 20,
		MaxPhotoBytes:    10 << 20,
		MaxNoteBytes:     300 << 10,
	}
}

type testEnv struct {
	registry      *storage.Registry
	projects      *ProjectService
	maps          *MapService
	markers       *MarkerService
	notes         *NoteService
	characters    *CharacterService
	relationships *RelationshipService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	registry, err := storage.OpenRegistry(filepath.Join(root, storage.RegistryFilename))
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { registry.Close() })

	locator := storage.NewScanLocator(registry)
	limits := testLimits()
	return &testEnv{
		registry:      registry,
		projects:      NewProjectService(registry, root),
		maps:          NewMapService(registry, locator, limits),
		markers:       NewMarkerService(locator, limits),
		notes:         NewNoteService(registry, locator, limits),
		characters:    NewCharacterService(registry, locator, limits),
		relationships: NewRelationshipService(registry, locator),
	}
}

func (e *testEnv) createProject(t *testing.T, name string) *storage.Project {
	t.Helper()
	p, err := e.projects.Create(context.Background(), CreateProjectInput{Name: name})
	if err != nil {
		t.Fatalf("create project %q: %v", name, err)
	}
	return p
}

func pngUpload(name string, size int) Upload {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	return Upload{Filename: name, ContentType: "image/png", Data: data}
}

func (e *testEnv) createMap(t *testing.T, projectID, title string, parent *string) *storage.Map {
	t.Helper()
	m, err := e.maps.Create(context.Background(), projectID, CreateMapInput{
		Title:       title,
		ParentMapID: parent,
		File:        pngUpload(title+".png", 64),
	})
	if err != nil {
		t.Fatalf("create map %q: %v", title, err)
	}
	return m
}

func (e *testEnv) createNote(t *testing.T, projectID, title string) *storage.Note {
	t.Helper()
	n, err := e.notes.Create(context.Background(), projectID, CreateNoteInput{Title: title, Type: "md"})
	if err != nil {
		t.Fatalf("create note %q: %v", title, err)
	}
	return n
}

func (e *testEnv) createMarker(t *testing.T, mapID string, input CreateMarkerInput) *storage.Marker {
	t.Helper()
	if input.Title == "" {
		input.Title = "marker"
	}
	m, err := e.markers.Create(context.Background(), mapID, input)
	if err != nil {
		t.Fatalf("create marker on %s: %v", mapID, err)
	}
	return m
}

func (e *testEnv) createCharacter(t *testing.T, projectID, name string) *storage.Character {
	t.Helper()
	c, err := e.characters.Create(context.Background(), projectID, CreateCharacterInput{Name: name})
	if err != nil {
		t.Fatalf("create character %q: %v", name, err)
	}
	return c
}

func strptr(s string) *string { return &s }
