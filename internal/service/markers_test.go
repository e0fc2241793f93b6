package service

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/storage"
	"campaignsmith/internal/storage/mocks"
)

func TestCreateMarkerDefaults(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Homebrew")
	m := env.createMap(t, p.ID, "Overworld", nil)

	marker := env.createMarker(t, m.ID, CreateMarkerInput{Title: "Inn", X: 0.25, Y: 0.75})
	if marker.MarkerType != "location" {
		t.Errorf("marker_type = %q, want location default", marker.MarkerType)
	}
	if marker.Color != defaultMarkerColor {
		t.Errorf("color = %q, want default", marker.Color)
	}
	if marker.LinkType != "" {
		t.Errorf("link_type = %q, want none", marker.LinkType)
	}
}

func TestCreateMarkerRejectsBadShapes(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Homebrew")
	m := env.createMap(t, p.ID, "Overworld", nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateMarkerInput
		code  string
	}{
		{"empty title", CreateMarkerInput{X: 0.5, Y: 0.5}, "INVALID_MARKER_TITLE"},
		{"x out of bounds", CreateMarkerInput{Title: "t", X: 1.5, Y: 0.5}, "MARKER_OUT_OF_BOUNDS"},
		{"bad type", CreateMarkerInput{Title: "t", X: 0.5, Y: 0.5, MarkerType: "quest"}, "INVALID_MARKER_TYPE"},
		{"bad color", CreateMarkerInput{Title: "t", X: 0.5, Y: 0.5, Color: "red"}, "INVALID_MARKER_COLOR"},
		{"bad link type", CreateMarkerInput{Title: "t", X: 0.5, Y: 0.5, LinkType: "url"}, "INVALID_LINK_TYPE"},
		{"note link without id", CreateMarkerInput{Title: "t", X: 0.5, Y: 0.5, LinkType: "note"}, "MARKER_LINK_INCONSISTENT"},
		{"id without link type", CreateMarkerInput{Title: "t", X: 0.5, Y: 0.5, LinkNoteID: "n"}, "MARKER_LINK_INCONSISTENT"},
		{"both ids", CreateMarkerInput{Title: "t", X: 0.5, Y: 0.5, LinkType: "note", LinkNoteID: "n", LinkMapID: "m"}, "MARKER_LINK_INCONSISTENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.markers.Create(ctx, m.ID, tt.input)
			if apperr.CodeOf(err) != tt.code {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCreateMarkerRejectsDanglingLink(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Homebrew")
	m := env.createMap(t, p.ID, "Overworld", nil)
	ctx := context.Background()

	_, err := env.markers.Create(ctx, m.ID, CreateMarkerInput{
		Title: "t", X: 0.5, Y: 0.5, LinkType: "note", LinkNoteID: "no-such-note",
	})
	if apperr.CodeOf(err) != "LINK_NOTE_NOT_FOUND" {
		t.Fatalf("err = %v, want LINK_NOTE_NOT_FOUND", err)
	}
	_, err = env.markers.Create(ctx, m.ID, CreateMarkerInput{
		Title: "t", X: 0.5, Y: 0.5, LinkType: "map", LinkMapID: "no-such-map",
	})
	if apperr.CodeOf(err) != "LINK_MAP_NOT_FOUND" {
		t.Fatalf("err = %v, want LINK_MAP_NOT_FOUND", err)
	}
}

// A link to a map in another project resolves nothing: the probe runs inside
// the owning project's store only.
func TestCreateMarkerRejectsCrossProjectLink(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.createProject(t, "One")
	p2 := env.createProject(t, "Two")
	host := env.createMap(t, p1.ID, "Host", nil)
	foreign := env.createMap(t, p2.ID, "Foreign", nil)

	_, err := env.markers.Create(context.Background(), host.ID, CreateMarkerInput{
		Title: "t", X: 0.5, Y: 0.5, LinkType: "map", LinkMapID: foreign.ID,
	})
	if apperr.CodeOf(err) != "LINK_MAP_NOT_FOUND" {
		t.Fatalf("err = %v, want LINK_MAP_NOT_FOUND", err)
	}
}

// Patching position only must leave the stored link intact.
func TestPatchMarkerPositionKeepsLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	m := env.createMap(t, p.ID, "Overworld", nil)
	note := env.createNote(t, p.ID, "Boss Notes")

	marker := env.createMarker(t, m.ID, CreateMarkerInput{
		Title: "Lair", X: 0.3, Y: 0.3, LinkType: "note", LinkNoteID: note.ID,
	})

	x, y := 0.6, 0.9
	patched, err := env.markers.Patch(ctx, marker.ID, MarkerPatch{X: &x, Y: &y})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched.X != 0.6 || patched.Y != 0.9 {
		t.Errorf("position = (%v, %v)", patched.X, patched.Y)
	}
	if patched.LinkType != "note" || patched.LinkNoteID != note.ID {
		t.Errorf("link lost on position patch: %+v", patched)
	}
}

// Switching link kinds rebuilds the whole triple; the stale id from the
// previous kind must not survive.
func TestPatchMarkerSwitchesLinkKind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	m := env.createMap(t, p.ID, "Overworld", nil)
	target := env.createMap(t, p.ID, "Dungeon", nil)
	note := env.createNote(t, p.ID, "Boss Notes")

	marker := env.createMarker(t, m.ID, CreateMarkerInput{
		Title: "Lair", X: 0.3, Y: 0.3, LinkType: "note", LinkNoteID: note.ID,
	})

	patched, err := env.markers.Patch(ctx, marker.ID, MarkerPatch{
		LinkSet:   true,
		LinkType:  strptr("map"),
		LinkMapID: &target.ID,
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched.LinkType != "map" || patched.LinkMapID != target.ID {
		t.Errorf("link = %q/%q", patched.LinkType, patched.LinkMapID)
	}
	if patched.LinkNoteID != "" {
		t.Errorf("stale note id survived kind switch: %q", patched.LinkNoteID)
	}
}

func TestPatchMarkerClearsLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	m := env.createMap(t, p.ID, "Overworld", nil)
	note := env.createNote(t, p.ID, "Boss Notes")

	marker := env.createMarker(t, m.ID, CreateMarkerInput{
		Title: "Lair", X: 0.3, Y: 0.3, LinkType: "note", LinkNoteID: note.ID,
	})

	patched, err := env.markers.Patch(ctx, marker.ID, MarkerPatch{
		LinkSet:  true,
		LinkType: strptr(""),
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched.LinkType != "" || patched.LinkNoteID != "" || patched.LinkMapID != "" {
		t.Errorf("link not fully cleared: %+v", patched)
	}
}

func TestPatchMarkerStaleVersionConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	m := env.createMap(t, p.ID, "Overworld", nil)
	marker := env.createMarker(t, m.ID, CreateMarkerInput{Title: "Inn", X: 0.5, Y: 0.5})

	if _, err := env.markers.Patch(ctx, marker.ID, MarkerPatch{Title: strptr("Tavern")}); err != nil {
		t.Fatalf("first patch: %v", err)
	}
	stale := int64(0)
	_, err := env.markers.Patch(ctx, marker.ID, MarkerPatch{Title: strptr("Lost"), Version: &stale})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

// The service resolves bare marker ids through the locator; a mock stands in
// to show nothing else is consulted.
func TestMarkerListResolvesThroughLocator(t *testing.T) {
	ctrl := gomock.NewController(t)
	locator := mocks.NewMockLocator(ctrl)

	store, err := storage.OpenProject(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	locator.EXPECT().
		OwnerOfMap(gomock.Any(), "map-1").
		Return(store, nil)

	svc := NewMarkerService(locator, testLimits())
	markers, err := svc.List(context.Background(), "map-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(markers) != 0 {
		t.Errorf("markers = %+v, want none", markers)
	}
}
