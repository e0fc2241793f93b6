package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/storage"
)

func TestCharacterCreateAndPatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")

	c, err := env.characters.Create(ctx, p.ID, CreateCharacterInput{
		Name: "Strahd", Summary: "The count", Tags: []string{"villain"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	patched, err := env.characters.Patch(ctx, c.ID, CharacterPatch{Summary: strptr("The ancient count")})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched.Summary != "The ancient count" {
		t.Errorf("summary = %q", patched.Summary)
	}
	if patched.Name != "Strahd" || len(patched.Tags) != 1 {
		t.Errorf("untouched fields changed: %+v", patched)
	}
	if patched.Version != 1 {
		t.Errorf("version = %d, want 1", patched.Version)
	}
}

func photoFiles(t *testing.T, projectPath string) []string {
	t.Helper()
	dir := filepath.Join(projectPath, filepath.FromSlash(storage.CharacterDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read photo dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Replacing a photo writes the new file, repoints the row, then removes the
// old file — exactly one file remains.
func TestSetPhotoReplacesOldFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	c := env.createCharacter(t, p.ID, "Ireena")

	first, err := env.characters.SetPhoto(ctx, c.ID, Upload{
		Filename: "portrait.png", ContentType: "image/png", Data: []byte("one"),
	})
	if err != nil {
		t.Fatalf("first photo: %v", err)
	}
	second, err := env.characters.SetPhoto(ctx, c.ID, Upload{
		Filename: "portrait.jpg", ContentType: "image/jpeg", Data: []byte("two"),
	})
	if err != nil {
		t.Fatalf("second photo: %v", err)
	}
	if first.PhotoPath == second.PhotoPath {
		t.Fatalf("extension change should produce a new path")
	}

	names := photoFiles(t, p.Path)
	if len(names) != 1 {
		t.Fatalf("photo dir = %v, want exactly one file", names)
	}
	if names[0] != filepath.Base(second.PhotoPath) {
		t.Errorf("surviving file = %q, want %q", names[0], filepath.Base(second.PhotoPath))
	}
}

func TestSetPhotoRejectsBadMime(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Homebrew")
	c := env.createCharacter(t, p.ID, "Ireena")

	_, err := env.characters.SetPhoto(context.Background(), c.ID, Upload{
		Filename: "malware.exe", ContentType: "application/x-msdownload", Data: []byte("x"),
	})
	if apperr.CodeOf(err) != "UNSUPPORTED_IMAGE_TYPE" {
		t.Fatalf("err = %v, want UNSUPPORTED_IMAGE_TYPE", err)
	}
}

func TestClearPhotoRemovesFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	c := env.createCharacter(t, p.ID, "Ireena")

	if _, err := env.characters.SetPhoto(ctx, c.ID, pngUpload("portrait.png", 16)); err != nil {
		t.Fatalf("set photo: %v", err)
	}
	cleared, err := env.characters.ClearPhoto(ctx, c.ID)
	if err != nil {
		t.Fatalf("clear photo: %v", err)
	}
	if cleared.PhotoPath != "" {
		t.Errorf("photo_path = %q, want empty", cleared.PhotoPath)
	}
	if names := photoFiles(t, p.Path); len(names) != 0 {
		t.Errorf("photo dir = %v, want empty", names)
	}
	if _, _, err := env.characters.PhotoPath(ctx, c.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("photo path after clear = %v, want not found", err)
	}
}

// Deleting a character removes its relationships in the same transaction and
// its photo afterwards.
func TestDeleteCharacterCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	strahd := env.createCharacter(t, p.ID, "Strahd")
	ireena := env.createCharacter(t, p.ID, "Ireena")

	if _, err := env.relationships.Create(ctx, p.ID, CreateRelationshipInput{
		FromCharacterID: strahd.ID, ToCharacterID: ireena.ID, Type: "enemy",
	}); err != nil {
		t.Fatalf("create relationship: %v", err)
	}
	if _, err := env.characters.SetPhoto(ctx, strahd.ID, pngUpload("strahd.png", 16)); err != nil {
		t.Fatalf("set photo: %v", err)
	}

	if err := env.characters.Delete(ctx, strahd.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	relationships, err := env.relationships.List(ctx, p.ID)
	if err != nil {
		t.Fatalf("list relationships: %v", err)
	}
	if len(relationships) != 0 {
		t.Errorf("relationships = %+v, want none", relationships)
	}
	if names := photoFiles(t, p.Path); len(names) != 0 {
		t.Errorf("photo dir = %v, want empty", names)
	}
	if _, err := env.characters.Get(ctx, ireena.ID); err != nil {
		t.Errorf("other character should survive: %v", err)
	}
}
