package service

import (
	"context"
	"testing"

	"campaignsmith/internal/apperr"
)

func TestCreateRelationshipRejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Homebrew")
	c := env.createCharacter(t, p.ID, "Strahd")

	_, err := env.relationships.Create(context.Background(), p.ID, CreateRelationshipInput{
		FromCharacterID: c.ID, ToCharacterID: c.ID, Type: "rival",
	})
	if apperr.CodeOf(err) != "RELATIONSHIP_SELF" {
		t.Fatalf("err = %v, want RELATIONSHIP_SELF", err)
	}
}

func TestCreateRelationshipRejectsMissingEndpoint(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Homebrew")
	c := env.createCharacter(t, p.ID, "Strahd")

	_, err := env.relationships.Create(context.Background(), p.ID, CreateRelationshipInput{
		FromCharacterID: c.ID, ToCharacterID: "no-such-character", Type: "enemy",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

// Characters in another project are invisible endpoints even when their ids
// are real.
func TestCreateRelationshipRejectsCrossProjectEndpoint(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.createProject(t, "One")
	p2 := env.createProject(t, "Two")
	local := env.createCharacter(t, p1.ID, "Local")
	foreign := env.createCharacter(t, p2.ID, "Foreign")

	_, err := env.relationships.Create(context.Background(), p1.ID, CreateRelationshipInput{
		FromCharacterID: local.ID, ToCharacterID: foreign.ID, Type: "ally",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCreateRelationshipRejectsBadType(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "Homebrew")
	a := env.createCharacter(t, p.ID, "A")
	b := env.createCharacter(t, p.ID, "B")

	_, err := env.relationships.Create(context.Background(), p.ID, CreateRelationshipInput{
		FromCharacterID: a.ID, ToCharacterID: b.ID, Type: "nemesis",
	})
	if apperr.CodeOf(err) != "INVALID_RELATIONSHIP_TYPE" {
		t.Fatalf("err = %v, want INVALID_RELATIONSHIP_TYPE", err)
	}
}

func TestDeleteRelationshipByBareID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	a := env.createCharacter(t, p.ID, "A")
	b := env.createCharacter(t, p.ID, "B")

	r, err := env.relationships.Create(ctx, p.ID, CreateRelationshipInput{
		FromCharacterID: a.ID, ToCharacterID: b.ID, Type: "mentor",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.relationships.DeleteByID(ctx, r.ID); err != nil {
		t.Fatalf("delete by id: %v", err)
	}
	if err := env.relationships.DeleteByID(ctx, r.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("second delete = %v, want not found", err)
	}
}

func TestDeleteRelationship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "Homebrew")
	a := env.createCharacter(t, p.ID, "A")
	b := env.createCharacter(t, p.ID, "B")

	r, err := env.relationships.Create(ctx, p.ID, CreateRelationshipInput{
		FromCharacterID: a.ID, ToCharacterID: b.ID, Type: "ally",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.relationships.Delete(ctx, p.ID, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.relationships.Delete(ctx, p.ID, r.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("second delete = %v, want not found", err)
	}
}
