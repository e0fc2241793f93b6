package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const characterColumns = "id, project_id, name, summary, notes, tags_json, photo_path, version, created_at, updated_at"

func scanCharacter(row interface{ Scan(...any) error }) (*Character, error) {
	var c Character
	var tagsJSON string
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Summary, &c.Notes, &tagsJSON,
		&c.PhotoPath, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan character: %w", err)
	}
	// A corrupt tags blob degrades to no tags rather than failing the read.
	if json.Unmarshal([]byte(tagsJSON), &c.Tags) != nil || c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

func tagsToJSON(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

// CharacterByID returns the character with the given id, or ErrNotFound.
func CharacterByID(ctx context.Context, q Querier, id string) (*Character, error) {
	return scanCharacter(q.QueryRowContext(ctx,
		"SELECT "+characterColumns+" FROM characters WHERE id = ?", id))
}

// CharacterExistsInProject reports whether a character row with the given id
// belongs to the given project.
func CharacterExistsInProject(ctx context.Context, q Querier, id, projectID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM characters WHERE id = ? AND project_id = ?", id, projectID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check character existence: %w", err)
	}
	return true, nil
}

// ListCharacters returns the project's characters, most recently updated first.
func ListCharacters(ctx context.Context, q Querier, projectID string) ([]Character, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+characterColumns+" FROM characters WHERE project_id = ? ORDER BY updated_at DESC, id", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	var out []Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate characters: %w", err)
	}
	return out, nil
}

// InsertCharacter persists a new character row.
func InsertCharacter(ctx context.Context, q Querier, c *Character) error {
	tagsJSON, err := tagsToJSON(c.Tags)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO characters (id, project_id, name, summary, notes, tags_json, photo_path, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProjectID, c.Name, c.Summary, c.Notes, tagsJSON, c.PhotoPath, c.Version, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert character: %w", err)
	}
	return nil
}

// UpdateCharacter rewrites the character's mutable fields and bumps its
// version counter.
func UpdateCharacter(ctx context.Context, q Querier, c *Character) error {
	tagsJSON, err := tagsToJSON(c.Tags)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE characters SET name = ?, summary = ?, notes = ?, tags_json = ?, photo_path = ?,
			version = version + 1, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.Summary, c.Notes, tagsJSON, c.PhotoPath, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}
	return nil
}

// DeleteCharacter removes the character row.
func DeleteCharacter(ctx context.Context, q Querier, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM characters WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}
	return nil
}

// DeleteRelationshipsForCharacter removes every relationship that touches the
// character, from either end. Runs in the same transaction as the character
// delete so no dangling endpoint is ever visible.
func DeleteRelationshipsForCharacter(ctx context.Context, q Querier, projectID, characterID string) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM relationships
		 WHERE project_id = ? AND (from_character_id = ? OR to_character_id = ?)`,
		projectID, characterID, characterID)
	if err != nil {
		return fmt.Errorf("failed to delete relationships for character: %w", err)
	}
	return nil
}
