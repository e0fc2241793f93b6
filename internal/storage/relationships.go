package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const relationshipColumns = "id, project_id, from_character_id, to_character_id, type, note, created_at, updated_at"

func scanRelationship(row interface{ Scan(...any) error }) (*Relationship, error) {
	var r Relationship
	err := row.Scan(&r.ID, &r.ProjectID, &r.FromCharacterID, &r.ToCharacterID,
		&r.Type, &r.Note, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan relationship: %w", err)
	}
	return &r, nil
}

// RelationshipByID returns the relationship with the given id, or ErrNotFound.
func RelationshipByID(ctx context.Context, q Querier, id string) (*Relationship, error) {
	return scanRelationship(q.QueryRowContext(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE id = ?", id))
}

// ListRelationships returns the project's relationships, most recently
// updated first.
func ListRelationships(ctx context.Context, q Querier, projectID string) ([]Relationship, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE project_id = ? ORDER BY updated_at DESC, id", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	defer rows.Close()

	var out []Relationship
	for rows.Next() {
		r, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relationships: %w", err)
	}
	return out, nil
}

// InsertRelationship persists a new relationship row.
func InsertRelationship(ctx context.Context, q Querier, r *Relationship) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO relationships (id, project_id, from_character_id, to_character_id, type, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProjectID, r.FromCharacterID, r.ToCharacterID, r.Type, r.Note, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert relationship: %w", err)
	}
	return nil
}

// DeleteRelationship removes the relationship row, or returns ErrNotFound
// when no row matched.
func DeleteRelationship(ctx context.Context, q Querier, id string) error {
	res, err := q.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
