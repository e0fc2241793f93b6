package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const noteColumns = "id, project_id, title, path, type, version, created_at, updated_at"

func scanNote(row interface{ Scan(...any) error }) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.ProjectID, &n.Title, &n.Path, &n.Type, &n.Version, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}
	return &n, nil
}

// NoteByID returns the note with the given id, or ErrNotFound.
func NoteByID(ctx context.Context, q Querier, id string) (*Note, error) {
	return scanNote(q.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ?", id))
}

// NoteExists reports whether a note row with the given id exists in this
// store. Link-target validation for markers.
func NoteExists(ctx context.Context, q Querier, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM notes WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check note existence: %w", err)
	}
	return true, nil
}

// ListNotes returns the project's notes, most recently updated first.
func ListNotes(ctx context.Context, q Querier, projectID string) ([]Note, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE project_id = ? ORDER BY updated_at DESC, id", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return out, nil
}

// InsertNote persists a new note row.
func InsertNote(ctx context.Context, q Querier, n *Note) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO notes (id, project_id, title, path, type, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.ProjectID, n.Title, n.Path, n.Type, n.Version, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// TouchNote bumps the note's updated timestamp and version after its body
// file was rewritten.
func TouchNote(ctx context.Context, q Querier, id, updatedAt string) error {
	_, err := q.ExecContext(ctx,
		"UPDATE notes SET updated_at = ?, version = version + 1 WHERE id = ?", updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to touch note: %w", err)
	}
	return nil
}

// DeleteNote removes the note row.
func DeleteNote(ctx context.Context, q Querier, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
