package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const mapColumns = "id, project_id, parent_map_id, title, filename, version, created_at, updated_at"

func scanMap(row interface{ Scan(...any) error }) (*Map, error) {
	var m Map
	var parent sql.NullString
	err := row.Scan(&m.ID, &m.ProjectID, &parent, &m.Title, &m.Filename, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan map: %w", err)
	}
	if parent.Valid {
		m.ParentMapID = &parent.String
	}
	return &m, nil
}

// MapByID returns the map with the given id, or ErrNotFound.
func MapByID(ctx context.Context, q Querier, id string) (*Map, error) {
	return scanMap(q.QueryRowContext(ctx,
		"SELECT "+mapColumns+" FROM maps WHERE id = ?", id))
}

// MapExistsInProject reports whether a map row with the given id belongs to
// the given project. Used for parent and link-target validation.
func MapExistsInProject(ctx context.Context, q Querier, id, projectID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM maps WHERE id = ? AND project_id = ?", id, projectID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check map existence: %w", err)
	}
	return true, nil
}

// ListMaps returns the project's maps, newest first.
func ListMaps(ctx context.Context, q Querier, projectID string) ([]Map, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+mapColumns+" FROM maps WHERE project_id = ? ORDER BY created_at DESC, id", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var out []Map
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate maps: %w", err)
	}
	return out, nil
}

// InsertMap persists a new map row.
func InsertMap(ctx context.Context, q Querier, m *Map) error {
	var parent any
	if m.ParentMapID != nil {
		parent = *m.ParentMapID
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO maps (id, project_id, parent_map_id, title, filename, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, parent, m.Title, m.Filename, m.Version, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert map: %w", err)
	}
	return nil
}

// UpdateMap rewrites a map's mutable fields (title, parent) and bumps its
// version counter.
func UpdateMap(ctx context.Context, q Querier, m *Map) error {
	var parent any
	if m.ParentMapID != nil {
		parent = *m.ParentMapID
	}
	_, err := q.ExecContext(ctx,
		`UPDATE maps SET title = ?, parent_map_id = ?, version = version + 1, updated_at = ? WHERE id = ?`,
		m.Title, parent, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update map: %w", err)
	}
	return nil
}

// SpliceMapChildren re-parents every child of deletedID to newParent (may be
// nil, making the children roots). Part of the splice-out delete: children
// survive one level up instead of being cascaded away.
func SpliceMapChildren(ctx context.Context, q Querier, deletedID string, newParent *string) error {
	var parent any
	if newParent != nil {
		parent = *newParent
	}
	_, err := q.ExecContext(ctx,
		"UPDATE maps SET parent_map_id = ? WHERE parent_map_id = ?", parent, deletedID)
	if err != nil {
		return fmt.Errorf("failed to splice map children: %w", err)
	}
	return nil
}

// DeleteMap removes the map row itself.
func DeleteMap(ctx context.Context, q Querier, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM maps WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete map: %w", err)
	}
	return nil
}
