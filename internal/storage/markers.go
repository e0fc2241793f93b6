package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const markerColumns = `id, map_id, title, description, x, y, points, style, marker_type, color, icon,
	link_type, link_note_id, link_map_id, version, created_at, updated_at`

func scanMarker(row interface{ Scan(...any) error }) (*Marker, error) {
	var m Marker
	var points, style, linkType, linkNote, linkMap sql.NullString
	err := row.Scan(
		&m.ID, &m.MapID, &m.Title, &m.Description, &m.X, &m.Y, &points, &style,
		&m.MarkerType, &m.Color, &m.Icon, &linkType, &linkNote, &linkMap,
		&m.Version, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan marker: %w", err)
	}

	if points.Valid && points.String != "" {
		if err := json.Unmarshal([]byte(points.String), &m.Points); err != nil {
			return nil, fmt.Errorf("failed to decode marker points: %w", err)
		}
	}
	if style.Valid && style.String != "" {
		m.Style = json.RawMessage(style.String)
	}
	m.LinkType = linkType.String
	m.LinkNoteID = linkNote.String
	m.LinkMapID = linkMap.String
	return &m, nil
}

// markerArgs flattens a marker into the column order of markerColumns,
// encoding points/style to JSON and empty link fields to NULL.
func markerArgs(m *Marker) ([]any, error) {
	var points any
	if len(m.Points) > 0 {
		b, err := json.Marshal(m.Points)
		if err != nil {
			return nil, fmt.Errorf("failed to encode marker points: %w", err)
		}
		points = string(b)
	}
	var style any
	if len(m.Style) > 0 {
		style = string(m.Style)
	}
	nullable := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
	return []any{
		m.ID, m.MapID, m.Title, m.Description, m.X, m.Y, points, style,
		m.MarkerType, m.Color, m.Icon,
		nullable(m.LinkType), nullable(m.LinkNoteID), nullable(m.LinkMapID),
		m.Version, m.CreatedAt, m.UpdatedAt,
	}, nil
}

// MarkerByID returns the marker with the given id, or ErrNotFound.
func MarkerByID(ctx context.Context, q Querier, id string) (*Marker, error) {
	return scanMarker(q.QueryRowContext(ctx,
		"SELECT "+markerColumns+" FROM markers WHERE id = ?", id))
}

// ListMarkers returns all markers on the given map, newest first.
func ListMarkers(ctx context.Context, q Querier, mapID string) ([]Marker, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+markerColumns+" FROM markers WHERE map_id = ? ORDER BY created_at DESC, id", mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	defer rows.Close()

	var out []Marker
	for rows.Next() {
		m, err := scanMarker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate markers: %w", err)
	}
	return out, nil
}

// InsertMarker persists a new marker row.
func InsertMarker(ctx context.Context, q Querier, m *Marker) error {
	args, err := markerArgs(m)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO markers (`+markerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert marker: %w", err)
	}
	return nil
}

// UpdateMarker rewrites every mutable column of the marker row and bumps the
// version counter. The caller has already resolved the full next state, so a
// whole-row write keeps the link triple consistent by construction.
func UpdateMarker(ctx context.Context, q Querier, m *Marker) error {
	args, err := markerArgs(m)
	if err != nil {
		return err
	}
	// Skip id/map_id/version/created_at positions from markerArgs order.
	_, err = q.ExecContext(ctx,
		`UPDATE markers SET
			title = ?, description = ?, x = ?, y = ?, points = ?, style = ?,
			marker_type = ?, color = ?, icon = ?,
			link_type = ?, link_note_id = ?, link_map_id = ?,
			version = version + 1, updated_at = ?
		 WHERE id = ?`,
		args[2], args[3], args[4], args[5], args[6], args[7],
		args[8], args[9], args[10], args[11], args[12], args[13],
		m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update marker: %w", err)
	}
	return nil
}

// DeleteMarker removes one marker row.
func DeleteMarker(ctx context.Context, q Querier, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM markers WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}
	return nil
}

// DeleteMarkersOnMap removes every marker whose owning map is mapID. They
// have no other home, so deleting the map sacrifices them.
func DeleteMarkersOnMap(ctx context.Context, q Querier, mapID string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM markers WHERE map_id = ?", mapID); err != nil {
		return fmt.Errorf("failed to delete markers on map: %w", err)
	}
	return nil
}

// ClearMarkerLinksToMap resets the link state of every marker whose link
// target is mapID, leaving no dangling references when a map disappears.
func ClearMarkerLinksToMap(ctx context.Context, q Querier, mapID string) error {
	_, err := q.ExecContext(ctx,
		"UPDATE markers SET link_type = NULL, link_map_id = NULL WHERE link_map_id = ?", mapID)
	if err != nil {
		return fmt.Errorf("failed to clear marker links to map: %w", err)
	}
	return nil
}

// ClearMarkerLinksToNote resets the link state of every marker pointing at
// noteID.
func ClearMarkerLinksToNote(ctx context.Context, q Querier, noteID string) error {
	_, err := q.ExecContext(ctx,
		"UPDATE markers SET link_type = NULL, link_note_id = NULL WHERE link_note_id = ?", noteID)
	if err != nil {
		return fmt.Errorf("failed to clear marker links to note: %w", err)
	}
	return nil
}
