package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// RegistryFilename is the registry database file under the projects root.
const RegistryFilename = "registry.sqlite"

// Registry is the single global index of all known projects. It is the only
// non-sharded store: one row per project, nothing else. Opened once and kept
// for the process lifetime.
type Registry struct {
	db *sql.DB
}

// OpenRegistry opens (creating if needed) the registry database at path and
// brings its schema up to date.
func OpenRegistry(path string) (*Registry, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	if err := MigrateRegistry(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate registry: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Insert adds a project row.
func (r *Registry) Insert(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, path, system, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Path, p.System, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetByID returns the project with the given id, or ErrNotFound.
func (r *Registry) GetByID(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, path, system, created_at FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Path, &p.System, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return &p, nil
}

// List returns all projects, newest first. The order is the deterministic
// scan order used by the entity locator.
func (r *Registry) List(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, path, system, created_at FROM projects ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Path, &p.System, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return out, nil
}

// Delete removes the project row. Removing the directory tree is the
// caller's (service layer's) concern and happens after this commits.
func (r *Registry) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
