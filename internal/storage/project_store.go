package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
)

// ProjectDBFilename is the store database file inside a project root.
const ProjectDBFilename = "db.sqlite"

// Subtrees of a project root, relative paths with forward slashes as stored
// in the database.
const (
	MapAssetDir    = "assets/maps"
	NoteDir        = "notes"
	CharacterDir   = "characters"
	DescriptorName = "project.json"
)

// ProjectStore is one embedded database per project root. Stores are opened
// per logical operation and closed when it finishes; every open pays the
// migrate-on-open cost, which is a version check once the schema is current.
type ProjectStore struct {
	db   *sql.DB
	root string
}

// OpenProject opens the store under the given project root, creating and
// migrating the schema as needed. Safe to call concurrently for the same
// root: migrations are guarded by the driver's locking plus the WAL busy
// timeout.
func OpenProject(root string) (*ProjectStore, error) {
	db, err := openSQLite(filepath.Join(root, ProjectDBFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to open project store at %s: %w", root, err)
	}
	if err := MigrateProject(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate project store at %s: %w", root, err)
	}
	return &ProjectStore{db: db, root: root}, nil
}

// Root returns the project's filesystem root.
func (s *ProjectStore) Root() string { return s.root }

// DB exposes the underlying handle for single-statement queries.
func (s *ProjectStore) DB() *sql.DB { return s.db }

// Close closes the store.
func (s *ProjectStore) Close() error { return s.db.Close() }

// AbsPath joins a database-stored relative path onto the project root.
// Callers must still pass the result through files.AssertInside.
func (s *ProjectStore) AbsPath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// WithTx runs fn inside a transaction so multi-statement invariant-preserving
// operations are never partially visible. A nil return commits; any error
// rolls back.
func (s *ProjectStore) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
