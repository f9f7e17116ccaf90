package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/roach88/mangaq/internal/queryir"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewID mints a record id for table: <table>:⟨<uuidv7>⟩.
func NewID(table string) string {
	return fmt.Sprintf("%s:⟨%s⟩", table, uuid.Must(uuid.NewV7()))
}

// AddUser registers a user display name and returns its id.
// Uses ON CONFLICT DO NOTHING for idempotency - re-adding a name (in any
// case) returns the existing id.
func (s *Store) AddUser(ctx context.Context, name string) (string, error) {
	id, err := addNamed(ctx, s.db, s.newID, "users", name)
	if err != nil {
		return "", fmt.Errorf("add user: %w", err)
	}
	return id, nil
}

// AddKind registers a record kind and returns its id.
func (s *Store) AddKind(ctx context.Context, name string) (string, error) {
	id, err := addNamed(ctx, s.db, s.newID, "kinds", name)
	if err != nil {
		return "", fmt.Errorf("add kind: %w", err)
	}
	return id, nil
}

// AddTag registers a tag for one demographic and returns its id.
// The same name may exist once per demographic.
func (s *Store) AddTag(ctx context.Context, name string, sex queryir.TagSex) (string, error) {
	id, err := addTag(ctx, s.db, s.newID, name, sex)
	if err != nil {
		return "", fmt.Errorf("add tag: %w", err)
	}
	return id, nil
}

// addNamed inserts into a (id, name) table. table is always a constant
// from this package.
func addNamed(ctx context.Context, db execer, newID func(string) string, table, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s: empty name", table)
	}

	_, err := db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, name) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`, table),
		newID(table), name)
	if err != nil {
		return "", err
	}

	var id string
	err = db.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE name = ?`, table), name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func addTag(ctx context.Context, db execer, newID func(string) string, name string, sex queryir.TagSex) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("tags: empty name")
	}
	if sex > queryir.TagSexUnisex {
		return "", fmt.Errorf("tags: invalid sex %d", sex)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO tags (id, name, sex, folded) VALUES (?, ?, ?, ?) ON CONFLICT(name, sex) DO NOTHING`,
		newID("tags"), name, int(sex), foldName(name))
	if err != nil {
		return "", err
	}

	var id string
	err = db.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ? AND sex = ?`, name, int(sex)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// foldName is the Unicode case folding tag searches compare on.
func foldName(name string) string {
	return cases.Fold().String(name)
}
