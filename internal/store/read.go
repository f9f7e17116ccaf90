package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/mangaq/internal/queryir"
)

// ResolveUserID returns the id of the user with the given display name.
// Returns an error wrapping ErrNotFound when no user matches.
func (s *Store) ResolveUserID(ctx context.Context, name string) (string, error) {
	return s.resolveNamed(ctx, "users", "user", name)
}

// ResolveKindID returns the id of the named record kind.
func (s *Store) ResolveKindID(ctx context.Context, name string) (string, error) {
	return s.resolveNamed(ctx, "kinds", "kind", name)
}

func (s *Store) resolveNamed(ctx context.Context, table, what, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE name = ?`, table),
		strings.TrimSpace(name),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s %q: %w", what, name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s %q: %w", what, name, err)
	}
	return id, nil
}

// ResolveTagIDs returns the ids of every tag whose name contains text,
// case-insensitively, narrowed to one demographic when sex is non-nil.
// Matching runs on the Unicode case-folded name, so "ÉTÉ" finds "été".
// No match returns an empty slice, not an error.
//
// Query: ORDER BY name ASC, id COLLATE BINARY ASC
func (s *Store) ResolveTagIDs(ctx context.Context, sex *queryir.TagSex, text string) ([]string, error) {
	query := `SELECT id FROM tags WHERE instr(folded, ?) > 0`
	args := []any{foldName(text)}
	if sex != nil {
		query += ` AND sex = ?`
		args = append(args, int(*sex))
	}
	query += ` ORDER BY name ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve tags %q: %w", text, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("resolve tags %q: %w", text, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve tags %q: %w", text, err)
	}
	return ids, nil
}

// Entry is one directory row.
type Entry struct {
	ID   string
	Name string
	// Sex is only set for tags.
	Sex *queryir.TagSex
}

// Users lists every user.
//
// Query: ORDER BY name ASC, id COLLATE BINARY ASC
func (s *Store) Users(ctx context.Context) ([]Entry, error) {
	return s.listNamed(ctx, "users")
}

// Kinds lists every record kind.
func (s *Store) Kinds(ctx context.Context) ([]Entry, error) {
	return s.listNamed(ctx, "kinds")
}

func (s *Store) listNamed(ctx context.Context, table string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name ASC, id COLLATE BINARY ASC`, table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("list %s: %w", table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Tags lists every tag.
func (s *Store) Tags(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, sex FROM tags ORDER BY name ASC, sex ASC, id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			sex int
		)
		if err := rows.Scan(&e.ID, &e.Name, &sex); err != nil {
			return nil, fmt.Errorf("list tags: %w", err)
		}
		ts := queryir.TagSex(sex)
		e.Sex = &ts
		out = append(out, e)
	}
	return out, rows.Err()
}
