// Package store persists named rule sets in SQLite, so a curated set can be
// imported once and applied by name instead of shipping rule files around.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"charsub/internal/rules"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a named rule set does not exist.
var ErrNotFound = errors.New("ruleset not found")

// Store is a SQLite-backed registry of named rule sets.
type Store struct {
	db *sql.DB
}

// SetInfo summarizes a stored rule set for listings.
type SetInfo struct {
	Name      string `json:"name"`
	Revision  string `json:"revision"`
	RuleCount int    `json:"rule_count"`
	UpdatedAt string `json:"updated_at"`
}

// Open creates or opens the registry database at path.
//
// The database is configured with WAL mode, NORMAL synchronous, a 5-second
// busy timeout, and foreign key enforcement. The pool is limited to a single
// connection: SQLite allows one writer, and the registry is not a hot path.
// Safe to call repeatedly; the schema is applied idempotently.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSet stores set under its name, replacing any previous contents in a
// single transaction. Returns the new revision token (UUIDv7, so revisions
// sort by save time).
func (s *Store) SaveSet(ctx context.Context, set *rules.Set) (string, error) {
	if set.Name == "" {
		return "", fmt.Errorf("ruleset name is required")
	}
	revision := uuid.Must(uuid.NewV7()).String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Upsert, then read the id back: LastInsertId is unreliable on the
	// conflict-update path.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO rulesets (name, revision) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			revision = excluded.revision,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		set.Name, revision,
	)
	if err != nil {
		return "", fmt.Errorf("upserting ruleset %q: %w", set.Name, err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM rulesets WHERE name = ?`, set.Name).Scan(&id); err != nil {
		return "", fmt.Errorf("reading ruleset id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE ruleset_id = ?`, id); err != nil {
		return "", fmt.Errorf("clearing previous rules: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO rules (ruleset_id, seq, input, output) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing rule insert: %w", err)
	}
	defer insert.Close()

	for i, r := range set.Rules {
		if _, err := insert.ExecContext(ctx, id, i, r.Input, r.Output); err != nil {
			return "", fmt.Errorf("inserting rule %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing ruleset %q: %w", set.Name, err)
	}

	slog.Info("ruleset saved",
		"name", set.Name,
		"rules", len(set.Rules),
		"revision", revision,
	)
	return revision, nil
}

// GetSet loads a rule set by name, rules in declaration order.
// Returns ErrNotFound when the name is unknown.
func (s *Store) GetSet(ctx context.Context, name string) (*rules.Set, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM rulesets WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading ruleset %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT input, output FROM rules WHERE ruleset_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("reading rules of %q: %w", name, err)
	}
	defer rows.Close()

	set := &rules.Set{Name: name}
	for rows.Next() {
		var r rules.Rule
		if err := rows.Scan(&r.Input, &r.Output); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		set.Rules = append(set.Rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules of %q: %w", name, err)
	}
	return set, nil
}

// ListSets returns summaries of all stored rule sets, ordered by name.
func (s *Store) ListSets(ctx context.Context) ([]SetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rs.name, rs.revision, rs.updated_at, COUNT(r.ruleset_id)
		FROM rulesets rs
		LEFT JOIN rules r ON r.ruleset_id = rs.id
		GROUP BY rs.id
		ORDER BY rs.name`)
	if err != nil {
		return nil, fmt.Errorf("listing rulesets: %w", err)
	}
	defer rows.Close()

	var infos []SetInfo
	for rows.Next() {
		var info SetInfo
		if err := rows.Scan(&info.Name, &info.Revision, &info.UpdatedAt, &info.RuleCount); err != nil {
			return nil, fmt.Errorf("scanning ruleset row: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rulesets: %w", err)
	}
	return infos, nil
}

// DeleteSet removes a rule set and its rules (cascade).
// Returns ErrNotFound when the name is unknown.
func (s *Store) DeleteSet(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rulesets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting ruleset %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting ruleset %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	slog.Info("ruleset deleted", "name", name)
	return nil
}
