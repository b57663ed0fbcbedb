// Package index maintains a derived SQLite view of the task files. The
// database is pure cache: it can be deleted at any time and rebuilt from
// the files, and nothing ever writes task state to it that is not also in
// a file. Queries that would otherwise re-parse the whole tree (status
// boards, child listings) read from here instead.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/ordinal"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/store"
)

// schemaVersion is stamped into PRAGMA user_version. Any mismatch on open
// means the cache layout changed; the table is dropped and the caller
// rebuilds from files.
const schemaVersion = 2

const sqliteBusyTimeoutMs = 5000

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	id        TEXT PRIMARY KEY,
	title     TEXT NOT NULL,
	status    TEXT NOT NULL,
	priority  TEXT NOT NULL DEFAULT '',
	parent    TEXT NOT NULL DEFAULT '',
	milestone TEXT NOT NULL DEFAULT '',
	ordinal   REAL,
	scope     TEXT NOT NULL,
	path      TEXT NOT NULL,
	created   TEXT NOT NULL DEFAULT '',
	updated   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS tasks_parent ON tasks(parent);
`

// Row is one indexed task. It carries only the columns list views need;
// anything richer goes back to the file.
type Row struct {
	ID        string
	Title     string
	Status    string
	Priority  string
	Parent    string
	Milestone string
	Ordinal   sql.NullFloat64
	Scope     store.Scope
	Path      string
	Created   string
	Updated   string
}

// Index wraps the derived database. A single connection is kept so
// per-connection pragmas apply consistently. prefix is the configured
// identifier prefix, needed for numeric ID comparison in board order.
type Index struct {
	db     *sql.DB
	prefix string
}

// Open opens (or creates) the index database at path and ensures the
// schema matches schemaVersion, wiping stale layouts.
func Open(ctx context.Context, path, prefix string) (*Index, error) {
	if path == "" {
		return nil, errors.New("index: path is empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("index: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	err = db.PingContext(ctx)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("index: ping: %w", err), db.Close())
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
	`, sqliteBusyTimeoutMs))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("index: apply pragmas: %w", err), db.Close())
	}

	err = ensureSchema(ctx, db)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return &Index{db: db, prefix: prefix}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	var version int

	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("index: user_version: %w", err)
	}

	if version != 0 && version != schemaVersion {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS tasks")
		if err != nil {
			return fmt.Errorf("index: drop stale schema: %w", err)
		}
	}

	_, err = db.ExecContext(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("index: create schema: %w", err)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	if err != nil {
		return fmt.Errorf("index: set user_version: %w", err)
	}

	return nil
}

// Rebuild replaces the whole index with the given entries in one
// transaction. Used on startup and whenever the cache is suspect.
func (ix *Index) Rebuild(ctx context.Context, entries []store.Entry) (err error) {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin rebuild: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	_, err = tx.ExecContext(ctx, "DELETE FROM tasks")
	if err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}

	for _, entry := range entries {
		err = upsertTx(ctx, tx, entry)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("index: commit rebuild: %w", err)
	}

	return nil
}

const upsertSQL = `
INSERT INTO tasks (id, title, status, priority, parent, milestone, ordinal, scope, path, created, updated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	status = excluded.status,
	priority = excluded.priority,
	parent = excluded.parent,
	milestone = excluded.milestone,
	ordinal = excluded.ordinal,
	scope = excluded.scope,
	path = excluded.path,
	created = excluded.created,
	updated = excluded.updated
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertTx(ctx context.Context, db execer, entry store.Entry) error {
	var ordinal any
	if v, ok := entry.Task.OrdinalValue(); ok {
		ordinal = v
	}

	_, err := db.ExecContext(ctx, upsertSQL,
		entry.Task.ID, entry.Task.Title, entry.Task.Status, entry.Task.Priority,
		entry.Task.Parent, entry.Task.Milestone, ordinal,
		string(entry.Scope), entry.Path, entry.Task.Created, entry.Task.Updated,
	)
	if err != nil {
		return fmt.Errorf("index: upsert %s: %w", entry.Task.ID, err)
	}

	return nil
}

// Upsert inserts or refreshes one entry after a file write.
func (ix *Index) Upsert(ctx context.Context, entry store.Entry) error {
	return upsertTx(ctx, ix.db, entry)
}

// Remove drops one task from the index after its file is deleted.
func (ix *Index) Remove(ctx context.Context, id string) error {
	_, err := ix.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("index: remove %s: %w", id, err)
	}

	return nil
}

const selectCols = "SELECT id, title, status, priority, parent, milestone, ordinal, scope, path, created, updated FROM tasks"

// ByStatus returns the indexed tasks of one scope and status in board
// order.
func (ix *Index) ByStatus(ctx context.Context, scope store.Scope, status string) ([]Row, error) {
	query := selectCols + " WHERE scope = ? AND status = ?"

	return ix.queryRows(ctx, query, string(scope), status)
}

// Children returns the indexed direct children of parentID in board order.
func (ix *Index) Children(ctx context.Context, parentID string) ([]Row, error) {
	query := selectCols + " WHERE parent = ?"

	return ix.queryRows(ctx, query, parentID)
}

// All returns every indexed task of one scope in board order.
func (ix *Index) All(ctx context.Context, scope store.Scope) ([]Row, error) {
	query := selectCols + " WHERE scope = ?"

	return ix.queryRows(ctx, query, string(scope))
}

// sortBoardOrder sorts rows the way the in-memory paths do: explicit
// ordinals ascending first, then the ordinal-less; ties fall through to
// case-insensitive title and numeric ID, so TASK-9 lists before TASK-10.
func sortBoardOrder(rows []Row, prefix string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		switch {
		case a.Ordinal.Valid && b.Ordinal.Valid && a.Ordinal.Float64 != b.Ordinal.Float64:
			return a.Ordinal.Float64 < b.Ordinal.Float64
		case a.Ordinal.Valid != b.Ordinal.Valid:
			return a.Ordinal.Valid
		}

		return ordinal.TieBreak(a.Title, a.ID, b.Title, b.ID, prefix) < 0
	})
}

func (ix *Index) queryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var out []Row

	for rows.Next() {
		var (
			r     Row
			scope string
		)

		err = rows.Scan(&r.ID, &r.Title, &r.Status, &r.Priority, &r.Parent,
			&r.Milestone, &r.Ordinal, &scope, &r.Path, &r.Created, &r.Updated)
		if err != nil {
			return nil, fmt.Errorf("index: scan: %w", err)
		}

		r.Scope = store.Scope(scope)
		out = append(out, r)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("index: iterate: %w", err)
	}

	sortBoardOrder(out, ix.prefix)

	return out, nil
}
