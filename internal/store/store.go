package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Querier abstracts *sql.DB and *sql.Tx so store methods work in both contexts.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps a SQLite connection for graph storage.
type Store struct {
	db     *sql.DB
	q      Querier // active querier: db or tx
	dbPath string
}

// Node represents a graph node stored in SQLite.
// IDs are assigned by the caller; the store never picks them.
type Node struct {
	ID         int64
	Project    string
	Label      string
	Properties map[string]any
}

// Edge represents a graph edge stored in SQLite.
type Edge struct {
	ID         int64
	Project    string
	SourceID   int64
	TargetID   int64
	Type       string
	Properties map[string]any
}

// IndexEntry is one searchable key/value pair of a node.
type IndexEntry struct {
	NodeID  int64
	Project string
	Key     string
	Value   string
}

// DefaultPath returns the default database location for a repository.
func DefaultPath(repoPath string) string {
	return filepath.Join(repoPath, ".funcgraph", "graph.db")
}

// OpenPath opens or creates a SQLite database at the given path.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	return open("file:"+dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", dbPath)
}

// OpenMemory opens an in-memory SQLite database (for testing).
func OpenMemory() (*Store, error) {
	return open("file::memory:?_foreign_keys=on", ":memory:")
}

func open(dsn, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Single writer: one connection keeps savepoints and :memory: on the same handle.
	db.SetMaxOpenConns(1)
	s := &Store{db: db, dbPath: dbPath}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// WithTransaction executes fn within a single SQLite transaction.
// The callback receives a transaction-scoped Store; all store methods called on
// txStore use the transaction. The receiver's q field is never mutated.
func (s *Store) WithTransaction(ctx context.Context, fn func(txStore *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{db: s.db, q: tx, dbPath: s.dbPath}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// WithSavepoint runs fn inside a named savepoint. If fn fails, everything it
// wrote is rolled back and the surrounding transaction stays usable.
func (s *Store) WithSavepoint(name string, fn func() error) error {
	if _, err := s.q.Exec("SAVEPOINT " + name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := s.q.Exec("ROLLBACK TO " + name); rbErr != nil {
			slog.Warn("store.savepoint.rollback", "name", name, "err", rbErr)
		}
		_, _ = s.q.Exec("RELEASE " + name)
		return err
	}
	if _, err := s.q.Exec("RELEASE " + name); err != nil {
		return fmt.Errorf("release %s: %w", name, err)
	}
	return nil
}

// BeginBulkWrite relaxes durability pragmas for a bulk import.
// Readers are not expected until EndBulkWrite.
func (s *Store) BeginBulkWrite(ctx context.Context) {
	for _, pragma := range []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = -64000",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			slog.Warn("store.bulk.pragma", "pragma", pragma, "err", err)
		}
	}
}

// EndBulkWrite restores the default pragmas.
func (s *Store) EndBulkWrite(ctx context.Context) {
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		slog.Warn("store.bulk.restore", "err", err)
	}
}

// Checkpoint flushes the WAL and refreshes planner statistics.
func (s *Store) Checkpoint(ctx context.Context) {
	if s.dbPath == ":memory:" {
		return
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		slog.Warn("store.checkpoint", "err", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		slog.Warn("store.optimize", "err", err)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB (for advanced queries).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, ":memory:" for in-memory stores.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		indexed_at TEXT NOT NULL,
		root_path TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY,
		project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
		label TEXT NOT NULL,
		properties TEXT DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(project, label);

	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
		source_id INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		target_id INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		properties TEXT DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id, type);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id, type);
	CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(project, type);

	CREATE TABLE IF NOT EXISTS node_index (
		node_id INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		project TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (node_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_node_index_lookup ON node_index(project, key, value);
	`
	_, err := s.db.Exec(schema)
	return err
}

// marshalProps serializes properties to JSON.
func marshalProps(props map[string]any) string {
	if props == nil {
		return "{}"
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// unmarshalProps deserializes JSON properties.
func unmarshalProps(data string) map[string]any {
	if data == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return map[string]any{}
	}
	return m
}

// Now returns the current time in ISO 8601 format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
