// Package store is the SQLite-backed implementation of the bridge's storage
// and collaborator contracts: sessions, bindings, identities, credentials,
// permission flags, one-time tokens and timelines, all served from one
// database so a single transaction covers everything one message touches.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jrsteele09/go-chat-bridge/bridge"
)

// Config holds store configuration.
type Config struct {
	DataDir string
}

// Store owns the database handle and hands out transaction-scoped repositories.
type Store struct {
	db *sql.DB
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates the data directory if needed, opens SQLite with WAL mode and
// runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	return open(filepath.Join(cfg.DataDir, "bridge.db"))
}

// NewInMemory opens a private in-memory database, for tests.
func NewInMemory() (*Store, error) {
	return open("file::memory:?cache=shared")
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// SQLite allows one writer; serialising at the pool keeps concurrent
	// units of work from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS external_sessions (
			app_id        TEXT NOT NULL,
			app_user_id   TEXT NOT NULL,
			logged_in     INTEGER NOT NULL DEFAULT 0,
			session_attrs TEXT NOT NULL DEFAULT '{}',
			created_at    TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at    TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (app_id, app_user_id)
		);

		CREATE TABLE IF NOT EXISTS multiverse_bindings (
			app_id          TEXT NOT NULL,
			app_user_id     TEXT NOT NULL,
			user_id         TEXT NOT NULL,
			member_user_id  TEXT NOT NULL,
			multiverse_name TEXT NOT NULL,
			binding_attrs   TEXT NOT NULL DEFAULT '{}',
			created_at      TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at      TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (app_id, app_user_id)
		);

		CREATE TABLE IF NOT EXISTS users (
			user_id  TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS credentials (
			username      TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			salt          TEXT NOT NULL DEFAULT '',
			algorithm     TEXT NOT NULL,
			enabled       INTEGER NOT NULL DEFAULT 1,
			valid_from    TEXT,
			valid_until   TEXT
		);

		CREATE TABLE IF NOT EXISTS permission_flags (
			username        TEXT NOT NULL,
			member_username TEXT NOT NULL,
			multiverse_name TEXT NOT NULL,
			flag            TEXT NOT NULL,
			value           INTEGER NOT NULL,
			PRIMARY KEY (username, member_username, multiverse_name, flag)
		);

		CREATE TABLE IF NOT EXISTS one_time_tokens (
			token           TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			member_user_id  TEXT NOT NULL,
			multiverse_name TEXT NOT NULL,
			consumed        INTEGER NOT NULL DEFAULT 0,
			created_at      TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS timelines (
			timeline_id    TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			member_user_id TEXT NOT NULL DEFAULT '',
			timeline_name  TEXT NOT NULL,
			UNIQUE (user_id, member_user_id, timeline_name)
		);

		CREATE TABLE IF NOT EXISTS timeline_messages (
			message_id     TEXT PRIMARY KEY,
			scope_id       TEXT NOT NULL,
			parent_user_id TEXT NOT NULL,
			user_id        TEXT NOT NULL,
			member_user_id TEXT NOT NULL DEFAULT '',
			timeline_id    TEXT NOT NULL,
			message_text   TEXT NOT NULL,
			content_type   TEXT NOT NULL,
			created_at     TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

var _ bridge.Runner = (*Store)(nil)

// ExecuteTransaction runs fn inside one database transaction with every
// repository of the unit of work bound to it. A nil return commits; an error
// rolls back all mutations, leaving the session in its pre-call state.
func (s *Store) ExecuteTransaction(ctx context.Context, fn func(uow bridge.UnitOfWork) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	uow := s.unitOfWork(tx)
	if err := fn(uow); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (s *Store) unitOfWork(q dbtx) bridge.UnitOfWork {
	return bridge.UnitOfWork{
		Sessions:    &sessionRepo{q: q},
		Bindings:    &bindingRepo{q: q},
		Identity:    &identityRepo{q: q},
		Permissions: &permissionRepo{q: q},
		Tokens:      &tokenResolver{q: q},
		Forwarder:   &forwarder{q: q},
	}
}

// UnitOfWork returns repositories bound directly to the database handle, for
// callers that do not need transactional scope (bootstrap, tests).
func (s *Store) UnitOfWork() bridge.UnitOfWork {
	return s.unitOfWork(s.db)
}
