// internal/store/sqlite.go
//
// SQLite implementation of Backend.
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - A single kv table holding values with optional expiry.
//
// Expired rows are treated as absent and replaced on the next write.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLite is a Backend on a local sqlite file.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (creating if missing) the database at path and migrates it.
func NewSQLite(path string) (*SQLite, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// openDB ensures the parent directory exists and configures busy timeout and
// WAL journaling.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies embedded migrations in lexical order, each in its own
// transaction, skipping files already recorded in _migrations.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var value string
	var expires sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE key=?`, key,
	).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if expires.Valid && s.now().UnixMilli() >= expires.Int64 {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at`,
		key, value, s.expiry(ttl),
	)
	return err
}

func (s *SQLite) expiry(ttl time.Duration) sql.NullInt64 {
	if ttl <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: s.now().Add(ttl).UnixMilli(), Valid: true}
}

// Consume reads and bumps the counter inside one transaction.
func (s *SQLite) Consume(ctx context.Context, key string, limit int, window time.Duration) (time.Duration, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	var value string
	var expires sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT value, expires_at FROM kv WHERE key=?`, key).Scan(&value, &expires)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		value = "0"
		expires = sql.NullInt64{}
	case err != nil:
		return 0, err
	}
	if !expires.Valid || now.UnixMilli() >= expires.Int64 {
		value = "0"
		expires = sql.NullInt64{Int64: now.Add(window).UnixMilli(), Valid: true}
	}

	n, _ := strconv.Atoi(value)
	n++
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at`,
		key, strconv.Itoa(n), expires,
	); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	if n <= limit {
		return 0, nil
	}
	return time.UnixMilli(expires.Int64).Sub(now), nil
}

func (s *SQLite) Close() error { return s.db.Close() }
