package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"modernc.org/sqlite"

	"github.com/bgunnarsson/sqltab/internal/config"
	"github.com/bgunnarsson/sqltab/internal/db"
)

type SqliteDB struct {
	db *sql.DB
}

// DSN is the database file path; the server fields do not apply.
// The file must already exist: opening a missing path would create an
// empty database.
func DSN(c config.Connection) (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.Database == "" {
		return "", fmt.Errorf("empty sqlite database path")
	}
	if c.Database == ":memory:" || strings.HasPrefix(c.Database, "file:") {
		return c.Database, nil
	}
	if _, err := os.Stat(c.Database); err != nil {
		return "", fmt.Errorf("sqlite database: %w", err)
	}
	return c.Database, nil
}

func Open(ctx context.Context, path string) (*SqliteDB, error) {
	// Keep it simple: open by plain path, then enable pragmas explicitly.
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// A single connection also keeps ":memory:" databases alive.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	// Enable foreign keys.
	if _, err := sqldb.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	// Fails here on an unreadable or non-sqlite file.
	var n int
	if err := sqldb.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master;`).Scan(&n); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	return &SqliteDB{db: sqldb}, nil
}

func (s *SqliteDB) Close() error {
	return s.db.Close()
}

// Exec runs a statement that returns no rows.
func (s *SqliteDB) Exec(ctx context.Context, sqlStr string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return db.WrapQuery(sqlStr, err, Diagnose)
	}
	return nil
}

func (s *SqliteDB) ListTables(ctx context.Context) (db.Cursor, error) {
	// Use sqlite_master (works everywhere), include tables + views,
	// hide internal sqlite_% objects.
	const q = `
		SELECT name
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY lower(name);
	`
	return s.Query(ctx, q)
}

func (s *SqliteDB) Query(ctx context.Context, sqlStr string, args ...any) (db.Cursor, error) {
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, db.WrapQuery(sqlStr, err, Diagnose)
	}
	return db.NewSQLCursor(rows, sqlStr, nil, Diagnose), nil
}

// Diagnose extracts the sqlite result code and message.
func Diagnose(err error) (state, message string, ok bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return strconv.Itoa(se.Code()), se.Error(), true
	}
	return "", "", false
}
