package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx stdlib driver

	"github.com/bgunnarsson/sqltab/internal/config"
	"github.com/bgunnarsson/sqltab/internal/db"
)

const defaultPort = 5432

type PostgresDB struct {
	db *sql.DB
}

// DSN builds a postgresql:// URL for the connection target.
func DSN(c config.Connection) (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.Server == "" {
		return "", fmt.Errorf("empty postgres server")
	}

	port := c.Port
	if port == 0 {
		port = defaultPort
	}

	u := &url.URL{
		Scheme: "postgresql",
		Host:   net.JoinHostPort(c.Server, strconv.Itoa(port)),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}

	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.Timeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.Timeout.Seconds())))
	}
	q.Set("application_name", "sqltab")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func Open(ctx context.Context, dsn string) (*PostgresDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return &PostgresDB{db: sqldb}, nil
}

func (p *PostgresDB) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *PostgresDB) ListTables(ctx context.Context) (db.Cursor, error) {
	const q = `
SELECT table_schema || '.' || table_name AS name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name;
`
	return p.Query(ctx, q)
}

func (p *PostgresDB) Query(ctx context.Context, sqlQuery string, args ...any) (db.Cursor, error) {
	rows, err := p.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, db.WrapQuery(sqlQuery, err, Diagnose)
	}
	return db.NewSQLCursor(rows, sqlQuery, formatValue, Diagnose), nil
}

// Diagnose extracts the SQLSTATE and message of a server error.
func Diagnose(err error) (state, message string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message, true
	}
	return "", "", false
}

func formatValue(v any, dbType string) (string, error) {
	if x, ok := v.([]byte); ok {
		if dbType == "bytea" {
			return fmt.Sprintf("0x%x", x), nil
		}
		return string(x), nil
	}
	return db.FormatValue(v, dbType)
}
