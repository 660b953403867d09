package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/bgunnarsson/sqltab/internal/config"
	"github.com/bgunnarsson/sqltab/internal/db"
)

const defaultPort = 3306

type MysqlDB struct {
	db *sql.DB
}

// DSN builds a go-sql-driver DSN for the connection target.
func DSN(c config.Connection) (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.Server == "" {
		return "", fmt.Errorf("empty mysql server")
	}

	port := c.Port
	if port == 0 {
		port = defaultPort
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Server, strconv.Itoa(port))
	mc.DBName = c.Database
	mc.ParseTime = true
	if c.Timeout > 0 {
		mc.Timeout = c.Timeout
	}
	return mc.FormatDSN(), nil
}

func Open(ctx context.Context, dsn string) (*MysqlDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mysql DSN")
	}

	sqldb, err := sql.Open("mysql", dsn)
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

	return &MysqlDB{db: sqldb}, nil
}

// --- db.DB implementation ---

func (m *MysqlDB) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *MysqlDB) ListTables(ctx context.Context) (db.Cursor, error) {
	const q = `
SELECT table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema = DATABASE()
ORDER BY table_name;
`
	return m.Query(ctx, q)
}

func (m *MysqlDB) Query(ctx context.Context, sqlQuery string, args ...any) (db.Cursor, error) {
	rows, err := m.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, db.WrapQuery(sqlQuery, err, Diagnose)
	}
	return db.NewSQLCursor(rows, sqlQuery, formatValue, Diagnose), nil
}

// Diagnose extracts the SQLSTATE (or error number) and message of a server
// error.
func Diagnose(err error) (state, message string, ok bool) {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return "", "", false
	}
	state = string(myErr.SQLState[:])
	if myErr.SQLState == [5]byte{} {
		state = strconv.Itoa(int(myErr.Number))
	}
	return state, myErr.Message, true
}

func formatValue(v any, dbType string) (string, error) {
	if x, ok := v.([]byte); ok {
		switch dbType {
		case "binary", "varbinary", "blob", "tinyblob", "mediumblob", "longblob", "bit", "geometry":
			return fmt.Sprintf("0x%x", x), nil
		}
		// MySQL returns TEXT/VARCHAR as []byte
		return string(x), nil
	}
	return db.FormatValue(v, dbType)
}
