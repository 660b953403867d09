package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	mssqldb "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/bgunnarsson/sqltab/internal/config"
	"github.com/bgunnarsson/sqltab/internal/db"
)

type MssqlDB struct {
	db *sql.DB
}

// DSN builds a sqlserver:// URL for the connection target.
// A "SERVER\INSTANCE" server name becomes the URL path.
func DSN(c config.Connection) (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.Server == "" {
		return "", fmt.Errorf("empty mssql server")
	}

	host, instance, _ := strings.Cut(c.Server, `\`)
	if c.Port > 0 {
		host += ":" + strconv.Itoa(c.Port)
	}

	u := &url.URL{
		Scheme: "sqlserver",
		Host:   host,
	}
	if instance != "" {
		u.Path = "/" + instance
	}

	q := url.Values{}
	q.Set("database", c.Database)
	q.Set("app name", "sqltab")
	if c.Timeout > 0 {
		q.Set("dial timeout", strconv.Itoa(int(c.Timeout.Seconds())))
	}

	switch c.Auth {
	case config.AuthSQL:
		u.User = url.UserPassword(c.User, c.Password)
	case config.AuthAzure:
		q.Set("fedauth", azuread.ActiveDirectoryDefault)
	case config.AuthWindows, "":
		// no credentials: the driver falls back to integrated security
	default:
		return "", fmt.Errorf("unsupported mssql auth mode %q", c.Auth)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Open opens a MSSQL connection.
// If the DSN contains "fedauth=", we use the Azure AD driver (azuresql)
// so things like ActiveDirectoryInteractive / AzCli work.
func Open(ctx context.Context, dsn string) (*MssqlDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mssql DSN")
	}

	driverName := "sqlserver"
	if strings.Contains(strings.ToLower(dsn), "fedauth=") {
		driverName = azuread.DriverName // "azuresql"
	}

	sqldb, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	// one query per run
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return &MssqlDB{db: sqldb}, nil
}

// --- db.DB implementation ---

func (m *MssqlDB) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *MssqlDB) ListTables(ctx context.Context) (db.Cursor, error) {
	const q = `
SELECT TABLE_SCHEMA + '.' + TABLE_NAME AS name
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_SCHEMA, TABLE_NAME;
`
	return m.Query(ctx, q)
}

func (m *MssqlDB) Query(ctx context.Context, sqlQuery string, args ...any) (db.Cursor, error) {
	rows, err := m.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, db.WrapQuery(sqlQuery, err, Diagnose)
	}
	return db.NewSQLCursor(rows, sqlQuery, formatValue, Diagnose), nil
}

// Diagnose extracts the server error number, state and message.
func Diagnose(err error) (state, message string, ok bool) {
	var me mssqldb.Error
	if errors.As(err, &me) {
		return fmt.Sprintf("%d/%d", me.Number, me.State), me.Message, true
	}
	var pme *mssqldb.Error
	if errors.As(err, &pme) && pme != nil {
		return fmt.Sprintf("%d/%d", pme.Number, pme.State), pme.Message, true
	}
	return "", "", false
}

func formatValue(v any, dbType string) (string, error) {
	x, ok := v.([]byte)
	if !ok {
		return db.FormatValue(v, dbType)
	}

	// NEVER string() binary; it wrecks the table.
	switch dbType {
	case "uniqueidentifier":
		return formatUniqueIdentifier(x)
	case "decimal", "numeric", "money", "smallmoney":
		return string(x), nil
	case "char", "varchar", "text", "nchar", "nvarchar", "ntext", "xml", "sql_variant":
		return db.FormatValue(x, dbType)
	default:
		// safe hex representation for any other binary
		return fmt.Sprintf("0x%x", x), nil
	}
}
