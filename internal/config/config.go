package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Driver string

const (
	DriverMssql    Driver = "mssql"
	DriverPostgres Driver = "postgres"
	DriverMysql    Driver = "mysql"
	DriverSqlite   Driver = "sqlite"
)

type AuthMode string

const (
	// AuthWindows uses integrated security (Trusted_Connection).
	AuthWindows AuthMode = "windows"
	AuthSQL     AuthMode = "sql"
	// AuthAzure uses Azure AD default credentials (mssql only).
	AuthAzure AuthMode = "azure"
)

const DefaultQuery = `SELECT e.EmpleadoID, e.Nombre, e.Apellido, d.Nombre AS Departamento, e.Salario
FROM Empleados AS e
INNER JOIN Departamentos AS d ON d.DepartamentoID = e.DepartamentoID
ORDER BY e.EmpleadoID;`

type Config struct {
	Connection Connection `mapstructure:"connection" yaml:"connection"`
	Query      string     `mapstructure:"query" yaml:"query"`
	LogLevel   string     `mapstructure:"log_level" yaml:"log_level"`
}

type Connection struct {
	Driver   Driver        `mapstructure:"driver" yaml:"driver"`
	Server   string        `mapstructure:"server" yaml:"server"`
	Port     int           `mapstructure:"port" yaml:"port"`
	Database string        `mapstructure:"database" yaml:"database"`
	Auth     AuthMode      `mapstructure:"auth" yaml:"auth"`
	User     string        `mapstructure:"user" yaml:"user"`
	Password string        `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string        `mapstructure:"sslmode" yaml:"sslmode"`
	DSN      string        `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type Error struct {
	Field string
	Cause error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %v", e.Cause)
	}
	return fmt.Sprintf("config error: %s: %v", e.Field, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Query) == "" {
		return &Error{Field: "query", Cause: fmt.Errorf("empty query")}
	}
	return cfg.Connection.Validate()
}

// Validate checks the connection target. A raw DSN skips the field checks.
func (c Connection) Validate() error {
	switch c.Driver {
	case DriverMssql, DriverPostgres, DriverMysql, DriverSqlite:
	default:
		return &Error{Field: "driver", Cause: fmt.Errorf("unsupported driver %q", c.Driver)}
	}

	if c.DSN != "" {
		return nil
	}

	switch c.Auth {
	case AuthWindows, AuthSQL:
	case AuthAzure:
		if c.Driver != DriverMssql {
			return &Error{Field: "auth", Cause: fmt.Errorf("azure auth requires driver %q", DriverMssql)}
		}
	default:
		return &Error{Field: "auth", Cause: fmt.Errorf("unsupported auth mode %q", c.Auth)}
	}

	if c.Database == "" {
		return &Error{Field: "database", Cause: fmt.Errorf("empty database")}
	}
	if c.Driver == DriverSqlite {
		return nil
	}
	if c.Server == "" {
		return &Error{Field: "server", Cause: fmt.Errorf("empty server")}
	}
	if c.Auth == AuthSQL && c.User == "" {
		return &Error{Field: "user", Cause: fmt.Errorf("sql auth requires a user")}
	}
	return nil
}

// DisplayString returns a human-readable summary of the target, without
// credentials.
func (c Connection) DisplayString() string {
	if c.Driver == DriverSqlite {
		return c.Database
	}
	s := c.Server
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.User != "" {
		s = c.User + "@" + s
	}
	return s
}

func (c Connection) KeyringAccount() string {
	return c.User + "@" + c.Server
}
