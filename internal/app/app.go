package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bgunnarsson/sqltab/internal/config"
	"github.com/bgunnarsson/sqltab/internal/db"
	"github.com/bgunnarsson/sqltab/internal/db/mssql"
	"github.com/bgunnarsson/sqltab/internal/db/mysql"
	"github.com/bgunnarsson/sqltab/internal/db/postgres"
	"github.com/bgunnarsson/sqltab/internal/db/sqlite"
)

const defaultConnectTimeout = 5 * time.Second

type driver struct {
	dsn      func(config.Connection) (string, error)
	open     func(ctx context.Context, dsn string) (db.DB, error)
	diagnose db.Diagnoser
}

var drivers = map[config.Driver]driver{
	config.DriverMssql: {
		dsn:      mssql.DSN,
		open:     func(ctx context.Context, dsn string) (db.DB, error) { return mssql.Open(ctx, dsn) },
		diagnose: mssql.Diagnose,
	},
	config.DriverPostgres: {
		dsn:      postgres.DSN,
		open:     func(ctx context.Context, dsn string) (db.DB, error) { return postgres.Open(ctx, dsn) },
		diagnose: postgres.Diagnose,
	},
	config.DriverMysql: {
		dsn:      mysql.DSN,
		open:     func(ctx context.Context, dsn string) (db.DB, error) { return mysql.Open(ctx, dsn) },
		diagnose: mysql.Diagnose,
	},
	config.DriverSqlite: {
		dsn:      sqlite.DSN,
		open:     func(ctx context.Context, dsn string) (db.DB, error) { return sqlite.Open(ctx, dsn) },
		diagnose: sqlite.Diagnose,
	},
}

// Open is the central factory: it connects to the target described by c
// and verifies the connection. Every failure is a *db.ConnectionError.
func Open(ctx context.Context, c config.Connection) (db.DB, error) {
	connErr := func(err error) error {
		ce := &db.ConnectionError{
			Driver: string(c.Driver),
			Target: c.DisplayString(),
			Cause:  err,
		}
		if d, ok := drivers[c.Driver]; ok {
			if state, msg, ok := d.diagnose(err); ok {
				ce.State, ce.Message = state, msg
			}
		}
		return ce
	}

	d, ok := drivers[c.Driver]
	if !ok {
		return nil, connErr(fmt.Errorf("unsupported driver %q", c.Driver))
	}

	dsn, err := d.dsn(c)
	if err != nil {
		return nil, connErr(err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sdb, err := d.open(ctx, dsn)
	if err != nil {
		return nil, connErr(err)
	}
	return sdb, nil
}
