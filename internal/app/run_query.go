package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bgunnarsson/sqltab/internal/config"
	"github.com/bgunnarsson/sqltab/internal/db"
	"github.com/bgunnarsson/sqltab/internal/print"
)

// Connected is called once the connection is verified, before any query
// runs. The CLI uses it to print its status line.
type Connected func(c config.Connection)

// Runner executes one query against one target and renders it to Out.
type Runner struct {
	Config    *config.Config
	Out       io.Writer
	Logger    *log.Logger
	Connected Connected
}

// Run connects, runs the configured query and renders the result. The
// connection and the cursor are released on every path.
func (r *Runner) Run(ctx context.Context) error {
	return r.run(ctx, func(sdb db.DB) (db.Cursor, error) {
		r.logger().Debug("executing query", "query", r.Config.Query)
		return sdb.Query(ctx, r.Config.Query)
	})
}

// ListTables renders the tables of the target database.
func (r *Runner) ListTables(ctx context.Context) error {
	return r.run(ctx, func(sdb db.DB) (db.Cursor, error) {
		return sdb.ListTables(ctx)
	})
}

func (r *Runner) run(ctx context.Context, query func(db.DB) (db.Cursor, error)) (err error) {
	logger := r.logger()
	conn := r.Config.Connection

	logger.Debug("connecting", "driver", conn.Driver, "target", conn.DisplayString(), "auth", conn.Auth)
	sdb, err := Open(ctx, conn)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sdb.Close(); cerr != nil {
			logger.Warn("close connection", "err", cerr)
			err = errors.Join(err, cerr)
		}
	}()

	logger.Info("connected", "driver", conn.Driver, "target", conn.DisplayString())
	if r.Connected != nil {
		r.Connected(conn)
	}

	start := time.Now()
	cur, err := query(sdb)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cur.Close(); cerr != nil {
			logger.Warn("close cursor", "err", cerr)
			err = errors.Join(err, cerr)
		}
	}()

	st, err := print.Render(r.Out, cur)
	logger.Info("rendered", "rows", st.Rows, "cell_errors", st.CellErrors, "took", time.Since(start))
	if st.CellErrors > 0 {
		logger.Warn("some rows were cut short", "rows", st.CellErrors)
	}
	return err
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard)
	}
	return r.Logger
}
