package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bgunnarsson/sqltab/internal/app"
	"github.com/bgunnarsson/sqltab/internal/config"
	"github.com/bgunnarsson/sqltab/internal/ui"
)

var configFile string

func newRootCmd(status *ui.Status) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqltab",
		Short: "Run a query and print the result as a text table",
		Long: `sqltab connects to a database server, runs one query and prints the
result as a bordered text table.

Without flags it runs the employees/departments join against the
UNI_Empleados database on ALEX-GH using Windows authentication.
Every setting can come from a YAML config file, SQLTAB_* environment
variables or flags, in increasing order of precedence.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(cmd, status)
			if err != nil {
				return err
			}
			return runner.Run(cmd.Context())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a YAML config file (default ./sqltab.yaml or ~/.sqltab/config.yaml)")
	pf.String("driver", "", "Database driver: mssql, postgres, mysql or sqlite (default mssql)")
	pf.String("server", "", "Server host, optionally HOST\\INSTANCE for mssql")
	pf.Int("port", 0, "Server port (driver default when 0)")
	pf.String("database", "", "Database name, or file path for sqlite")
	pf.String("auth", "", "Authentication mode: windows, sql or azure (default windows)")
	pf.String("user", "", "Login for sql auth")
	pf.String("password", "", "Password for sql auth (default: OS keyring)")
	pf.String("sslmode", "", "postgres sslmode")
	pf.String("dsn", "", "Raw driver DSN, overrides the connection fields")
	pf.Duration("timeout", 0, "Connect timeout (default 5s)")
	pf.String("log-level", "", "Log level: debug, info, warn or error (default warn)")
	rootCmd.Flags().StringP("query", "q", "", "Query to run (default: the employees/departments join)")

	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the target database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(cmd, status)
			if err != nil {
				return err
			}
			return runner.ListTables(cmd.Context())
		},
	}

	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Store the sql auth password for --user@--server in the OS keyring",
		Args:  cobra.NoArgs,
		RunE:  runPassword,
	}

	rootCmd.AddCommand(tablesCmd, passwordCmd)
	return rootCmd
}

func newRunner(cmd *cobra.Command, status *ui.Status) (*app.Runner, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.Debug("config resolved",
		"file", config.ConfigFileUsed(configFile),
		"driver", cfg.Connection.Driver,
		"target", cfg.Connection.DisplayString(),
		"auth", cfg.Connection.Auth)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Connection.ResolvePassword(); err != nil {
		return nil, err
	}

	return &app.Runner{
		Config:    cfg,
		Out:       cmd.OutOrStdout(),
		Logger:    logger,
		Connected: status.Connected,
	}, nil
}

func runPassword(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	var secret string
	if term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "Password for %s: ", cfg.Connection.KeyringAccount())
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		secret = string(b)
	} else {
		var line string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		secret = line
	}

	if strings.TrimSpace(secret) == "" {
		return &config.Error{Field: "password", Cause: fmt.Errorf("empty password")}
	}
	if err := cfg.Connection.StorePassword(secret); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Stored password for %s\n", cfg.Connection.KeyringAccount())
	return nil
}

// newLogger writes to w: colored text on a terminal, logfmt otherwise.
func newLogger(w *os.File, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, &config.Error{Field: "log_level", Cause: err}
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "sqltab",
		ReportTimestamp: true,
	})
	if !term.IsTerminal(int(w.Fd())) {
		logger.SetFormatter(log.LogfmtFormatter)
	}
	return logger.With("run", uuid.NewString()), nil
}
