package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/bgunnarsson/sqltab/internal/config"
	"github.com/bgunnarsson/sqltab/internal/db"
)

// Catppuccin Mocha accents.
// - success: green  #A6E3A1
// - failure: red    #F38BA8
// - detail:  subtext0 #A6ADC8
// - labels:  cyan   #89DCEB
const (
	colorGreen   = lipgloss.Color("#A6E3A1")
	colorRed     = lipgloss.Color("#F38BA8")
	colorSubtext = lipgloss.Color("#A6ADC8")
	colorCyan    = lipgloss.Color("#89DCEB")
)

// Status writes one-line status messages. Colors are dropped automatically
// when w is not a terminal.
type Status struct {
	w io.Writer

	ok     lipgloss.Style
	fail   lipgloss.Style
	label  lipgloss.Style
	detail lipgloss.Style
}

func NewStatus(w io.Writer) *Status {
	r := lipgloss.NewRenderer(w)
	return &Status{
		w:      w,
		ok:     r.NewStyle().Foreground(colorGreen).Bold(true),
		fail:   r.NewStyle().Foreground(colorRed).Bold(true),
		label:  r.NewStyle().Foreground(colorCyan),
		detail: r.NewStyle().Foreground(colorSubtext),
	}
}

// Connected reports a verified connection as "Connected to <database> on
// <server>". A sqlite file has no server, and a raw DSN names neither.
func (s *Status) Connected(c config.Connection) {
	var target string
	switch {
	case c.DSN != "":
		target = fmt.Sprintf("using %s DSN", c.Driver)
	case c.Driver == config.DriverSqlite:
		target = "to " + c.Database
	default:
		target = fmt.Sprintf("to %s on %s", c.Database, c.Server)
	}
	fmt.Fprintf(s.w, "%s %s\n", s.ok.Render("Connected"), s.detail.Render(target))
}

// Failure reports err. Server diagnostics are shown as
// "SQL State: <state> Error: <message>".
func (s *Status) Failure(err error) {
	if err == nil {
		return
	}

	var (
		ce    *db.ConnectionError
		qe    *db.QueryExecutionError
		title = "Error"
		state string
		msg   string
	)
	switch {
	case errors.As(err, &ce):
		title = "Connection failed"
		state, msg = ce.State, ce.Message
	case errors.As(err, &qe):
		title = "Query failed"
		state, msg = qe.State, qe.Message
	}

	fmt.Fprintln(s.w, s.fail.Render(title))
	if state != "" {
		fmt.Fprintf(s.w, "%s %s %s %s\n",
			s.label.Render("SQL State:"), state,
			s.label.Render("Error:"), msg)
		return
	}
	fmt.Fprintln(s.w, s.detail.Render(err.Error()))
}
