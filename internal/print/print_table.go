package print

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/bgunnarsson/sqltab/internal/db"
)

// Stats describes a finished render.
type Stats struct {
	Rows       int
	CellErrors int
}

// RenderTable writes the rows of cur as a bordered text table. Rows are
// consumed one at a time and never buffered. A failing cell skips the rest
// of its row; those errors, and the cursor's own iteration error, are
// returned joined once the bottom rule has been written.
func RenderTable(w io.Writer, cur db.Cursor) error {
	_, err := Render(w, cur)
	return err
}

// Render is RenderTable that also reports what was written.
func Render(w io.Writer, cur db.Cursor) (Stats, error) {
	var st Stats

	cols, err := cur.Columns()
	if err != nil {
		var me *db.MetadataError
		if !errors.As(err, &me) {
			err = &db.MetadataError{Cause: err}
		}
		return st, err
	}

	bw := bufio.NewWriter(w)

	if len(cols) == 0 {
		fmt.Fprintln(bw, "(no columns)")
		return st, bw.Flush()
	}

	widths := ColumnWidths(cols)
	rule := ruleLine(widths)

	// header
	fmt.Fprintln(bw, rule)
	var b strings.Builder
	for i, col := range cols {
		writeCell(&b, col.Name, widths[i])
	}
	fmt.Fprintln(bw, b.String())
	fmt.Fprintln(bw, rule)

	// data
	var errs []error
	for cur.Next() {
		st.Rows++
		b.Reset()
		for i := range cols {
			cell, err := cur.Cell(i)
			if err != nil {
				var ce *db.CellFetchError
				if !errors.As(err, &ce) {
					err = &db.CellFetchError{Row: st.Rows, Column: i, Cause: err}
				}
				errs = append(errs, err)
				st.CellErrors++
				break
			}
			s := cell.Value
			if cell.Null {
				s = "NULL"
			}
			writeCell(&b, s, widths[i])
		}
		if b.Len() == 0 {
			// the first cell failed; nothing to show for this row
			continue
		}
		fmt.Fprintln(bw, b.String())

		// keep emitted lines on the sink even if a later row stalls
		if err := bw.Flush(); err != nil {
			return st, err
		}
	}
	if err := cur.Err(); err != nil {
		errs = append(errs, err)
	}

	fmt.Fprintln(bw, rule)
	if err := bw.Flush(); err != nil {
		errs = append(errs, err)
	}
	return st, errors.Join(errs...)
}

// ColumnWidths returns max(header width, declared display width) for each
// column. Header text is never truncated.
func ColumnWidths(cols []db.Column) []int {
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = max(runewidth.StringWidth(col.Name), col.DisplayWidth)
	}
	return widths
}

func ruleLine(widths []int) string {
	var b strings.Builder
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	return b.String()
}

func writeCell(b *strings.Builder, s string, w int) {
	b.WriteString(" ")
	b.WriteString(padRight(escapeControl(s), w))
	b.WriteString(" |")
}

// escapeControl keeps a value on one line: control characters are written
// as Go-style escapes.
func escapeControl(s string) string {
	if strings.IndexFunc(s, isControl) < 0 {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case isControl(r):
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// padRight left-justifies s to w terminal cells. Longer values are kept
// whole.
func padRight(s string, w int) string {
	return runewidth.FillRight(s, w)
}
