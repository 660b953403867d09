package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// SQLCursor adapts *sql.Rows to Cursor. One row is scanned at a time and
// dropped on the next call to Next.
type SQLCursor struct {
	rows   *sql.Rows
	query  string
	format Formatter
	diag   Diagnoser

	cols    []Column
	types   []string
	colsErr error
	loaded  bool

	values  []any
	scanErr error
	row     int
}

// NewSQLCursor takes ownership of rows. A nil format falls back to
// FormatValue.
func NewSQLCursor(rows *sql.Rows, query string, format Formatter, diag Diagnoser) *SQLCursor {
	if format == nil {
		format = FormatValue
	}
	return &SQLCursor{
		rows:   rows,
		query:  query,
		format: format,
		diag:   diag,
	}
}

func (c *SQLCursor) Columns() ([]Column, error) {
	if c.loaded {
		return c.cols, c.colsErr
	}
	c.loaded = true

	colTypes, err := c.rows.ColumnTypes()
	if err != nil {
		c.colsErr = &MetadataError{Cause: err}
		return nil, c.colsErr
	}

	c.cols = make([]Column, len(colTypes))
	c.types = make([]string, len(colTypes))
	for i, ct := range colTypes {
		if ct == nil {
			c.colsErr = &MetadataError{Cause: fmt.Errorf("no type information for column %d", i)}
			return nil, c.colsErr
		}
		typ := strings.ToLower(ct.DatabaseTypeName())
		c.types[i] = typ
		c.cols[i] = Column{
			Name:         ct.Name(),
			Type:         typ,
			DisplayWidth: DisplayWidth(ct),
		}
	}
	return c.cols, nil
}

func (c *SQLCursor) Next() bool {
	if _, err := c.Columns(); err != nil {
		return false
	}
	if !c.rows.Next() {
		return false
	}
	c.row++

	values := make([]any, len(c.cols))
	ptrs := make([]any, len(c.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	c.values = values
	c.scanErr = c.rows.Scan(ptrs...)
	return true
}

func (c *SQLCursor) Cell(i int) (Cell, error) {
	if c.scanErr != nil {
		return Cell{}, &CellFetchError{Row: c.row, Column: i, Cause: c.scanErr}
	}
	if i < 0 || i >= len(c.values) {
		return Cell{}, &CellFetchError{Row: c.row, Column: i, Cause: fmt.Errorf("column index out of range [0,%d)", len(c.values))}
	}

	v := c.values[i]
	if v == nil {
		return Cell{Null: true}, nil
	}
	s, err := c.format(v, c.types[i])
	if err != nil {
		return Cell{}, &CellFetchError{Row: c.row, Column: i, Cause: err}
	}
	return Cell{Value: s}, nil
}

func (c *SQLCursor) Err() error {
	if c.colsErr != nil {
		return c.colsErr
	}
	return WrapQuery(c.query, c.rows.Err(), c.diag)
}

func (c *SQLCursor) Close() error {
	return c.rows.Close()
}

// Rows reports how many rows have been read so far.
func (c *SQLCursor) Rows() int {
	return c.row
}
