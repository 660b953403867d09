package db

import (
	"context"
)

// Column is a result column as reported by the driver. DisplayWidth is the
// suggested rendering width, 0 when the type has no bounded size.
type Column struct {
	Name         string
	Type         string
	DisplayWidth int
}

// Cell is a single value of a row. Null marks SQL NULL.
type Cell struct {
	Value string
	Null  bool
}

// Cursor is a lazy, finite, forward-only row source. Columns are known
// before the first call to Next.
type Cursor interface {
	Columns() ([]Column, error)
	Next() bool
	Cell(i int) (Cell, error)
	Err() error
	Close() error
}

type DB interface {
	Close() error
	ListTables(ctx context.Context) (Cursor, error)
	Query(ctx context.Context, sql string, args ...any) (Cursor, error)
}
