package db

import (
	"fmt"
)

// ConnectionError is returned when the connection target cannot be reached
// or rejects the login. State and Message carry the server diagnostics when
// the driver exposes them.
type ConnectionError struct {
	Driver  string
	Target  string
	State   string
	Message string
	Cause   error
}

func (e *ConnectionError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("connection error (%s %s): state %s: %s", e.Driver, e.Target, e.State, e.Message)
	}
	return fmt.Sprintf("connection error (%s %s): %v", e.Driver, e.Target, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

type QueryExecutionError struct {
	Query   string
	State   string
	Message string
	Cause   error
}

func (e *QueryExecutionError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("query error: state %s: %s", e.State, e.Message)
	}
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Cause
}

type MetadataError struct {
	Cause error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("column metadata: %v", e.Cause)
}

func (e *MetadataError) Unwrap() error {
	return e.Cause
}

// CellFetchError is row-local: the rest of the row is skipped and the
// cursor stays usable.
type CellFetchError struct {
	Row    int
	Column int
	Cause  error
}

func (e *CellFetchError) Error() string {
	return fmt.Sprintf("row %d, column %d: %v", e.Row, e.Column, e.Cause)
}

func (e *CellFetchError) Unwrap() error {
	return e.Cause
}

type Diagnoser func(err error) (state, message string, ok bool)

// WrapQuery wraps err in a QueryExecutionError, filling State and Message
// from diag when possible. A nil err stays nil.
func WrapQuery(query string, err error, diag Diagnoser) error {
	if err == nil {
		return nil
	}
	qe := &QueryExecutionError{Query: query, Cause: err}
	if diag != nil {
		if state, msg, ok := diag(err); ok {
			qe.State, qe.Message = state, msg
		}
	}
	return qe
}
