package db

import (
	"strconv"
	"strings"
)

// maxBoundedLength is the largest declared length treated as a display
// width. Anything above (varchar(max), text, ...) is unbounded.
const maxBoundedLength = 8000

// TypeInfo is the subset of *sql.ColumnType needed to derive a display width.
type TypeInfo interface {
	DatabaseTypeName() string
	Length() (length int64, ok bool)
	DecimalSize() (precision, scale int64, ok bool)
}

var fixedWidths = map[string]int{
	"bit":              1,
	"tinyint":          3,
	"smallint":         6,
	"int2":             6,
	"int":              11,
	"int4":             11,
	"integer":          11,
	"mediumint":        9,
	"bigint":           20,
	"int8":             20,
	"real":             14,
	"float4":           14,
	"float":            24,
	"float8":           24,
	"double":           24,
	"money":            21,
	"smallmoney":       12,
	"date":             10,
	"time":             16,
	"datetime":         23,
	"smalldatetime":    19,
	"timestamp":        23,
	"timestamptz":      29,
	"datetime2":        27,
	"datetimeoffset":   34,
	"uniqueidentifier": 36,
	"uuid":             36,
	"bool":             5,
	"boolean":          5,
}

// DisplayWidth derives the suggested rendering width of a column from its
// type metadata, following the ODBC display size rules.
func DisplayWidth(t TypeInfo) int {
	if t == nil {
		return 0
	}
	name, args := splitTypeName(t.DatabaseTypeName())

	switch name {
	case "decimal", "numeric":
		if p, _, ok := t.DecimalSize(); ok && p > 0 {
			return int(p) + 2
		}
		if len(args) > 0 && args[0] > 0 {
			return args[0] + 2
		}
		return 0
	}

	if w, ok := fixedWidths[name]; ok {
		return w
	}

	// a declared size beats what the driver infers from the value
	var l int64
	var ok bool
	if len(args) > 0 {
		l, ok = int64(args[0]), true
	} else {
		l, ok = t.Length()
	}
	if ok && l > 0 && l <= maxBoundedLength {
		return int(l)
	}
	return 0
}

// splitTypeName lower-cases a declared type and splits off its size
// arguments: "VARCHAR(30)" -> "varchar", [30]. sqlite reports declared
// types this way; mysql reports "UNSIGNED INT" and friends.
func splitTypeName(s string) (string, []int) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "unsigned ")

	base, rest, found := strings.Cut(s, "(")
	base = strings.TrimSpace(base)
	if !found {
		return base, nil
	}
	rest, _, _ = strings.Cut(rest, ")")

	var args []int
	for _, part := range strings.Split(rest, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return base, nil
		}
		args = append(args, n)
	}
	return base, args
}
