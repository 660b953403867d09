package db

import (
	"fmt"
	"strconv"
	"time"
)

// Formatter turns a scanned driver value into display text. dbType is the
// lower-cased database type name of the column.
type Formatter func(v any, dbType string) (string, error)

// FormatValue is the formatter shared by all drivers. Adapters wrap it to
// handle their own binary encodings first.
func FormatValue(v any, dbType string) (string, error) {
	switch t := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return t, nil
	case []byte:
		// heuristic: treat as string if printable, else show hex
		s := string(t)
		if isPrintable(s) {
			return s, nil
		}
		return fmt.Sprintf("0x%x", t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case bool:
		return strconv.FormatBool(t), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return fmt.Sprint(t), nil
	}
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' && r != '\r' {
			return false
		}
	}
	return true
}
