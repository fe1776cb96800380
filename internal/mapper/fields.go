package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"comms-metrics-backend/internal/model"
)

// ErrMalformedRow is returned when a backend row lacks an expected field or
// carries a value of the wrong shape.
var ErrMalformedRow = errors.New("malformed row")

// lookup finds column in row, falling back to a case-insensitive match since
// Postgres folds unquoted identifiers to lower case.
func lookup(row model.Row, column string) (any, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return nil, false
}

func malformed(index int, column string, format string, args ...any) error {
	return fmt.Errorf("%w: row %d field %q: %s", ErrMalformedRow, index, column, fmt.Sprintf(format, args...))
}

func requiredString(row model.Row, index int, column string) (string, error) {
	v, ok := lookup(row, column)
	if !ok || v == nil {
		return "", malformed(index, column, "missing")
	}
	s, ok := toString(v)
	if !ok {
		return "", malformed(index, column, "not a string (%T)", v)
	}
	return s, nil
}

// optionalString returns fallback for absent, null or empty values.
func optionalString(row model.Row, index int, column, fallback string) (string, error) {
	v, ok := lookup(row, column)
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := toString(v)
	if !ok {
		return "", malformed(index, column, "not a string (%T)", v)
	}
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return s, nil
}

func requiredInt(row model.Row, index int, column string) (int64, error) {
	v, ok := lookup(row, column)
	if !ok || v == nil {
		return 0, malformed(index, column, "missing")
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, malformed(index, column, "not an integer (%v)", v)
	}
	return n, nil
}

// toString accepts text only. Booleans and numbers are a shape mismatch for
// identifier and message columns.
func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case []byte:
		return string(s), true
	}
	return "", false
}

// toInt64 accepts Go integers, whole finite floats in int64 range and
// base-10 numeric text. Booleans, fractions and out-of-range values are
// rejected.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		i, err := cast.ToInt64E(n)
		return i, err == nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return wholeFloat(float64(n))
	case float64:
		return wholeFloat(n)
	case json.Number:
		return parseInt(n.String())
	case string:
		return parseInt(n)
	}
	return 0, false
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return wholeFloat(f)
}

// float64 cannot represent 2^63-1, so the upper bound is exclusive at 2^63.
func wholeFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}
