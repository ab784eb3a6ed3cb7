// Package normalize turns raw upstream tables into column-pruned,
// type-coerced record sets. Every table kind has exactly one projection
// rule; everything the rule does not name is dropped.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lshi/nbadaily/internal/upstream"
)

// Mode selects between the two normalization outputs. Storage keeps raw
// fractions and upstream column names for persistence; Display converts
// percentages to a 0-100 scale and applies human-facing renames. The two
// must never be conflated: a value is converted exactly once.
type Mode int

const (
	ModeStorage Mode = iota
	ModeDisplay
)

// ErrUnknownTableKind marks a table kind with no projection rule. This is
// a configuration error: fatal, never retried.
var ErrUnknownTableKind = errors.New("unknown table kind")

// SchemaError reports a raw table missing a column its kind requires. The
// batch for that kind aborts; retrying an unchanged schema is pointless.
type SchemaError struct {
	Kind   upstream.TableKind
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table kind %s: required column %s missing", e.Kind, e.Column)
}

// Record is one normalized row keyed by column name (upstream names in
// storage mode, display names in display mode).
type Record map[string]interface{}

// Int returns a record field as an integer.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// Float returns a record field as a float64.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Str returns a record field as a string.
func (r Record) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	if r[key] == nil {
		return ""
	}
	return fmt.Sprint(r[key])
}

// Normalize applies the table kind's projection rule to a raw table:
// allow-list pruning, per-column coercion, mode-dependent percentage
// conversion and renaming, and did-not-play zeroing.
func Normalize(kind upstream.TableKind, mode Mode, t upstream.Table) ([]Record, error) {
	proj, ok := ProjectionFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTableKind, kind)
	}

	for _, col := range proj.Columns {
		if _, present := t.ColumnIndex(col); !present {
			return nil, &SchemaError{Kind: kind, Column: col}
		}
	}

	records := make([]Record, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		rec := make(Record, len(proj.Columns))

		dnp := proj.dnpZero && isDNP(row)

		for _, col := range proj.Columns {
			rec[fieldName(col, mode)] = normalizeValue(col, mode, row, dnp)
		}
		records = append(records, rec)
	}

	return records, nil
}

// isDNP reports whether an appearance row records no playing time.
func isDNP(row upstream.Row) bool {
	if row.IsNull("MIN") {
		return true
	}
	min := strings.TrimSpace(row.Str("MIN"))
	return min == "" || min == "0"
}

func fieldName(col string, mode Mode) string {
	if mode == ModeDisplay {
		if renamed, ok := displayRenames[col]; ok {
			return renamed
		}
	}
	return col
}

func normalizeValue(col string, mode Mode, row upstream.Row, dnp bool) interface{} {
	if dnp && countingStatSet[col] {
		if percentColumns[col] {
			return 0.0
		}
		return 0
	}
	if dnp && col == "MIN" {
		return "00:00"
	}

	switch {
	case dateColumns[col]:
		return canonicalDate(row.Str(col))
	case percentColumns[col]:
		frac := row.Float(col)
		if mode == ModeDisplay {
			return Percent(frac)
		}
		return frac
	case integerColumns[col]:
		return row.Int(col)
	case col == "MIN":
		// Minutes stay a display string ("34:12" per game, float-like
		// totals in season tables).
		return row.Str(col)
	default:
		return row.Str(col)
	}
}

// Percent converts a stored fraction in [0,1] to the 0-100 display scale,
// rounded to one decimal. This is the single place the conversion lives.
func Percent(fraction float64) float64 {
	return math.Round(fraction*1000) / 10
}

// dateLayouts covers the formats the upstream mixes across tables: ISO
// timestamps on game summaries, bare ISO dates on league game logs, and
// "APR 10, 2019" on team game logs.
var dateLayouts = []string{"2006-01-02T15:04:05", "2006-01-02", "Jan 2, 2006"}

// canonicalDate coerces an upstream date string to YYYY-MM-DD so game
// dates from different tables compare and sort consistently. Strings no
// layout matches pass through untouched.
func canonicalDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
