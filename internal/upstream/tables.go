package upstream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TableKind identifies one of the enumerated categories of upstream tabular
// data. Each kind maps to exactly one projection rule in the normalizer.
type TableKind string

const (
	KindTeamList            TableKind = "team_list"
	KindPlayerList          TableKind = "player_list"
	KindStandings           TableKind = "standings"
	KindTeamSummary         TableKind = "team_summary"
	KindPlayerSummary       TableKind = "player_summary"
	KindBoxScoreSummary     TableKind = "box_score_summary"
	KindLineScore           TableKind = "line_score"
	KindInactivePlayers     TableKind = "inactive_players"
	KindBoxScoreTraditional TableKind = "box_score_traditional"
	KindTeamGameLog         TableKind = "team_game_log"
	KindPlayerGameLog       TableKind = "player_game_log"
	KindTeamSeasonStats     TableKind = "team_season_stats"
	KindPlayerSeasonStats   TableKind = "player_season_stats"
	KindPlayerCareerStats   TableKind = "player_career_stats"
)

// Table is one raw upstream result set: an ordered sequence of rows with
// named columns. Row order is significant (box-score display order depends
// on it) and must be preserved end to end.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}

	index map[string]int
}

// response mirrors the provider's envelope: every endpoint returns one or
// more named result sets, each a headers array plus a rowSet matrix.
type response struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// DecodeTables parses a raw provider response body into its named tables.
func DecodeTables(body []byte) (map[string]Table, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding result sets: %w", err)
	}
	if len(resp.ResultSets) == 0 {
		return nil, fmt.Errorf("response contains no result sets")
	}

	tables := make(map[string]Table, len(resp.ResultSets))
	for _, rs := range resp.ResultSets {
		tables[rs.Name] = NewTable(rs.Name, rs.Headers, rs.RowSet)
	}
	return tables, nil
}

// NewTable builds a Table with its column index.
func NewTable(name string, headers []string, rows [][]interface{}) Table {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	return Table{Name: name, Headers: headers, Rows: rows, index: index}
}

// ColumnIndex returns the position of a named column.
func (t Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Require verifies that every named column is present. A missing column is
// a data-contract violation and aborts the batch for this table kind.
func (t Table) Require(columns ...string) error {
	for _, col := range columns {
		if _, ok := t.index[col]; !ok {
			return fmt.Errorf("table %q missing required column %q", t.Name, col)
		}
	}
	return nil
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Row returns a typed accessor over the i-th row.
func (t Table) Row(i int) Row {
	return Row{table: &t, values: t.Rows[i]}
}

// Append returns a copy of t with the rows of other appended. Headers must
// match; used to merge per-entity fetches into one table per kind.
func (t Table) Append(other Table) (Table, error) {
	if len(t.Headers) == 0 {
		return other, nil
	}
	if len(t.Headers) != len(other.Headers) {
		return Table{}, fmt.Errorf("cannot merge tables %q and %q: header mismatch", t.Name, other.Name)
	}
	merged := NewTable(t.Name, t.Headers, append(append([][]interface{}{}, t.Rows...), other.Rows...))
	return merged, nil
}

// Row provides typed access into a single table row. All access goes through
// the column index; a missing column yields the zero value, so callers must
// Require the columns they need before iterating.
type Row struct {
	table  *Table
	values []interface{}
}

// IsNull reports whether the column is absent from this row or null.
func (r Row) IsNull(column string) bool {
	i, ok := r.table.index[column]
	if !ok || i >= len(r.values) {
		return true
	}
	return r.values[i] == nil
}

// Str returns the column as a string.
func (r Row) Str(column string) string {
	i, ok := r.table.index[column]
	if !ok || i >= len(r.values) || r.values[i] == nil {
		return ""
	}
	switch v := r.values[i].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the column coerced to an integer. Numeric strings are parsed;
// anything unparseable yields 0.
func (r Row) Int(column string) int {
	i, ok := r.table.index[column]
	if !ok || i >= len(r.values) || r.values[i] == nil {
		return 0
	}
	switch v := r.values[i].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	case int:
		return v
	default:
		return 0
	}
}

// Float returns the column coerced to a float64.
func (r Row) Float(column string) float64 {
	i, ok := r.table.index[column]
	if !ok || i >= len(r.values) || r.values[i] == nil {
		return 0
	}
	switch v := r.values[i].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	case int:
		return float64(v)
	default:
		return 0
	}
}
