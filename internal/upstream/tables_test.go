package upstream_test

import (
	"errors"
	"testing"

	"github.com/lshi/nbadaily/internal/upstream"
)

const sampleEnvelope = `{
	"resource": "commonteamyears",
	"resultSets": [
		{
			"name": "TeamYears",
			"headers": ["LEAGUE_ID", "TEAM_ID", "MIN_YEAR", "MAX_YEAR", "ABBREVIATION"],
			"rowSet": [
				["00", 1610612737, "1949", "2018", "ATL"],
				["00", 1610612738, "1946", "2018", "BOS"]
			]
		}
	]
}`

func TestDecodeTables(t *testing.T) {
	tables, err := upstream.DecodeTables([]byte(sampleEnvelope))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table, ok := tables["TeamYears"]
	if !ok {
		t.Fatalf("TeamYears table missing, got %v", tables)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if _, ok := table.ColumnIndex("TEAM_ID"); !ok {
		t.Error("TEAM_ID column not found")
	}
	if got := table.Row(1).Str("ABBREVIATION"); got != "BOS" {
		t.Errorf("Str(ABBREVIATION) = %q, want %q", got, "BOS")
	}
}

func TestDecodeTablesBadBody(t *testing.T) {
	if _, err := upstream.DecodeTables([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestRowCoercion(t *testing.T) {
	table := upstream.NewTable("t", []string{"ID", "PTS", "PCT", "NAME", "NOTHING"},
		[][]interface{}{
			{"1610612737", 25.0, "0.45", "LeBron James", nil},
		})
	row := table.Row(0)

	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{"numeric string to int", func(t *testing.T) {
			if got := row.Int("ID"); got != 1610612737 {
				t.Errorf("Int(ID) = %d", got)
			}
		}},
		{"json number to int", func(t *testing.T) {
			if got := row.Int("PTS"); got != 25 {
				t.Errorf("Int(PTS) = %d", got)
			}
		}},
		{"numeric string to float", func(t *testing.T) {
			if got := row.Float("PCT"); got != 0.45 {
				t.Errorf("Float(PCT) = %v", got)
			}
		}},
		{"null detection", func(t *testing.T) {
			if !row.IsNull("NOTHING") {
				t.Error("IsNull(NOTHING) = false")
			}
			if row.IsNull("PTS") {
				t.Error("IsNull(PTS) = true")
			}
		}},
		{"null to zero values", func(t *testing.T) {
			if row.Int("NOTHING") != 0 || row.Str("NOTHING") != "" {
				t.Error("null should coerce to zero values")
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}

func TestRequire(t *testing.T) {
	table := upstream.NewTable("t", []string{"A", "B"}, nil)
	if err := table.Require("A", "B"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := table.Require("A", "C"); err == nil {
		t.Error("expected error for missing column C")
	}
}

func TestAppend(t *testing.T) {
	a := upstream.NewTable("t", []string{"X"}, [][]interface{}{{1}})
	b := upstream.NewTable("t", []string{"X"}, [][]interface{}{{2}, {3}})

	merged, err := a.Append(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Len() != 3 {
		t.Errorf("Len() = %d, want 3", merged.Len())
	}

	// Appending onto a zero table adopts the other table wholesale.
	var empty upstream.Table
	merged, err = empty.Append(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Len() != 2 {
		t.Errorf("Len() = %d, want 2", merged.Len())
	}

	c := upstream.NewTable("t", []string{"X", "Y"}, nil)
	if _, err := a.Append(c); err == nil {
		t.Error("expected header mismatch error")
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &upstream.TransportError{Endpoint: "scoreboardv2", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("TransportError should unwrap to its cause")
	}
}
