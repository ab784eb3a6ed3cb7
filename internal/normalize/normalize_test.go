package normalize_test

import (
	"errors"
	"testing"

	"github.com/lshi/nbadaily/internal/normalize"
	"github.com/lshi/nbadaily/internal/upstream"
)

var boxHeaders = []string{
	"GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "TEAM_CITY", "PLAYER_ID", "PLAYER_NAME",
	"START_POSITION", "COMMENT", "MIN", "FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT",
	"FTM", "FTA", "FT_PCT", "OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF", "PTS",
	"PLUS_MINUS",
}

func boxRow(playerID, teamID int, min interface{}, comment string, pts interface{}) []interface{} {
	return []interface{}{
		"0021800001", teamID, "BOS", "Boston", playerID, "Some Player",
		"F", comment, min, 9, 17, 0.529, 2, 5, 0.4,
		5, 6, 0.833, 1, 7, 8, 4, 1, 0, 2, 3, pts,
		7,
	}
}

func TestNormalizeDidNotPlay(t *testing.T) {
	table := upstream.NewTable("PlayerStats", boxHeaders, [][]interface{}{
		boxRow(7, 3, nil, "DND - Rest", nil),
	})

	records, err := normalize.Normalize(upstream.KindBoxScoreTraditional, normalize.ModeStorage, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]

	// Identity fields survive.
	if rec.Int("PLAYER_ID") != 7 || rec.Int("TEAM_ID") != 3 {
		t.Errorf("identity fields changed: %v", rec)
	}
	if rec.Str("COMMENT") != "DND - Rest" {
		t.Errorf("COMMENT = %q", rec.Str("COMMENT"))
	}

	// Counting stats zero out, minutes become the zero clock.
	if rec.Int("PTS") != 0 {
		t.Errorf("PTS = %v, want 0", rec["PTS"])
	}
	if rec.Int("FGM") != 0 || rec.Float("FG_PCT") != 0 {
		t.Errorf("counting stats not zeroed: %v", rec)
	}
	if rec.Str("MIN") != "00:00" {
		t.Errorf("MIN = %q, want 00:00", rec.Str("MIN"))
	}
}

func TestNormalizePlayedRowKeepsStats(t *testing.T) {
	table := upstream.NewTable("PlayerStats", boxHeaders, [][]interface{}{
		boxRow(7, 3, "34:12", "", 25),
	})

	records, err := normalize.Normalize(upstream.KindBoxScoreTraditional, normalize.ModeStorage, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := records[0]
	if rec.Int("PTS") != 25 {
		t.Errorf("PTS = %v, want 25", rec["PTS"])
	}
	if rec.Str("MIN") != "34:12" {
		t.Errorf("MIN = %q, want 34:12", rec.Str("MIN"))
	}
	// Storage mode keeps percentages as raw fractions.
	if got := rec.Float("FG_PCT"); got != 0.529 {
		t.Errorf("FG_PCT = %v, want 0.529", got)
	}
}

func TestNormalizeDisplayMode(t *testing.T) {
	headers := append([]string{
		"PLAYER_ID", "TEAM_ID", "GAME_ID", "GAME_DATE", "MATCHUP", "WL", "PLUS_MINUS",
	}, "MIN", "FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT",
		"FTM", "FTA", "FT_PCT", "OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF", "PTS")
	table := upstream.NewTable("LeagueGameLog", headers, [][]interface{}{
		{7, 3, "0021800001", "2018-10-16", "BOS vs. PHI", "W", 12,
			34, 9, 17, 0.529, 2, 5, 0.4,
			5, 6, 0.833, 1, 7, 8, 4, 1, 0, 2, 3, 25},
	})

	records, err := normalize.Normalize(upstream.KindPlayerGameLog, normalize.ModeDisplay, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := records[0]

	// Display renames.
	if _, ok := rec["FG_PCT"]; ok {
		t.Error("FG_PCT should be renamed in display mode")
	}
	if _, ok := rec["+/-"]; !ok {
		t.Error("PLUS_MINUS should surface as +/-")
	}
	if rec.Int("+/-") != 12 {
		t.Errorf("+/- = %v, want 12", rec["+/-"])
	}

	// Percentages convert to the 0-100 scale, one decimal.
	if got := rec.Float("FG%"); got != 52.9 {
		t.Errorf("FG%% = %v, want 52.9", got)
	}
	if got := rec.Float("FT%"); got != 83.3 {
		t.Errorf("FT%% = %v, want 83.3", got)
	}
}

func TestNormalizeStorageKeepsUpstreamNames(t *testing.T) {
	headers := append([]string{
		"PLAYER_ID", "TEAM_ID", "GAME_ID", "GAME_DATE", "MATCHUP", "WL", "PLUS_MINUS",
	}, "MIN", "FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT",
		"FTM", "FTA", "FT_PCT", "OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF", "PTS")
	table := upstream.NewTable("LeagueGameLog", headers, [][]interface{}{
		{7, 3, "0021800001", "2018-10-16", "BOS vs. PHI", "W", 12,
			34, 9, 17, 0.529, 2, 5, 0.4,
			5, 6, 0.833, 1, 7, 8, 4, 1, 0, 2, 3, 25},
	})

	records, err := normalize.Normalize(upstream.KindPlayerGameLog, normalize.ModeStorage, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := records[0]
	if _, ok := rec["FG%"]; ok {
		t.Error("storage mode must not rename columns")
	}
	if got := rec.Float("FG_PCT"); got != 0.529 {
		t.Errorf("FG_PCT = %v, want raw fraction", got)
	}
	if rec.Int("PLUS_MINUS") != 12 {
		t.Errorf("PLUS_MINUS = %v, want 12", rec["PLUS_MINUS"])
	}
}

func TestNormalizeMissingColumn(t *testing.T) {
	table := upstream.NewTable("TeamYears", []string{"LEAGUE_ID"}, nil)

	_, err := normalize.Normalize(upstream.KindTeamList, normalize.ModeStorage, table)
	var se *normalize.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
	if se.Column != "TEAM_ID" {
		t.Errorf("Column = %q, want TEAM_ID", se.Column)
	}
}

func TestNormalizeUnknownKind(t *testing.T) {
	table := upstream.NewTable("t", []string{"A"}, nil)
	_, err := normalize.Normalize(upstream.TableKind("nonsense"), normalize.ModeStorage, table)
	if !errors.Is(err, normalize.ErrUnknownTableKind) {
		t.Fatalf("error = %v, want ErrUnknownTableKind", err)
	}
}

func TestNormalizeDropsUnlistedColumns(t *testing.T) {
	table := upstream.NewTable("TeamYears", []string{"LEAGUE_ID", "TEAM_ID", "ABBREVIATION"},
		[][]interface{}{{"00", 1610612737, "ATL"}})

	records, err := normalize.Normalize(upstream.KindTeamList, normalize.ModeStorage, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := records[0]
	if len(rec) != 1 {
		t.Errorf("record has %d fields, want 1: %v", len(rec), rec)
	}
	if rec.Int("TEAM_ID") != 1610612737 {
		t.Errorf("TEAM_ID = %v", rec["TEAM_ID"])
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		want     float64
	}{
		{"zero", 0, 0},
		{"perfect", 1, 100},
		{"half", 0.505, 50.5},
		{"rounds up", 0.8333, 83.3},
		{"rounds to one decimal", 0.4567, 45.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.Percent(tt.fraction); got != tt.want {
				t.Errorf("Percent(%v) = %v, want %v", tt.fraction, got, tt.want)
			}
		})
	}
}

var teamLogHeaders = []string{
	"Team_ID", "Game_ID", "GAME_DATE", "MATCHUP", "WL", "W", "L",
	"MIN", "FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT",
	"FTM", "FTA", "FT_PCT", "OREB", "DREB", "REB",
	"AST", "STL", "BLK", "TOV", "PF", "PTS",
}

func teamLogRow(gameID, date string) []interface{} {
	row := []interface{}{2, gameID, date, "BOS vs. LAL", "W", 10, 3, "240"}
	for i := 0; i < len(teamLogHeaders)-8; i++ {
		row = append(row, 0)
	}
	return row
}

func TestNormalizeCanonicalDates(t *testing.T) {
	t.Run("game summary iso timestamp", func(t *testing.T) {
		table := upstream.NewTable("GameSummary", []string{
			"GAME_ID", "GAME_DATE_EST", "HOME_TEAM_ID", "VISITOR_TEAM_ID",
			"NATL_TV_BROADCASTER_ABBREVIATION",
		}, [][]interface{}{
			{"0021800001", "2018-10-16T00:00:00", 2, 23, "TNT"},
		})
		records, err := normalize.Normalize(upstream.KindBoxScoreSummary, normalize.ModeStorage, table)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := records[0].Str("GAME_DATE_EST"); got != "2018-10-16" {
			t.Errorf("GAME_DATE_EST = %q, want 2018-10-16", got)
		}
	})

	t.Run("team log month-name dates order chronologically", func(t *testing.T) {
		table := upstream.NewTable("TeamGameLog", teamLogHeaders, [][]interface{}{
			teamLogRow("0021800414", "DEC 5, 2018"),
			teamLogRow("0021801200", "APR 10, 2019"),
		})
		records, err := normalize.Normalize(upstream.KindTeamGameLog, normalize.ModeStorage, table)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		dec := records[0].Str("GAME_DATE")
		apr := records[1].Str("GAME_DATE")
		if dec != "2018-12-05" || apr != "2019-04-10" {
			t.Fatalf("dates = %q, %q; want 2018-12-05, 2019-04-10", dec, apr)
		}
		if dec >= apr {
			t.Errorf("december sorts after april: %q >= %q", dec, apr)
		}
	})

	t.Run("unrecognized date passes through", func(t *testing.T) {
		table := upstream.NewTable("GameSummary", []string{
			"GAME_ID", "GAME_DATE_EST", "HOME_TEAM_ID", "VISITOR_TEAM_ID",
			"NATL_TV_BROADCASTER_ABBREVIATION",
		}, [][]interface{}{
			{"0021800002", "sometime", 2, 23, ""},
		})
		records, err := normalize.Normalize(upstream.KindBoxScoreSummary, normalize.ModeStorage, table)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := records[0].Str("GAME_DATE_EST"); got != "sometime" {
			t.Errorf("GAME_DATE_EST = %q, want pass-through", got)
		}
	})
}
