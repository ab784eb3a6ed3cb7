package normalize

import (
	"github.com/lshi/nbadaily/internal/upstream"
)

// Shared counting-stat columns: every per-game and per-season stats table
// carries these under the same upstream names.
var countingColumns = []string{
	"MIN", "FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT",
	"FTM", "FTA", "FT_PCT", "OREB", "DREB", "REB",
	"AST", "STL", "BLK", "TOV", "PF", "PTS",
}

// Percentage columns stored as fractions in [0,1]. Display mode converts
// them to a 0-100 scale with one decimal; storage mode leaves them raw.
// The conversion happens here and nowhere else.
var percentColumns = map[string]bool{
	"FG_PCT":  true,
	"FG3_PCT": true,
	"FT_PCT":  true,
	"W_PCT":   true,
}

// Date columns. Upstream serves game dates in three different formats
// depending on the table; both modes canonicalize them to YYYY-MM-DD so
// dates compare and order the same everywhere.
var dateColumns = map[string]bool{
	"GAME_DATE":     true,
	"GAME_DATE_EST": true,
}

// Display-mode renames. Storage mode always keeps the upstream name.
var displayRenames = map[string]string{
	"PLUS_MINUS": "+/-",
	"FG_PCT":     "FG%",
	"FG3_PCT":    "FG3%",
	"FT_PCT":     "FT%",
}

// Integer-coerced columns. Upstream serves these inconsistently as numbers
// or numeric strings; they are coerced exactly once, here.
var integerColumns = map[string]bool{
	"TEAM_ID": true, "PERSON_ID": true, "PLAYER_ID": true,
	"HOME_TEAM_ID": true, "VISITOR_TEAM_ID": true,
	"W": true, "L": true, "GP": true, "GS": true,
	"FGM": true, "FGA": true, "FG3M": true, "FG3A": true,
	"FTM": true, "FTA": true, "OREB": true, "DREB": true, "REB": true,
	"AST": true, "STL": true, "BLK": true, "TOV": true, "PF": true,
	"PTS": true, "PLUS_MINUS": true, "ROSTERSTATUS": true,
	"SEASON_EXP": true, "WEIGHT": true,
	"PTS_QTR1": true, "PTS_QTR2": true, "PTS_QTR3": true, "PTS_QTR4": true,
	"PTS_OT1": true, "PTS_OT2": true, "PTS_OT3": true, "PTS_OT4": true,
	"PTS_OT5": true, "PTS_OT6": true, "PTS_OT7": true, "PTS_OT8": true,
	"PTS_OT9": true, "PTS_OT10": true,
}

// Columns zeroed for a did-not-play row. Identity columns are everything
// else the projection retains.
var countingStatSet = map[string]bool{
	"FGM": true, "FGA": true, "FG_PCT": true, "FG3M": true, "FG3A": true,
	"FG3_PCT": true, "FTM": true, "FTA": true, "FT_PCT": true,
	"OREB": true, "DREB": true, "REB": true, "AST": true, "STL": true,
	"BLK": true, "TOV": true, "PF": true, "PTS": true, "PLUS_MINUS": true,
}

// Projection is the per-kind rule: the allow-list of upstream columns to
// retain (everything else is dropped) plus kind-specific flags.
type Projection struct {
	Columns []string

	// dnpZero marks tables whose rows describe player appearances: a row
	// with a null MIN becomes all-zero counting stats instead of nulls.
	dnpZero bool
}

var projections = map[upstream.TableKind]Projection{
	upstream.KindTeamList: {
		Columns: []string{"TEAM_ID"},
	},
	upstream.KindPlayerList: {
		Columns: []string{"PERSON_ID", "ROSTERSTATUS"},
	},
	upstream.KindStandings: {
		Columns: []string{"TEAM_ID", "CONFERENCE", "W", "L", "HOME_RECORD", "ROAD_RECORD", "W_PCT"},
	},
	upstream.KindTeamSummary: {
		Columns: []string{
			"TEAM_ID", "TEAM_ABBREVIATION", "TEAM_CONFERENCE", "TEAM_DIVISION",
			"TEAM_CITY", "TEAM_NAME", "W", "L", "MIN_YEAR", "MAX_YEAR",
		},
	},
	upstream.KindPlayerSummary: {
		Columns: []string{
			"PERSON_ID", "TEAM_ID", "FIRST_NAME", "LAST_NAME", "BIRTHDATE",
			"DRAFT_YEAR", "DRAFT_ROUND", "DRAFT_NUMBER", "POSITION", "JERSEY",
			"HEIGHT", "WEIGHT", "SCHOOL", "COUNTRY", "SEASON_EXP",
		},
	},
	upstream.KindBoxScoreSummary: {
		Columns: []string{
			"GAME_ID", "GAME_DATE_EST", "HOME_TEAM_ID", "VISITOR_TEAM_ID",
			"NATL_TV_BROADCASTER_ABBREVIATION",
		},
	},
	upstream.KindLineScore: {
		Columns: []string{
			"GAME_ID", "TEAM_ID",
			"PTS_QTR1", "PTS_QTR2", "PTS_QTR3", "PTS_QTR4",
			"PTS_OT1", "PTS_OT2", "PTS_OT3", "PTS_OT4", "PTS_OT5",
			"PTS_OT6", "PTS_OT7", "PTS_OT8", "PTS_OT9", "PTS_OT10",
		},
	},
	upstream.KindInactivePlayers: {
		Columns: []string{"PLAYER_ID"},
	},
	upstream.KindBoxScoreTraditional: {
		Columns: append([]string{
			"GAME_ID", "TEAM_ID", "PLAYER_ID", "PLAYER_NAME",
			"START_POSITION", "COMMENT",
		}, countingColumns...),
		dnpZero: true,
	},
	upstream.KindTeamGameLog: {
		Columns: append([]string{
			"Team_ID", "Game_ID", "GAME_DATE", "MATCHUP", "WL", "W", "L",
		}, countingColumns...),
	},
	upstream.KindPlayerGameLog: {
		Columns: append([]string{
			"PLAYER_ID", "TEAM_ID", "GAME_ID", "GAME_DATE", "MATCHUP", "WL",
			"PLUS_MINUS",
		}, countingColumns...),
		dnpZero: true,
	},
	upstream.KindTeamSeasonStats: {
		Columns: append([]string{
			"TEAM_ID", "W", "L", "W_PCT",
		}, countingColumns...),
	},
	upstream.KindPlayerSeasonStats: {
		Columns: append([]string{
			"PLAYER_ID", "SEASON_ID", "TEAM_ID", "GP", "GS",
		}, countingColumns...),
	},
	upstream.KindPlayerCareerStats: {
		Columns: append([]string{
			"PLAYER_ID", "TEAM_ID", "GP", "GS",
		}, countingColumns...),
	},
}

// ProjectionFor returns the projection rule for a table kind.
func ProjectionFor(kind upstream.TableKind) (Projection, bool) {
	p, ok := projections[kind]
	return p, ok
}
