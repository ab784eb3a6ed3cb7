package assemble_test

import (
	"errors"
	"io"
	"log"
	"strconv"
	"testing"

	"github.com/lshi/nbadaily/internal/assemble"
	"github.com/lshi/nbadaily/internal/normalize"
	"github.com/lshi/nbadaily/internal/store"
	"github.com/lshi/nbadaily/internal/upstream"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func boxRow(playerID, teamID int) normalize.Record {
	return normalize.Record{"PLAYER_ID": playerID, "TEAM_ID": teamID, "COMMENT": ""}
}

func TestBoxScoreOrder(t *testing.T) {
	// Five rows: home team first with three players, then two visitors.
	rows := []normalize.Record{
		boxRow(10, 1), boxRow(11, 1), boxRow(12, 1),
		boxRow(20, 2), boxRow(21, 2),
	}

	order := assemble.BoxScoreOrder(rows)

	want := map[int]int{10: 0, 11: 1, 12: 2, 20: 0, 21: 1}
	for playerID, pos := range want {
		if order[playerID] != pos {
			t.Errorf("order[%d] = %d, want %d", playerID, order[playerID], pos)
		}
	}
}

func TestBoxScoreOrderEmpty(t *testing.T) {
	if got := assemble.BoxScoreOrder(nil); len(got) != 0 {
		t.Errorf("order of empty box = %v", got)
	}
}

func lineRow(teamID int, quarters [4]int, ot ...int) normalize.Record {
	rec := normalize.Record{"TEAM_ID": teamID}
	for i, pts := range quarters {
		rec["PTS_QTR"+strconv.Itoa(i+1)] = pts
	}
	for i := 1; i <= 10; i++ {
		rec["PTS_OT"+strconv.Itoa(i)] = 0
	}
	for i, pts := range ot {
		rec["PTS_OT"+strconv.Itoa(i+1)] = pts
	}
	return rec
}

func TestWinner(t *testing.T) {
	line := []normalize.Record{
		lineRow(1, [4]int{30, 25, 25, 25}),
		lineRow(2, [4]int{25, 25, 25, 25}),
	}
	winner, err := assemble.Winner("0021800001", line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if winner != 1 {
		t.Errorf("winner = %d, want 1", winner)
	}
}

func TestWinnerTieIsIntegrityError(t *testing.T) {
	line := []normalize.Record{
		lineRow(1, [4]int{25, 25, 25, 25}),
		lineRow(2, [4]int{25, 25, 25, 25}),
	}
	_, err := assemble.Winner("0021800001", line)
	var ie *store.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want IntegrityError", err)
	}
}

func TestWinnerRequiresTwoRows(t *testing.T) {
	_, err := assemble.Winner("0021800001", []normalize.Record{lineRow(1, [4]int{25, 25, 25, 25})})
	var ie *store.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want IntegrityError", err)
	}
}

func TestPlayersSentinelAssignment(t *testing.T) {
	asm := assemble.New("2018-19", quietLogger())
	teams := map[int]bool{store.SentinelTeamID: true, 1610612738: true}

	summaries := []normalize.Record{
		{"PERSON_ID": 7, "TEAM_ID": 1610612738, "FIRST_NAME": "Jayson", "LAST_NAME": "Tatum"},
		// Traded away: current team not part of the snapshot.
		{"PERSON_ID": 8, "TEAM_ID": 99, "FIRST_NAME": "Journey", "LAST_NAME": "Man"},
	}

	players := asm.Players(summaries, teams)
	if len(players) != 2 {
		t.Fatalf("got %d players, want 2", len(players))
	}
	if players[0].TeamID != 1610612738 {
		t.Errorf("rostered player TeamID = %d", players[0].TeamID)
	}
	if players[1].TeamID != store.SentinelTeamID {
		t.Errorf("traded player TeamID = %d, want sentinel %d", players[1].TeamID, store.SentinelTeamID)
	}
}

func TestGameDropsUnknownReferences(t *testing.T) {
	asm := assemble.New("2018-19", quietLogger())
	players := map[int]bool{7: true}

	summary := normalize.Record{
		"GAME_ID": "0021800001", "GAME_DATE_EST": "2018-10-16",
		"HOME_TEAM_ID": 1, "VISITOR_TEAM_ID": 2,
		"NATL_TV_BROADCASTER_ABBREVIATION": "TNT",
	}
	inactive := []normalize.Record{
		{"PLAYER_ID": 7},
		{"PLAYER_ID": 999}, // never ingested
	}
	box := []normalize.Record{
		{"PLAYER_ID": 7, "TEAM_ID": 1, "COMMENT": "DNP - Coach's Decision"},
		{"PLAYER_ID": 998, "TEAM_ID": 2, "COMMENT": "DND - Injury/Illness"},
	}

	game := asm.Game(summary, inactive, box, players)

	if game.GameID != "0021800001" || game.HomeTeamID != 1 || game.AwayTeamID != 2 {
		t.Errorf("game identity wrong: %+v", game)
	}
	if len(game.InactivePlayers) != 1 || game.InactivePlayers[0] != 7 {
		t.Errorf("InactivePlayers = %v, want [7]", game.InactivePlayers)
	}
	if len(game.DNPPlayers) != 1 || game.DNPPlayers[7] != "DNP - Coach's Decision" {
		t.Errorf("DNPPlayers = %v", game.DNPPlayers)
	}
}

func TestSentinelTeam(t *testing.T) {
	asm := assemble.New("2018-19", quietLogger())
	teams := asm.Teams(nil)
	if len(teams) != 1 {
		t.Fatalf("got %d teams, want sentinel only", len(teams))
	}
	sentinel := teams[0]
	if sentinel.TeamID != store.SentinelTeamID || sentinel.Abbreviation != "TOT" {
		t.Errorf("sentinel = %+v", sentinel)
	}
	if sentinel.Wins != 82 || sentinel.Losses != 0 {
		t.Errorf("sentinel record = %d-%d, want 82-0", sentinel.Wins, sentinel.Losses)
	}
}

func TestPlayerGameLogsOrderAndFiltering(t *testing.T) {
	asm := assemble.New("2018-19", quietLogger())

	logRec := func(playerID int, gameID string) normalize.Record {
		return normalize.Record{
			"PLAYER_ID": playerID, "TEAM_ID": 1, "GAME_ID": gameID,
			"GAME_DATE": "2018-10-16", "MATCHUP": "BOS vs. PHI", "WL": "W",
			"MIN": 34, "PTS": 25, "PLUS_MINUS": 12,
			"FGM": 9, "FGA": 17, "FG_PCT": 0.529,
		}
	}

	records := []normalize.Record{
		logRec(7, "0021800001"),
		logRec(8, "0021800001"),  // unknown player
		logRec(7, "0021899999"), // unknown game
	}
	orders := map[string]map[int]int{"0021800001": {7: 4}}
	players := map[int]bool{7: true}
	games := map[string]bool{"0021800001": true}

	logs := asm.PlayerGameLogs(records, orders, players, games)
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	l := logs[0]
	if l.Order != 4 {
		t.Errorf("Order = %d, want 4", l.Order)
	}
	if l.Points != 25 || l.PlusMinus != 12 || l.Minutes != 34 {
		t.Errorf("stats wrong: %+v", l)
	}
	if l.FGPercent != 0.529 {
		t.Errorf("FGPercent = %v, want stored fraction", l.FGPercent)
	}
}

func TestTeamGameLogsJoinLineScore(t *testing.T) {
	asm := assemble.New("2018-19", quietLogger())

	records := []normalize.Record{
		{
			"Team_ID": 1, "Game_ID": "0021800001", "GAME_DATE": "2018-10-16",
			"MATCHUP": "BOS vs. PHI", "WL": "W", "W": 1, "L": 0,
			"MIN": 240, "PTS": 105,
		},
	}
	lines := map[string][]normalize.Record{
		"0021800001": {
			lineRow(1, [4]int{30, 25, 25, 20}, 5),
			lineRow(2, [4]int{25, 25, 25, 25}),
		},
	}
	games := map[string]bool{"0021800001": true}

	logs := asm.TeamGameLogs(records, lines, games)
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	l := logs[0]
	if l.PtsQtr != [4]int{30, 25, 25, 20} {
		t.Errorf("PtsQtr = %v", l.PtsQtr)
	}
	if l.PtsOT[0] != 5 || l.PtsOT[1] != 0 {
		t.Errorf("PtsOT = %v", l.PtsOT)
	}
	if l.CurrWins != 1 || l.CurrLosses != 0 || l.Result != "W" {
		t.Errorf("record fields wrong: %+v", l)
	}
}

func TestGameDateCanonicalFromSummary(t *testing.T) {
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

	asm := assemble.New("2018-19", quietLogger())
	g := asm.Game(records[0], nil, nil, map[int]bool{})
	if g.GameDate != "2018-10-16" {
		t.Errorf("GameDate = %q, want 2018-10-16", g.GameDate)
	}
}
