package snapshot_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lshi/nbadaily/internal/snapshot"
	"github.com/lshi/nbadaily/internal/store"
)

func sampleSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Season: "2018-19",
		Teams: []store.Team{
			{TeamID: 0, Season: "2018-19", Abbreviation: "TOT", Wins: 82},
			{TeamID: 1610612738, Season: "2018-19", Abbreviation: "BOS", City: "Boston", Name: "Celtics"},
		},
		Players: []store.Player{
			{PlayerID: 7, Season: "2018-19", TeamID: 1610612738, FirstName: "Jayson", LastName: "Tatum"},
		},
		Games: []store.Game{
			{GameID: "0021800001", Season: "2018-19", HomeTeamID: 1610612738, AwayTeamID: 0,
				InactivePlayers: []int64{}, DNPPlayers: map[int]string{}},
		},
		TeamGameLogs: []store.TeamGameLog{
			{GameID: "0021800001", TeamID: 1610612738, Season: "2018-19", Result: "W"},
		},
		PlayerGameLogs: []store.PlayerGameLog{
			{GameID: "0021800001", PlayerID: 7, TeamID: 1610612738, Season: "2018-19"},
		},
		PlayerSeasonStats: []store.PlayerSeasonStats{
			{PlayerID: 7, Season: "2018-19", StatSeason: "2018-19", SeasonType: store.SeasonTypeRegular},
		},
	}
}

func TestFixturesDeterministic(t *testing.T) {
	a, err := sampleSnapshot().Fixtures()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := sampleSnapshot().Fixtures()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if !bytes.Equal(ja, jb) {
		t.Error("same snapshot must serialize to identical fixtures")
	}
}

func TestFixturesDependencyOrder(t *testing.T) {
	records, err := sampleSnapshot().Fixtures()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	position := map[string]int{}
	for i, rec := range records {
		if _, seen := position[rec.Model]; !seen {
			position[rec.Model] = i
		}
	}

	// Referenced models must appear before their referrers.
	deps := [][2]string{
		{snapshot.ModelTeam, snapshot.ModelPlayer},
		{snapshot.ModelTeam, snapshot.ModelGame},
		{snapshot.ModelGame, snapshot.ModelTeamGameLog},
		{snapshot.ModelTeamGameLog, snapshot.ModelPlayerGameLog},
	}
	for _, d := range deps {
		if position[d[0]] >= position[d[1]] {
			t.Errorf("%s (index %d) must precede %s (index %d)", d[0], position[d[0]], d[1], position[d[1]])
		}
	}
}

func TestValidateDuplicatePrimaryKey(t *testing.T) {
	s := sampleSnapshot()
	s.Players = append(s.Players, s.Players[0])

	err := s.Validate()
	var ie *store.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want IntegrityError", err)
	}
	if ie.Entity != snapshot.ModelPlayer {
		t.Errorf("Entity = %q, want %q", ie.Entity, snapshot.ModelPlayer)
	}
}

func TestValidateCompositeKeysDoNotCollide(t *testing.T) {
	s := sampleSnapshot()
	// Same game, other team: a distinct log, not a duplicate.
	s.TeamGameLogs = append(s.TeamGameLogs, store.TeamGameLog{
		GameID: "0021800001", TeamID: 0, Season: "2018-19", Result: "L",
	})
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteFixtureFiles(t *testing.T) {
	dir := t.TempDir()
	if err := snapshot.WriteFixtureFiles(dir, sampleSnapshot()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "main_team.json"))
	if err != nil {
		t.Fatalf("reading team fixture: %v", err)
	}

	var records []snapshot.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("decoding team fixture: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d team records, want 2", len(records))
	}
	if records[0].Model != snapshot.ModelTeam || records[0].PK != "0" {
		t.Errorf("first record = %+v", records[0])
	}

	// Models with no rows still get a file, holding an empty list.
	data, err = os.ReadFile(filepath.Join(dir, "main_standing.json"))
	if err != nil {
		t.Fatalf("reading standings fixture: %v", err)
	}
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("decoding standings fixture: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d standing records, want 0", len(records))
	}
}

func TestWriteAbortsOnIntegrityError(t *testing.T) {
	s := sampleSnapshot()
	s.Teams = append(s.Teams, s.Teams[1])

	if _, err := s.Fixtures(); err == nil {
		t.Fatal("expected integrity error")
	}
}
