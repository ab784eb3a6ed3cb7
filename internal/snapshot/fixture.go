// Package snapshot turns assembled entities into durable outputs: fixture
// files mirroring the load format, and a transactional database write
// that replaces a season atomically.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lshi/nbadaily/internal/store"
)

// Fixture model labels, one per entity table. File output uses the bare
// entity name.
const (
	ModelTeam              = "nbadaily.team"
	ModelPlayer            = "nbadaily.player"
	ModelGame              = "nbadaily.game"
	ModelStanding          = "nbadaily.standing"
	ModelTeamGameLog       = "nbadaily.teamgamelog"
	ModelPlayerGameLog     = "nbadaily.playergamelog"
	ModelTeamSeasonStats   = "nbadaily.teamseasonstats"
	ModelPlayerSeasonStats = "nbadaily.playerseasonstats"
	ModelPlayerCareerStats = "nbadaily.playercareerstats"
)

// Record is one fixture entry: a model label, a primary key, and the
// entity fields.
type Record struct {
	Model  string      `json:"model"`
	PK     string      `json:"pk"`
	Fields interface{} `json:"fields"`
}

// Snapshot is the complete assembled state of one season, ready to be
// persisted or serialized. Slices are ordered so that every referenced
// entity precedes its referrers.
type Snapshot struct {
	Season            string
	Teams             []store.Team
	Players           []store.Player
	Games             []store.Game
	Standings         []store.Standing
	TeamGameLogs      []store.TeamGameLog
	PlayerGameLogs    []store.PlayerGameLog
	TeamSeasonStats   []store.TeamSeasonStats
	PlayerSeasonStats []store.PlayerSeasonStats
	PlayerCareerStats []store.PlayerCareerStats
}

// Validate checks primary key uniqueness across every entity slice.
// A duplicate key means the assembly produced conflicting rows and the
// snapshot must not be persisted.
func (s *Snapshot) Validate() error {
	seen := make(map[string]bool)
	check := func(model, pk string) error {
		key := model + "/" + pk
		if seen[key] {
			return &store.IntegrityError{Entity: model, Key: pk, Reason: "duplicate primary key"}
		}
		seen[key] = true
		return nil
	}

	for _, t := range s.Teams {
		if err := check(ModelTeam, fmt.Sprint(t.TeamID)); err != nil {
			return err
		}
	}
	for _, p := range s.Players {
		if err := check(ModelPlayer, fmt.Sprint(p.PlayerID)); err != nil {
			return err
		}
	}
	for _, g := range s.Games {
		if err := check(ModelGame, g.GameID); err != nil {
			return err
		}
	}
	for _, st := range s.Standings {
		if err := check(ModelStanding, fmt.Sprint(st.TeamID)); err != nil {
			return err
		}
	}
	for _, l := range s.TeamGameLogs {
		if err := check(ModelTeamGameLog, fmt.Sprintf("%s:%d", l.GameID, l.TeamID)); err != nil {
			return err
		}
	}
	for _, l := range s.PlayerGameLogs {
		if err := check(ModelPlayerGameLog, fmt.Sprintf("%s:%d", l.GameID, l.PlayerID)); err != nil {
			return err
		}
	}
	for _, st := range s.TeamSeasonStats {
		if err := check(ModelTeamSeasonStats, fmt.Sprintf("%d:%s", st.TeamID, st.SeasonType)); err != nil {
			return err
		}
	}
	for _, st := range s.PlayerSeasonStats {
		if err := check(ModelPlayerSeasonStats, fmt.Sprintf("%d:%s:%s", st.PlayerID, st.StatSeason, st.SeasonType)); err != nil {
			return err
		}
	}
	for _, st := range s.PlayerCareerStats {
		if err := check(ModelPlayerCareerStats, fmt.Sprintf("%d:%s", st.PlayerID, st.SeasonType)); err != nil {
			return err
		}
	}
	return nil
}

// Fixtures serializes the snapshot as an ordered fixture list. The order
// is deterministic: models in dependency order, rows in slice order, so
// the same snapshot always yields byte-identical fixtures.
func (s *Snapshot) Fixtures() ([]Record, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var records []Record
	for _, t := range s.Teams {
		records = append(records, Record{ModelTeam, fmt.Sprint(t.TeamID), t})
	}
	for _, p := range s.Players {
		records = append(records, Record{ModelPlayer, fmt.Sprint(p.PlayerID), p})
	}
	for _, g := range s.Games {
		records = append(records, Record{ModelGame, g.GameID, g})
	}
	for _, st := range s.Standings {
		records = append(records, Record{ModelStanding, fmt.Sprint(st.TeamID), st})
	}
	for _, l := range s.TeamGameLogs {
		records = append(records, Record{ModelTeamGameLog, fmt.Sprintf("%s:%d", l.GameID, l.TeamID), l})
	}
	for _, l := range s.PlayerGameLogs {
		records = append(records, Record{ModelPlayerGameLog, fmt.Sprintf("%s:%d", l.GameID, l.PlayerID), l})
	}
	for _, st := range s.TeamSeasonStats {
		records = append(records, Record{ModelTeamSeasonStats, fmt.Sprintf("%d:%s", st.TeamID, st.SeasonType), st})
	}
	for _, st := range s.PlayerSeasonStats {
		records = append(records, Record{ModelPlayerSeasonStats, fmt.Sprintf("%d:%s:%s", st.PlayerID, st.StatSeason, st.SeasonType), st})
	}
	for _, st := range s.PlayerCareerStats {
		records = append(records, Record{ModelPlayerCareerStats, fmt.Sprintf("%d:%s", st.PlayerID, st.SeasonType), st})
	}
	return records, nil
}

// fixtureFiles maps output file names to a per-model filter.
var fixtureFiles = []struct {
	name  string
	model string
}{
	{"main_team.json", ModelTeam},
	{"main_player.json", ModelPlayer},
	{"main_game.json", ModelGame},
	{"main_standing.json", ModelStanding},
	{"main_teamgamelog.json", ModelTeamGameLog},
	{"main_playergamelog.json", ModelPlayerGameLog},
	{"main_teamseasonstats.json", ModelTeamSeasonStats},
	{"main_playerseasonstats.json", ModelPlayerSeasonStats},
	{"main_playercareerstats.json", ModelPlayerCareerStats},
}

// WriteFixtureFiles writes one JSON fixture file per model into dir,
// creating it if needed.
func WriteFixtureFiles(dir string, s *Snapshot) error {
	records, err := s.Fixtures()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create fixture dir: %w", err)
	}

	byModel := make(map[string][]Record)
	for _, rec := range records {
		byModel[rec.Model] = append(byModel[rec.Model], rec)
	}

	for _, f := range fixtureFiles {
		recs := byModel[f.model]
		if recs == nil {
			recs = []Record{}
		}
		data, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}
