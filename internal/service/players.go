package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lshi/nbadaily/internal/store"
	"github.com/lshi/nbadaily/internal/store/repository"
)

// PlayerService handles player pages: list, detail, season stats.
type PlayerService struct {
	season     string
	playerRepo *repository.PlayerRepository
	teamRepo   *repository.TeamRepository
	logRepo    *repository.GameLogRepository
	statsRepo  *repository.StatsRepository
	now        func() time.Time
}

// NewPlayerService creates a new player service
func NewPlayerService(db *store.Database, season string) *PlayerService {
	return &PlayerService{
		season:     season,
		playerRepo: repository.NewPlayerRepository(db),
		teamRepo:   repository.NewTeamRepository(db),
		logRepo:    repository.NewGameLogRepository(db),
		statsRepo:  repository.NewStatsRepository(db),
		now:        time.Now,
	}
}

// PlayerEntry is one row of the player list.
type PlayerEntry struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	TeamID   int    `json:"team_id"`
	Jersey   int    `json:"jersey"`
	Position string `json:"position"`
}

// ListPlayers returns the season's players for the index page.
func (s *PlayerService) ListPlayers(ctx context.Context) ([]PlayerEntry, error) {
	players, err := s.playerRepo.GetAll(ctx, s.season)
	if err != nil {
		return nil, fmt.Errorf("fetching players: %w", err)
	}
	entries := make([]PlayerEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, PlayerEntry{
			PlayerID: p.PlayerID,
			Name:     p.FullName(),
			TeamID:   p.TeamID,
			Jersey:   p.Jersey,
			Position: p.Position,
		})
	}
	return entries, nil
}

// PlayerDetail is a player page: bio fields plus the derived age and the
// player's current team.
type PlayerDetail struct {
	Player *store.Player `json:"player"`
	Age    int           `json:"age"`
	Team   *store.Team   `json:"team"`
}

// GetPlayer returns one player with derived age and team.
func (s *PlayerService) GetPlayer(ctx context.Context, playerID int) (*PlayerDetail, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID, s.season)
	if err != nil {
		return nil, fmt.Errorf("fetching player: %w", err)
	}
	team, err := s.teamRepo.GetByID(ctx, player.TeamID, s.season)
	if err != nil {
		return nil, fmt.Errorf("fetching player team: %w", err)
	}
	return &PlayerDetail{
		Player: player,
		Age:    ageFrom(player.BirthDate, s.now()),
		Team:   team,
	}, nil
}

// PlayerSeasonEntry is one career-season aggregate row in display form.
type PlayerSeasonEntry struct {
	Season       string   `json:"season"`
	TeamID       int      `json:"team_id"`
	GamesPlayed  int      `json:"games_played"`
	GamesStarted int      `json:"games_started"`
	StatLine     StatLine `json:"stats"`
}

// PlayerLogEntry is one player game log row in display form.
type PlayerLogEntry struct {
	GameID    string   `json:"game_id"`
	GameDate  string   `json:"game_date"`
	Matchup   string   `json:"matchup"`
	Result    string   `json:"result"`
	StatLine  StatLine `json:"stats"`
	PlusMinus int      `json:"+/-"`
}

// PlayerSeason is the player season page: per-season aggregates, career
// totals, and the snapshot season's game log.
type PlayerSeason struct {
	PlayerID   int                 `json:"player_id"`
	Season     string              `json:"season"`
	SeasonType string              `json:"season_type"`
	Seasons    []PlayerSeasonEntry `json:"seasons"`
	Career     []PlayerSeasonEntry `json:"career"`
	GameLog    []PlayerLogEntry    `json:"game_log"`
}

// GetPlayerSeason returns one player's aggregates and game log for a
// season and season type.
func (s *PlayerService) GetPlayerSeason(ctx context.Context, playerID int, season, seasonType string) (*PlayerSeason, error) {
	if _, err := s.playerRepo.GetByID(ctx, playerID, season); err != nil {
		return nil, fmt.Errorf("fetching player: %w", err)
	}

	seasons, err := s.statsRepo.PlayerSeasons(ctx, playerID, season, seasonType)
	if err != nil {
		return nil, fmt.Errorf("fetching player season stats: %w", err)
	}
	career, err := s.statsRepo.PlayerCareer(ctx, playerID, season, seasonType)
	if err != nil {
		return nil, fmt.Errorf("fetching player career stats: %w", err)
	}
	logs, err := s.logRepo.PlayerLogs(ctx, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("fetching player game log: %w", err)
	}

	out := &PlayerSeason{PlayerID: playerID, Season: season, SeasonType: seasonType}
	for _, st := range seasons {
		out.Seasons = append(out.Seasons, PlayerSeasonEntry{
			Season:       st.StatSeason,
			TeamID:       st.TeamID,
			GamesPlayed:  st.GamesPlayed,
			GamesStarted: st.GamesStarted,
			StatLine:     displayStats(st.CountingStats),
		})
	}
	for _, st := range career {
		out.Career = append(out.Career, PlayerSeasonEntry{
			Season:       "Career",
			GamesPlayed:  st.GamesPlayed,
			GamesStarted: st.GamesStarted,
			StatLine:     displayStats(st.CountingStats),
		})
	}
	for _, l := range logs {
		out.GameLog = append(out.GameLog, PlayerLogEntry{
			GameID:    l.GameID,
			GameDate:  l.GameDate,
			Matchup:   l.Matchup,
			Result:    l.Result,
			StatLine:  displayStats(l.CountingStats),
			PlusMinus: l.PlusMinus,
		})
	}
	return out, nil
}
