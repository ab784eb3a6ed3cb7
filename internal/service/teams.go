package service

import (
	"context"
	"fmt"

	"github.com/lshi/nbadaily/internal/normalize"
	"github.com/lshi/nbadaily/internal/store"
	"github.com/lshi/nbadaily/internal/store/repository"
)

// TeamService handles team pages: list, detail, season stats.
type TeamService struct {
	season     string
	teamRepo   *repository.TeamRepository
	playerRepo *repository.PlayerRepository
	logRepo    *repository.GameLogRepository
	statsRepo  *repository.StatsRepository
}

// NewTeamService creates a new team service
func NewTeamService(db *store.Database, season string) *TeamService {
	return &TeamService{
		season:     season,
		teamRepo:   repository.NewTeamRepository(db),
		playerRepo: repository.NewPlayerRepository(db),
		logRepo:    repository.NewGameLogRepository(db),
		statsRepo:  repository.NewStatsRepository(db),
	}
}

// TeamEntry is one row of the team list.
type TeamEntry struct {
	TeamID       int    `json:"team_id"`
	Abbreviation string `json:"team_abb"`
	Name         string `json:"team_name"`
	Conference   string `json:"team_conf"`
	Division     string `json:"team_div"`
}

// ListTeams returns the season's teams for the index page.
func (s *TeamService) ListTeams(ctx context.Context) ([]TeamEntry, error) {
	teams, err := s.teamRepo.GetAll(ctx, s.season)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	entries := make([]TeamEntry, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, TeamEntry{
			TeamID:       t.TeamID,
			Abbreviation: t.Abbreviation,
			Name:         t.FullName(),
			Conference:   t.Conference,
			Division:     t.Division,
		})
	}
	return entries, nil
}

// RosterEntry is one player on a team page.
type RosterEntry struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Jersey   int    `json:"jersey"`
	Position string `json:"position"`
	Height   string `json:"height"`
	Weight   int    `json:"weight"`
}

// TeamDetail is a team page: franchise info plus the current roster.
type TeamDetail struct {
	Team   *store.Team   `json:"team"`
	Roster []RosterEntry `json:"roster"`
}

// GetTeam returns one team with its roster.
func (s *TeamService) GetTeam(ctx context.Context, teamID int) (*TeamDetail, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID, s.season)
	if err != nil {
		return nil, fmt.Errorf("fetching team: %w", err)
	}
	players, err := s.playerRepo.GetByTeam(ctx, teamID, s.season)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}

	detail := &TeamDetail{Team: team, Roster: make([]RosterEntry, 0, len(players))}
	for _, p := range players {
		detail.Roster = append(detail.Roster, RosterEntry{
			PlayerID: p.PlayerID,
			Name:     p.FullName(),
			Jersey:   p.Jersey,
			Position: p.Position,
			Height:   p.Height,
			Weight:   p.Weight,
		})
	}
	return detail, nil
}

// TeamLogEntry is one team game log row in display form.
type TeamLogEntry struct {
	GameID   string   `json:"game_id"`
	GameDate string   `json:"game_date"`
	Matchup  string   `json:"matchup"`
	Result   string   `json:"result"`
	Record   string   `json:"record"`
	StatLine StatLine `json:"stats"`
}

// TeamSeasonEntry is a season aggregate row in display form.
type TeamSeasonEntry struct {
	SeasonType string   `json:"season_type"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	WinPercent float64  `json:"win_percent"`
	StatLine   StatLine `json:"stats"`
}

// TeamSeason is the team season page: aggregates plus the full game log.
type TeamSeason struct {
	TeamID     int               `json:"team_id"`
	Season     string            `json:"season"`
	SeasonType string            `json:"season_type"`
	Stats      []TeamSeasonEntry `json:"stats"`
	GameLog    []TeamLogEntry    `json:"game_log"`
}

// GetTeamSeason returns one team's aggregates and game log for a season
// and season type.
func (s *TeamService) GetTeamSeason(ctx context.Context, teamID int, season, seasonType string) (*TeamSeason, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID, season); err != nil {
		return nil, fmt.Errorf("fetching team: %w", err)
	}

	stats, err := s.statsRepo.TeamSeason(ctx, teamID, season, seasonType)
	if err != nil {
		return nil, fmt.Errorf("fetching team season stats: %w", err)
	}
	logs, err := s.logRepo.TeamLogs(ctx, teamID, season)
	if err != nil {
		return nil, fmt.Errorf("fetching team game log: %w", err)
	}

	out := &TeamSeason{TeamID: teamID, Season: season, SeasonType: seasonType}
	for _, st := range stats {
		out.Stats = append(out.Stats, TeamSeasonEntry{
			SeasonType: st.SeasonType,
			Wins:       st.Wins,
			Losses:     st.Losses,
			WinPercent: normalize.Percent(st.WinPercent),
			StatLine:   displayStats(st.CountingStats),
		})
	}
	for _, l := range logs {
		out.GameLog = append(out.GameLog, TeamLogEntry{
			GameID:   l.GameID,
			GameDate: l.GameDate,
			Matchup:  l.Matchup,
			Result:   l.Result,
			Record:   fmt.Sprintf("%d-%d", l.CurrWins, l.CurrLosses),
			StatLine: displayStats(l.CountingStats),
		})
	}
	return out, nil
}
