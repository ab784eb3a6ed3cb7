package repository

import (
	"context"
	"fmt"

	"github.com/lshi/nbadaily/internal/store"
)

// StatsRepository handles season and career aggregate access
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// TeamSeason returns a team's season aggregates for one season type.
func (r *StatsRepository) TeamSeason(ctx context.Context, teamID int, season, seasonType string) ([]*store.TeamSeasonStats, error) {
	query := `
		SELECT team, season, season_type, wins, losses, win_percent, ` + countingColumns + `
		FROM team_season_stats
		WHERE team = $1 AND season = $2 AND season_type = $3
	`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, season, seasonType)
	if err != nil {
		return nil, fmt.Errorf("querying team season stats: %w", err)
	}
	defer rows.Close()

	var stats []*store.TeamSeasonStats
	for rows.Next() {
		s := &store.TeamSeasonStats{}
		dest := []interface{}{&s.TeamID, &s.Season, &s.SeasonType, &s.Wins, &s.Losses, &s.WinPercent}
		dest = append(dest, countingDest(&s.CountingStats)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning team season stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// PlayerSeasons returns a player's per-season aggregates for one season
// type, oldest season first.
func (r *StatsRepository) PlayerSeasons(ctx context.Context, playerID int, season, seasonType string) ([]*store.PlayerSeasonStats, error) {
	query := `
		SELECT player, season, stat_season, season_type, curr_team, games_played, games_started, ` + countingColumns + `
		FROM player_season_stats
		WHERE player = $1 AND season = $2 AND season_type = $3
		ORDER BY stat_season
	`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID, season, seasonType)
	if err != nil {
		return nil, fmt.Errorf("querying player season stats: %w", err)
	}
	defer rows.Close()

	var stats []*store.PlayerSeasonStats
	for rows.Next() {
		s := &store.PlayerSeasonStats{}
		dest := []interface{}{&s.PlayerID, &s.Season, &s.StatSeason, &s.SeasonType, &s.TeamID, &s.GamesPlayed, &s.GamesStarted}
		dest = append(dest, countingDest(&s.CountingStats)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning player season stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// PlayerCareer returns a player's career totals for one season type.
func (r *StatsRepository) PlayerCareer(ctx context.Context, playerID int, season, seasonType string) ([]*store.PlayerCareerStats, error) {
	query := `
		SELECT player, season, season_type, games_played, games_started, ` + countingColumns + `
		FROM player_career_stats
		WHERE player = $1 AND season = $2 AND season_type = $3
	`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID, season, seasonType)
	if err != nil {
		return nil, fmt.Errorf("querying player career stats: %w", err)
	}
	defer rows.Close()

	var stats []*store.PlayerCareerStats
	for rows.Next() {
		s := &store.PlayerCareerStats{}
		dest := []interface{}{&s.PlayerID, &s.Season, &s.SeasonType, &s.GamesPlayed, &s.GamesStarted}
		dest = append(dest, countingDest(&s.CountingStats)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning player career stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
