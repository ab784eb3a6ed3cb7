package repository

import (
	"context"
	"fmt"

	"github.com/lshi/nbadaily/internal/store"
)

const countingColumns = `minutes, points, offense_reb, defense_reb, rebounds, assists, steals, blocks, turnovers, fouls,
	fg_made, fg_attempt, fg_percent, fg3_made, fg3_attempt, fg3_percent, ft_made, ft_attempt, ft_percent`

// countingDest yields the scan destinations matching countingColumns.
func countingDest(c *store.CountingStats) []interface{} {
	return []interface{}{
		&c.Minutes, &c.Points, &c.OffenseReb, &c.DefenseReb, &c.Rebounds, &c.Assists, &c.Steals,
		&c.Blocks, &c.Turnovers, &c.Fouls,
		&c.FGMade, &c.FGAttempt, &c.FGPercent,
		&c.FG3Made, &c.FG3Attempt, &c.FG3Percent,
		&c.FTMade, &c.FTAttempt, &c.FTPercent,
	}
}

// GameLogRepository handles team and player game log access
type GameLogRepository struct {
	db *store.Database
}

// NewGameLogRepository creates a new game log repository
func NewGameLogRepository(db *store.Database) *GameLogRepository {
	return &GameLogRepository{db: db}
}

const teamLogColumns = `game, team, season, game_date, matchup, result, curr_wins, curr_losses,
	` + countingColumns + `,
	pts_q1, pts_q2, pts_q3, pts_q4,
	pts_ot1, pts_ot2, pts_ot3, pts_ot4, pts_ot5, pts_ot6, pts_ot7, pts_ot8, pts_ot9, pts_ot10`

func (r *GameLogRepository) queryTeamLogs(ctx context.Context, query string, args ...interface{}) ([]*store.TeamGameLog, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying team game logs: %w", err)
	}
	defer rows.Close()

	var logs []*store.TeamGameLog
	for rows.Next() {
		l := &store.TeamGameLog{}
		dest := []interface{}{&l.GameID, &l.TeamID, &l.Season, &l.GameDate, &l.Matchup, &l.Result, &l.CurrWins, &l.CurrLosses}
		dest = append(dest, countingDest(&l.CountingStats)...)
		for q := range l.PtsQtr {
			dest = append(dest, &l.PtsQtr[q])
		}
		for ot := range l.PtsOT {
			dest = append(dest, &l.PtsOT[ot])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning team game log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// TeamLogs returns one team's season logs in game-date order.
func (r *GameLogRepository) TeamLogs(ctx context.Context, teamID int, season string) ([]*store.TeamGameLog, error) {
	query := `
		SELECT ` + teamLogColumns + `
		FROM team_game_logs
		WHERE team = $1 AND season = $2
		ORDER BY game_date, game
	`
	return r.queryTeamLogs(ctx, query, teamID, season)
}

// TeamLogsByGame returns the two team logs of one game.
func (r *GameLogRepository) TeamLogsByGame(ctx context.Context, gameID string) ([]*store.TeamGameLog, error) {
	query := `
		SELECT ` + teamLogColumns + `
		FROM team_game_logs
		WHERE game = $1
		ORDER BY team
	`
	return r.queryTeamLogs(ctx, query, gameID)
}

const playerLogColumns = `game, player, curr_team, season, game_date, matchup, result, player_order,
	` + countingColumns + `, plus_minus`

func (r *GameLogRepository) queryPlayerLogs(ctx context.Context, query string, args ...interface{}) ([]*store.PlayerGameLog, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying player game logs: %w", err)
	}
	defer rows.Close()

	var logs []*store.PlayerGameLog
	for rows.Next() {
		l := &store.PlayerGameLog{}
		dest := []interface{}{&l.GameID, &l.PlayerID, &l.TeamID, &l.Season, &l.GameDate, &l.Matchup, &l.Result, &l.Order}
		dest = append(dest, countingDest(&l.CountingStats)...)
		dest = append(dest, &l.PlusMinus)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning player game log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// PlayerLogs returns one player's season logs in game-date order.
func (r *GameLogRepository) PlayerLogs(ctx context.Context, playerID int, season string) ([]*store.PlayerGameLog, error) {
	query := `
		SELECT ` + playerLogColumns + `
		FROM player_game_logs
		WHERE player = $1 AND season = $2
		ORDER BY game_date, game
	`
	return r.queryPlayerLogs(ctx, query, playerID, season)
}

// PlayerLogsByGame returns a game's player logs for one team in box-score
// display order.
func (r *GameLogRepository) PlayerLogsByGame(ctx context.Context, gameID string, teamID int) ([]*store.PlayerGameLog, error) {
	query := `
		SELECT ` + playerLogColumns + `
		FROM player_game_logs
		WHERE game = $1 AND curr_team = $2
		ORDER BY player_order
	`
	return r.queryPlayerLogs(ctx, query, gameID, teamID)
}
