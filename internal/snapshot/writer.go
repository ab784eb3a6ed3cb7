package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/lshi/nbadaily/internal/store"
)

// Writer persists snapshots. A season is replaced in a single
// transaction: existing rows for the season are deleted, then the new
// rows inserted, so readers never observe a half-written season and
// re-running ingestion is idempotent.
type Writer struct {
	db     *store.Database
	logger *log.Logger
}

func NewWriter(db *store.Database, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	return &Writer{db: db, logger: logger}
}

// deleteOrder lists season-scoped tables child-first so deletes never
// trip a foreign key.
var deleteOrder = []string{
	"player_career_stats",
	"player_season_stats",
	"team_season_stats",
	"player_game_logs",
	"team_game_logs",
	"standings",
	"games",
	"players",
	"teams",
}

// Write validates the snapshot and replaces its season in one
// transaction.
func (w *Writer) Write(ctx context.Context, s *Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	tx, err := w.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range deleteOrder {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE season = $1", table), s.Season); err != nil {
			return fmt.Errorf("failed to clear %s for season %s: %w", table, s.Season, err)
		}
	}

	if err := w.insertAll(ctx, tx, s); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	w.logger.Printf("[snapshot] season %s written: %d teams, %d players, %d games, %d team logs, %d player logs",
		s.Season, len(s.Teams), len(s.Players), len(s.Games), len(s.TeamGameLogs), len(s.PlayerGameLogs))
	return nil
}

const countingInsertColumns = `minutes, points, offense_reb, defense_reb, rebounds, assists, steals, blocks, turnovers, fouls,
		fg_made, fg_attempt, fg_percent, fg3_made, fg3_attempt, fg3_percent, ft_made, ft_attempt, ft_percent`

func countingArgs(c store.CountingStats) []interface{} {
	return []interface{}{
		c.Minutes, c.Points, c.OffenseReb, c.DefenseReb, c.Rebounds, c.Assists, c.Steals,
		c.Blocks, c.Turnovers, c.Fouls,
		c.FGMade, c.FGAttempt, c.FGPercent,
		c.FG3Made, c.FG3Attempt, c.FG3Percent,
		c.FTMade, c.FTAttempt, c.FTPercent,
	}
}

// placeholders renders $from..$to for an insert statement.
func placeholders(from, to int) string {
	out := ""
	for i := from; i <= to; i++ {
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("$%d", i)
	}
	return out
}

func (w *Writer) insertAll(ctx context.Context, tx *sql.Tx, s *Snapshot) error {
	for _, t := range s.Teams {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO teams (team_id, season, team_abb, team_conf, team_div, team_city, team_name, wins, losses, nba_debut, max_year)
			VALUES (`+placeholders(1, 11)+`)`,
			t.TeamID, t.Season, t.Abbreviation, t.Conference, t.Division, t.City, t.Name,
			t.Wins, t.Losses, t.Debut, t.MaxYear)
		if err != nil {
			return fmt.Errorf("failed to insert team %d: %w", t.TeamID, err)
		}
	}

	for _, p := range s.Players {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO players (player_id, season, team_id, first_name, last_name, birth_date, draft_year, draft_round,
				draft_number, position, jersey, height, weight, school, country, season_exp)
			VALUES (`+placeholders(1, 16)+`)`,
			p.PlayerID, p.Season, p.TeamID, p.FirstName, p.LastName, p.BirthDate, p.DraftYear, p.DraftRound,
			p.DraftNumber, p.Position, p.Jersey, p.Height, p.Weight, p.School, p.Country, p.SeasonExp)
		if err != nil {
			return fmt.Errorf("failed to insert player %d: %w", p.PlayerID, err)
		}
	}

	for _, g := range s.Games {
		dnp, err := json.Marshal(g.DNPPlayers)
		if err != nil {
			return fmt.Errorf("failed to marshal dnp players for game %s: %w", g.GameID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO games (game_id, season, game_date, home_team, away_team, broadcaster, inactive_players, dnp_players)
			VALUES (`+placeholders(1, 8)+`)`,
			g.GameID, g.Season, g.GameDate, g.HomeTeamID, g.AwayTeamID, g.Broadcaster,
			pq.Array(g.InactivePlayers), dnp)
		if err != nil {
			return fmt.Errorf("failed to insert game %s: %w", g.GameID, err)
		}
	}

	for _, st := range s.Standings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO standings (team, season, conference, wins, losses, home_record, road_record, win_percent)
			VALUES (`+placeholders(1, 8)+`)`,
			st.TeamID, st.Season, st.Conference, st.Wins, st.Losses, st.HomeRecord, st.RoadRecord, st.WinPercent)
		if err != nil {
			return fmt.Errorf("failed to insert standing for team %d: %w", st.TeamID, err)
		}
	}

	for _, l := range s.TeamGameLogs {
		args := []interface{}{l.GameID, l.TeamID, l.Season, l.GameDate, l.Matchup, l.Result, l.CurrWins, l.CurrLosses}
		args = append(args, countingArgs(l.CountingStats)...)
		args = append(args, l.PtsQtr[0], l.PtsQtr[1], l.PtsQtr[2], l.PtsQtr[3])
		for _, ot := range l.PtsOT {
			args = append(args, ot)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO team_game_logs (game, team, season, game_date, matchup, result, curr_wins, curr_losses,
				`+countingInsertColumns+`,
				pts_q1, pts_q2, pts_q3, pts_q4,
				pts_ot1, pts_ot2, pts_ot3, pts_ot4, pts_ot5, pts_ot6, pts_ot7, pts_ot8, pts_ot9, pts_ot10)
			VALUES (`+placeholders(1, len(args))+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to insert team game log %s/%d: %w", l.GameID, l.TeamID, err)
		}
	}

	for _, l := range s.PlayerGameLogs {
		args := []interface{}{l.GameID, l.PlayerID, l.TeamID, l.Season, l.GameDate, l.Matchup, l.Result, l.Order}
		args = append(args, countingArgs(l.CountingStats)...)
		args = append(args, l.PlusMinus)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO player_game_logs (game, player, curr_team, season, game_date, matchup, result, player_order,
				`+countingInsertColumns+`, plus_minus)
			VALUES (`+placeholders(1, len(args))+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to insert player game log %s/%d: %w", l.GameID, l.PlayerID, err)
		}
	}

	for _, st := range s.TeamSeasonStats {
		args := []interface{}{st.TeamID, st.Season, st.SeasonType, st.Wins, st.Losses, st.WinPercent}
		args = append(args, countingArgs(st.CountingStats)...)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO team_season_stats (team, season, season_type, wins, losses, win_percent,
				`+countingInsertColumns+`)
			VALUES (`+placeholders(1, len(args))+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to insert team season stats %d: %w", st.TeamID, err)
		}
	}

	for _, st := range s.PlayerSeasonStats {
		args := []interface{}{st.PlayerID, st.Season, st.StatSeason, st.SeasonType, st.TeamID, st.GamesPlayed, st.GamesStarted}
		args = append(args, countingArgs(st.CountingStats)...)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO player_season_stats (player, season, stat_season, season_type, curr_team, games_played, games_started,
				`+countingInsertColumns+`)
			VALUES (`+placeholders(1, len(args))+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to insert player season stats %d/%s: %w", st.PlayerID, st.StatSeason, err)
		}
	}

	for _, st := range s.PlayerCareerStats {
		args := []interface{}{st.PlayerID, st.Season, st.SeasonType, st.GamesPlayed, st.GamesStarted}
		args = append(args, countingArgs(st.CountingStats)...)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO player_career_stats (player, season, season_type, games_played, games_started,
				`+countingInsertColumns+`)
			VALUES (`+placeholders(1, len(args))+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to insert player career stats %d: %w", st.PlayerID, err)
		}
	}

	return nil
}
