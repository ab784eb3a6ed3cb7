package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/lshi/nbadaily/internal/store"
)

// GameRepository handles game data access
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `game_id, season, game_date, home_team, away_team, broadcaster, inactive_players, dnp_players`

func scanGame(row interface{ Scan(...interface{}) error }) (*store.Game, error) {
	g := &store.Game{}
	var dnp []byte
	err := row.Scan(
		&g.GameID, &g.Season, &g.GameDate, &g.HomeTeamID, &g.AwayTeamID,
		&g.Broadcaster, pq.Array(&g.InactivePlayers), &dnp,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(dnp, &g.DNPPlayers); err != nil {
		return nil, fmt.Errorf("decoding dnp players: %w", err)
	}
	return g, nil
}

// GetByID finds a game by its upstream id.
func (r *GameRepository) GetByID(ctx context.Context, gameID string) (*store.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE game_id = $1
	`

	g, err := scanGame(r.db.DB().QueryRowContext(ctx, query, gameID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}

	return g, nil
}

// GetByDate returns a season's games on one calendar date, ordered by id.
func (r *GameRepository) GetByDate(ctx context.Context, season, date string) ([]*store.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE season = $1 AND game_date = $2
		ORDER BY game_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, date)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	var games []*store.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, g)
	}

	return games, rows.Err()
}
