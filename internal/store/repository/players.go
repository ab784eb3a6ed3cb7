package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lshi/nbadaily/internal/store"
)

const playerColumns = `player_id, season, team_id, first_name, last_name, birth_date, draft_year, draft_round,
	draft_number, position, jersey, height, weight, school, country, season_exp`

// PlayerRepository handles player data access
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func scanPlayer(row interface{ Scan(...interface{}) error }) (*store.Player, error) {
	p := &store.Player{}
	err := row.Scan(
		&p.PlayerID, &p.Season, &p.TeamID, &p.FirstName, &p.LastName, &p.BirthDate,
		&p.DraftYear, &p.DraftRound, &p.DraftNumber, &p.Position, &p.Jersey,
		&p.Height, &p.Weight, &p.School, &p.Country, &p.SeasonExp,
	)
	return p, err
}

func (r *PlayerRepository) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]*store.Player, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	var players []*store.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}

// GetAll returns the season's players ordered by name.
func (r *PlayerRepository) GetAll(ctx context.Context, season string) ([]*store.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE season = $1
		ORDER BY last_name, first_name
	`
	return r.queryPlayers(ctx, query, season)
}

// GetByTeam returns a team's roster ordered by name.
func (r *PlayerRepository) GetByTeam(ctx context.Context, teamID int, season string) ([]*store.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE team_id = $1 AND season = $2
		ORDER BY last_name, first_name
	`
	return r.queryPlayers(ctx, query, teamID, season)
}

// GetByID finds a player by ID within a season.
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int, season string) (*store.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE player_id = $1 AND season = $2
	`

	p, err := scanPlayer(r.db.DB().QueryRowContext(ctx, query, playerID, season))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}

	return p, nil
}
