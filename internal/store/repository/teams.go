package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lshi/nbadaily/internal/store"
)

const teamColumns = `team_id, season, team_abb, team_conf, team_div, team_city, team_name, wins, losses, nba_debut, max_year`

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

func scanTeam(row interface{ Scan(...interface{}) error }) (*store.Team, error) {
	team := &store.Team{}
	err := row.Scan(
		&team.TeamID, &team.Season, &team.Abbreviation, &team.Conference, &team.Division,
		&team.City, &team.Name, &team.Wins, &team.Losses, &team.Debut, &team.MaxYear,
	)
	return team, err
}

// GetAll returns the season's teams ordered by abbreviation. The sentinel
// traded-player team is excluded; it is not a real franchise.
func (r *TeamRepository) GetAll(ctx context.Context, season string) ([]*store.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE season = $1 AND team_id <> $2
		ORDER BY team_abb
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, store.SentinelTeamID)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetByID finds a team by ID within a season.
func (r *TeamRepository) GetByID(ctx context.Context, teamID int, season string) (*store.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE team_id = $1 AND season = $2
	`

	team, err := scanTeam(r.db.DB().QueryRowContext(ctx, query, teamID, season))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %d: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return team, nil
}
