package repository

import (
	"context"
	"fmt"

	"github.com/lshi/nbadaily/internal/store"
)

// StandingRepository handles standings data access
type StandingRepository struct {
	db *store.Database
}

// NewStandingRepository creates a new standings repository
func NewStandingRepository(db *store.Database) *StandingRepository {
	return &StandingRepository{db: db}
}

// GetBySeason returns every team's standing for a season. Seeding order
// is applied by the service layer; rows come back grouped by conference.
func (r *StandingRepository) GetBySeason(ctx context.Context, season string) ([]*store.Standing, error) {
	query := `
		SELECT team, season, conference, wins, losses, home_record, road_record, win_percent
		FROM standings
		WHERE season = $1
		ORDER BY conference, team
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	var standings []*store.Standing
	for rows.Next() {
		s := &store.Standing{}
		err := rows.Scan(
			&s.TeamID, &s.Season, &s.Conference, &s.Wins, &s.Losses,
			&s.HomeRecord, &s.RoadRecord, &s.WinPercent,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning standing: %w", err)
		}
		standings = append(standings, s)
	}

	return standings, rows.Err()
}
