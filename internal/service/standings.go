package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lshi/nbadaily/internal/cache"
	"github.com/lshi/nbadaily/internal/normalize"
	"github.com/lshi/nbadaily/internal/store"
	"github.com/lshi/nbadaily/internal/store/repository"
)

// StandingsService serves conference standings with seeding applied.
type StandingsService struct {
	season       string
	standingRepo *repository.StandingRepository
	teamRepo     *repository.TeamRepository
	cache        *cache.RedisCache
}

// NewStandingsService creates a new standings service. The cache is
// optional.
func NewStandingsService(db *store.Database, c *cache.RedisCache, season string) *StandingsService {
	return &StandingsService{
		season:       season,
		standingRepo: repository.NewStandingRepository(db),
		teamRepo:     repository.NewTeamRepository(db),
		cache:        c,
	}
}

// Seed is one team's seeded standing in display form.
type Seed struct {
	Seed       int     `json:"seed"`
	TeamID     int     `json:"team_id"`
	TeamAbb    string  `json:"team_abb"`
	TeamName   string  `json:"team_name"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinPercent float64 `json:"win_percent"`
	HomeRecord string  `json:"home_record"`
	RoadRecord string  `json:"road_record"`
}

// ConferenceStandings groups seeded standings by conference.
type ConferenceStandings struct {
	Season string `json:"season"`
	East   []Seed `json:"east"`
	West   []Seed `json:"west"`
}

const standingsTTL = 5 * time.Minute

// GetStandings returns both conferences seeded by win percent, with
// wins, home record, then road record breaking ties.
func (s *StandingsService) GetStandings(ctx context.Context) (*ConferenceStandings, error) {
	cacheKey := "standings:" + s.season
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			out := &ConferenceStandings{}
			if json.Unmarshal([]byte(raw), out) == nil {
				return out, nil
			}
		}
	}

	standings, err := s.standingRepo.GetBySeason(ctx, s.season)
	if err != nil {
		return nil, fmt.Errorf("fetching standings: %w", err)
	}
	teams, err := s.teamRepo.GetAll(ctx, s.season)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	byID := make(map[int]*store.Team, len(teams))
	for _, t := range teams {
		byID[t.TeamID] = t
	}

	out := &ConferenceStandings{Season: s.season}
	for _, st := range standings {
		if st.TeamID == store.SentinelTeamID {
			continue
		}
		team := byID[st.TeamID]
		if team == nil {
			continue
		}
		seed := Seed{
			TeamID:     st.TeamID,
			TeamAbb:    team.Abbreviation,
			TeamName:   team.FullName(),
			Wins:       st.Wins,
			Losses:     st.Losses,
			WinPercent: normalize.Percent(st.WinPercent),
			HomeRecord: st.HomeRecord,
			RoadRecord: st.RoadRecord,
		}
		switch st.Conference {
		case "East":
			out.East = append(out.East, seed)
		case "West":
			out.West = append(out.West, seed)
		}
	}

	seedConference(out.East)
	seedConference(out.West)

	if s.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			_ = s.cache.Set(ctx, cacheKey, raw, standingsTTL)
		}
	}
	return out, nil
}

// seedConference orders one conference and numbers seeds from 1.
func seedConference(seeds []Seed) {
	sort.SliceStable(seeds, func(i, j int) bool {
		a, b := seeds[i], seeds[j]
		if a.WinPercent != b.WinPercent {
			return a.WinPercent > b.WinPercent
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if hw1, hw2 := recordWins(a.HomeRecord), recordWins(b.HomeRecord); hw1 != hw2 {
			return hw1 > hw2
		}
		return recordWins(a.RoadRecord) > recordWins(b.RoadRecord)
	})
	for i := range seeds {
		seeds[i].Seed = i + 1
	}
}
