package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lshi/nbadaily/internal/cache"
	"github.com/lshi/nbadaily/internal/store"
	"github.com/lshi/nbadaily/internal/store/repository"
)

// GameService handles game pages: box scores and the daily scoreboard.
type GameService struct {
	season     string
	gameRepo   *repository.GameRepository
	teamRepo   *repository.TeamRepository
	playerRepo *repository.PlayerRepository
	logRepo    *repository.GameLogRepository
	cache      *cache.RedisCache
}

// NewGameService creates a new game service. The cache is optional.
func NewGameService(db *store.Database, c *cache.RedisCache, season string) *GameService {
	return &GameService{
		season:     season,
		gameRepo:   repository.NewGameRepository(db),
		teamRepo:   repository.NewTeamRepository(db),
		playerRepo: repository.NewPlayerRepository(db),
		logRepo:    repository.NewGameLogRepository(db),
		cache:      c,
	}
}

// BoxPlayerEntry is one player row on a game page, in box-score order.
type BoxPlayerEntry struct {
	PlayerID  int      `json:"player_id"`
	Name      string   `json:"name"`
	StatLine  StatLine `json:"stats"`
	PlusMinus int      `json:"+/-"`
}

// TeamBox is one side of a game page: the team's line with period points
// and its player rows in box-score display order.
type TeamBox struct {
	TeamID   int              `json:"team_id"`
	TeamAbb  string           `json:"team_abb"`
	Result   string           `json:"result"`
	Points   int              `json:"points"`
	PtsQtr   [4]int           `json:"pts_qtr"`
	PtsOT    []int            `json:"pts_ot"`
	StatLine StatLine         `json:"stats"`
	Players  []BoxPlayerEntry `json:"players"`
}

// GameDetail is a full game page.
type GameDetail struct {
	Game      *store.Game       `json:"game"`
	Overtimes int               `json:"overtimes"`
	Home      *TeamBox          `json:"home"`
	Away      *TeamBox          `json:"away"`
	DNP       map[string]string `json:"dnp_players"`
	Inactive  []PlayerEntry     `json:"inactive_players"`
}

// GetGame returns one game with both box scores.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*GameDetail, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching game: %w", err)
	}

	teamLogs, err := s.logRepo.TeamLogsByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching team logs: %w", err)
	}

	detail := &GameDetail{Game: game, DNP: map[string]string{}}
	for _, l := range teamLogs {
		box, err := s.teamBox(ctx, game, l)
		if err != nil {
			return nil, err
		}
		if l.TeamID == game.HomeTeamID {
			detail.Home = box
		} else {
			detail.Away = box
		}
		if ot := overtimes(l.PtsOT); ot > detail.Overtimes {
			detail.Overtimes = ot
		}
	}

	for playerID, reason := range game.DNPPlayers {
		p, err := s.playerRepo.GetByID(ctx, playerID, game.Season)
		if err != nil {
			continue
		}
		detail.DNP[p.FullName()] = reason
	}
	for _, playerID := range game.InactivePlayers {
		p, err := s.playerRepo.GetByID(ctx, int(playerID), game.Season)
		if err != nil {
			continue
		}
		detail.Inactive = append(detail.Inactive, PlayerEntry{
			PlayerID: p.PlayerID,
			Name:     p.FullName(),
			TeamID:   p.TeamID,
			Jersey:   p.Jersey,
			Position: p.Position,
		})
	}

	return detail, nil
}

func (s *GameService) teamBox(ctx context.Context, game *store.Game, l *store.TeamGameLog) (*TeamBox, error) {
	team, err := s.teamRepo.GetByID(ctx, l.TeamID, game.Season)
	if err != nil {
		return nil, fmt.Errorf("fetching box team: %w", err)
	}
	playerLogs, err := s.logRepo.PlayerLogsByGame(ctx, game.GameID, l.TeamID)
	if err != nil {
		return nil, fmt.Errorf("fetching box players: %w", err)
	}

	box := &TeamBox{
		TeamID:   l.TeamID,
		TeamAbb:  team.Abbreviation,
		Result:   l.Result,
		Points:   l.Points,
		PtsQtr:   l.PtsQtr,
		PtsOT:    l.PtsOT[:overtimes(l.PtsOT)],
		StatLine: displayStats(l.CountingStats),
	}
	for _, pl := range playerLogs {
		entry := BoxPlayerEntry{
			PlayerID:  pl.PlayerID,
			StatLine:  displayStats(pl.CountingStats),
			PlusMinus: pl.PlusMinus,
		}
		if p, err := s.playerRepo.GetByID(ctx, pl.PlayerID, game.Season); err == nil {
			entry.Name = p.FullName()
		}
		box.Players = append(box.Players, entry)
	}
	return box, nil
}

// overtimes counts the played overtime periods on one line.
func overtimes(ptsOT [10]int) int {
	count := 0
	for i, pts := range ptsOT {
		if pts > 0 {
			count = i + 1
		}
	}
	return count
}

// Score is one scoreboard entry.
type Score struct {
	GameID    string `json:"game_id"`
	HomeAbb   string `json:"home_abb"`
	AwayAbb   string `json:"away_abb"`
	HomePts   int    `json:"home_pts"`
	AwayPts   int    `json:"away_pts"`
	Overtimes int    `json:"overtimes"`
}

const scoreboardTTL = time.Minute

// GetScoreboard returns final scores for one calendar date.
func (s *GameService) GetScoreboard(ctx context.Context, date string) ([]Score, error) {
	cacheKey := "scoreboard:" + s.season + ":" + date
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var out []Score
			if json.Unmarshal([]byte(raw), &out) == nil {
				return out, nil
			}
		}
	}

	games, err := s.gameRepo.GetByDate(ctx, s.season, date)
	if err != nil {
		return nil, fmt.Errorf("fetching games: %w", err)
	}

	scores := make([]Score, 0, len(games))
	for _, g := range games {
		teamLogs, err := s.logRepo.TeamLogsByGame(ctx, g.GameID)
		if err != nil {
			return nil, fmt.Errorf("fetching score logs: %w", err)
		}
		score := Score{GameID: g.GameID}
		for _, l := range teamLogs {
			team, err := s.teamRepo.GetByID(ctx, l.TeamID, g.Season)
			if err != nil {
				return nil, fmt.Errorf("fetching score team: %w", err)
			}
			if l.TeamID == g.HomeTeamID {
				score.HomeAbb = team.Abbreviation
				score.HomePts = l.Points
			} else {
				score.AwayAbb = team.Abbreviation
				score.AwayPts = l.Points
			}
			if ot := overtimes(l.PtsOT); ot > score.Overtimes {
				score.Overtimes = ot
			}
		}
		scores = append(scores, score)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(scores); err == nil {
			_ = s.cache.Set(ctx, cacheKey, raw, scoreboardTTL)
		}
	}
	return scores, nil
}
