// Package assemble joins normalized record sets into domain entities. All
// identifiers come from upstream; the assembler never generates ids, it
// only resolves references between tables and validates game invariants.
package assemble

import (
	"log"
	"strconv"

	"github.com/lshi/nbadaily/internal/normalize"
	"github.com/lshi/nbadaily/internal/store"
)

// Assembler builds domain entities for one season snapshot. Referential
// gaps (a row pointing at a player or team the snapshot never ingested)
// are logged and dropped rather than failing the batch.
type Assembler struct {
	season string
	logger *log.Logger
}

func New(season string, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{season: season, logger: logger}
}

// SentinelTeam is the synthetic "multiple teams" franchise assigned to
// players traded mid-season. Its 82-0 record keeps it out of any
// standings or seeding computation.
func (a *Assembler) SentinelTeam() store.Team {
	return store.Team{
		TeamID:       store.SentinelTeamID,
		Season:       a.season,
		Abbreviation: "TOT",
		Wins:         82,
		Losses:       0,
	}
}

// Teams builds one Team per team-summary record, plus the sentinel team.
func (a *Assembler) Teams(summaries []normalize.Record) []store.Team {
	teams := make([]store.Team, 0, len(summaries)+1)
	teams = append(teams, a.SentinelTeam())
	for _, rec := range summaries {
		teams = append(teams, store.Team{
			TeamID:       rec.Int("TEAM_ID"),
			Season:       a.season,
			Abbreviation: rec.Str("TEAM_ABBREVIATION"),
			Conference:   rec.Str("TEAM_CONFERENCE"),
			Division:     rec.Str("TEAM_DIVISION"),
			City:         rec.Str("TEAM_CITY"),
			Name:         rec.Str("TEAM_NAME"),
			Wins:         rec.Int("W"),
			Losses:       rec.Int("L"),
			Debut:        rec.Str("MIN_YEAR"),
			MaxYear:      rec.Str("MAX_YEAR"),
		})
	}
	return teams
}

// Players builds one Player per player-summary record. A player whose
// current team is not part of the snapshot (traded or waived) is assigned
// the sentinel team.
func (a *Assembler) Players(summaries []normalize.Record, teams map[int]bool) []store.Player {
	players := make([]store.Player, 0, len(summaries))
	for _, rec := range summaries {
		teamID := rec.Int("TEAM_ID")
		if !teams[teamID] {
			teamID = store.SentinelTeamID
		}
		players = append(players, store.Player{
			PlayerID:    rec.Int("PERSON_ID"),
			Season:      a.season,
			TeamID:      teamID,
			FirstName:   rec.Str("FIRST_NAME"),
			LastName:    rec.Str("LAST_NAME"),
			BirthDate:   rec.Str("BIRTHDATE"),
			DraftYear:   rec.Str("DRAFT_YEAR"),
			DraftRound:  rec.Str("DRAFT_ROUND"),
			DraftNumber: rec.Str("DRAFT_NUMBER"),
			Position:    rec.Str("POSITION"),
			Jersey:      rec.Int("JERSEY"),
			Height:      rec.Str("HEIGHT"),
			Weight:      rec.Int("WEIGHT"),
			School:      rec.Str("SCHOOL"),
			Country:     rec.Str("COUNTRY"),
			SeasonExp:   rec.Int("SEASON_EXP"),
		})
	}
	return players
}

// Standings builds one Standing per standings record. Win percent stays a
// raw fraction here; display conversion happens at the read boundary.
func (a *Assembler) Standings(records []normalize.Record) []store.Standing {
	standings := make([]store.Standing, 0, len(records))
	for _, rec := range records {
		standings = append(standings, store.Standing{
			TeamID:     rec.Int("TEAM_ID"),
			Season:     a.season,
			Conference: rec.Str("CONFERENCE"),
			Wins:       rec.Int("W"),
			Losses:     rec.Int("L"),
			HomeRecord: rec.Str("HOME_RECORD"),
			RoadRecord: rec.Str("ROAD_RECORD"),
			WinPercent: rec.Float("W_PCT"),
		})
	}
	return standings
}

// Game assembles one Game from its box-score tables. Inactive and
// did-not-play players referencing players outside the snapshot are
// dropped with a warning; the game itself is kept.
func (a *Assembler) Game(summary normalize.Record, inactive, boxRows []normalize.Record, players map[int]bool) store.Game {
	g := store.Game{
		GameID:          summary.Str("GAME_ID"),
		Season:          a.season,
		GameDate:        summary.Str("GAME_DATE_EST"),
		HomeTeamID:      summary.Int("HOME_TEAM_ID"),
		AwayTeamID:      summary.Int("VISITOR_TEAM_ID"),
		Broadcaster:     summary.Str("NATL_TV_BROADCASTER_ABBREVIATION"),
		InactivePlayers: []int64{},
		DNPPlayers:      map[int]string{},
	}

	for _, rec := range inactive {
		id := rec.Int("PLAYER_ID")
		if !players[id] {
			a.logger.Printf("[assemble] game %s: dropping inactive player %d (not in snapshot)", g.GameID, id)
			continue
		}
		g.InactivePlayers = append(g.InactivePlayers, int64(id))
	}

	for _, rec := range boxRows {
		comment := rec.Str("COMMENT")
		if comment == "" {
			continue
		}
		id := rec.Int("PLAYER_ID")
		if !players[id] {
			a.logger.Printf("[assemble] game %s: dropping DNP player %d (not in snapshot)", g.GameID, id)
			continue
		}
		g.DNPPlayers[id] = comment
	}

	return g
}

// BoxScoreOrder maps each player id in a traditional box score to its
// display position, numbered from zero within each team. The upstream
// table lists one team's players then the other's, so a row belonging to
// the second team is offset by the first team's row count.
func BoxScoreOrder(boxRows []normalize.Record) map[int]int {
	order := make(map[int]int, len(boxRows))
	if len(boxRows) == 0 {
		return order
	}
	firstTeam := boxRows[0].Int("TEAM_ID")
	firstCount := 0
	for _, rec := range boxRows {
		if rec.Int("TEAM_ID") == firstTeam {
			firstCount++
		}
	}
	for i, rec := range boxRows {
		if rec.Int("TEAM_ID") == firstTeam {
			order[rec.Int("PLAYER_ID")] = i
		} else {
			order[rec.Int("PLAYER_ID")] = i - firstCount
		}
	}
	return order
}

// linePoints sums a line-score row's period points.
func linePoints(rec normalize.Record) int {
	total := 0
	for q := 1; q <= 4; q++ {
		total += rec.Int("PTS_QTR" + strconv.Itoa(q))
	}
	for ot := 1; ot <= 10; ot++ {
		total += rec.Int("PTS_OT" + strconv.Itoa(ot))
	}
	return total
}

// Winner returns the winning team id of a two-row line score. A tied
// final score violates the one-winner invariant and aborts the snapshot.
func Winner(gameID string, lineScore []normalize.Record) (int, error) {
	if len(lineScore) != 2 {
		return 0, &store.IntegrityError{
			Entity: "game",
			Key:    gameID,
			Reason: "line score must have exactly two rows, got " + strconv.Itoa(len(lineScore)),
		}
	}
	a, b := linePoints(lineScore[0]), linePoints(lineScore[1])
	switch {
	case a > b:
		return lineScore[0].Int("TEAM_ID"), nil
	case b > a:
		return lineScore[1].Int("TEAM_ID"), nil
	default:
		return 0, &store.IntegrityError{
			Entity: "game",
			Key:    gameID,
			Reason: "tied final score " + strconv.Itoa(a) + "-" + strconv.Itoa(b),
		}
	}
}

// countingFromRecord extracts the shared counting-stat block of a
// normalized log or aggregate record.
func countingFromRecord(rec normalize.Record) store.CountingStats {
	return store.CountingStats{
		Minutes:    rec.Int("MIN"),
		Points:     rec.Int("PTS"),
		OffenseReb: rec.Int("OREB"),
		DefenseReb: rec.Int("DREB"),
		Rebounds:   rec.Int("REB"),
		Assists:    rec.Int("AST"),
		Steals:     rec.Int("STL"),
		Blocks:     rec.Int("BLK"),
		Turnovers:  rec.Int("TOV"),
		Fouls:      rec.Int("PF"),
		FGMade:     rec.Int("FGM"),
		FGAttempt:  rec.Int("FGA"),
		FGPercent:  rec.Float("FG_PCT"),
		FG3Made:    rec.Int("FG3M"),
		FG3Attempt: rec.Int("FG3A"),
		FG3Percent: rec.Float("FG3_PCT"),
		FTMade:     rec.Int("FTM"),
		FTAttempt:  rec.Int("FTA"),
		FTPercent:  rec.Float("FT_PCT"),
	}
}

// TeamGameLogs builds one log per team-game-log record, joining the
// game's line score for period points. Logs referencing a game outside
// the snapshot are dropped with a warning.
func (a *Assembler) TeamGameLogs(records []normalize.Record, lines map[string][]normalize.Record, games map[string]bool) []store.TeamGameLog {
	logs := make([]store.TeamGameLog, 0, len(records))
	for _, rec := range records {
		gameID := rec.Str("Game_ID")
		teamID := rec.Int("Team_ID")
		if !games[gameID] {
			a.logger.Printf("[assemble] team %d: dropping game log %s (game not in snapshot)", teamID, gameID)
			continue
		}
		tgl := store.TeamGameLog{
			GameID:        gameID,
			TeamID:        teamID,
			Season:        a.season,
			GameDate:      rec.Str("GAME_DATE"),
			Matchup:       rec.Str("MATCHUP"),
			Result:        rec.Str("WL"),
			CurrWins:      rec.Int("W"),
			CurrLosses:    rec.Int("L"),
			CountingStats: countingFromRecord(rec),
		}
		for _, line := range lines[gameID] {
			if line.Int("TEAM_ID") != teamID {
				continue
			}
			for q := 0; q < 4; q++ {
				tgl.PtsQtr[q] = line.Int("PTS_QTR" + strconv.Itoa(q+1))
			}
			for ot := 0; ot < 10; ot++ {
				tgl.PtsOT[ot] = line.Int("PTS_OT" + strconv.Itoa(ot+1))
			}
		}
		logs = append(logs, tgl)
	}
	return logs
}

// PlayerGameLogs builds one log per league-game-log player row. Order
// comes from the game's box-score display position. Rows referencing a
// player or game outside the snapshot are dropped with a warning.
func (a *Assembler) PlayerGameLogs(records []normalize.Record, orders map[string]map[int]int, players map[int]bool, games map[string]bool) []store.PlayerGameLog {
	logs := make([]store.PlayerGameLog, 0, len(records))
	for _, rec := range records {
		gameID := rec.Str("GAME_ID")
		playerID := rec.Int("PLAYER_ID")
		if !players[playerID] {
			a.logger.Printf("[assemble] game %s: dropping player log %d (player not in snapshot)", gameID, playerID)
			continue
		}
		if !games[gameID] {
			a.logger.Printf("[assemble] player %d: dropping game log %s (game not in snapshot)", playerID, gameID)
			continue
		}
		logs = append(logs, store.PlayerGameLog{
			GameID:        gameID,
			PlayerID:      playerID,
			TeamID:        rec.Int("TEAM_ID"),
			Season:        a.season,
			GameDate:      rec.Str("GAME_DATE"),
			Matchup:       rec.Str("MATCHUP"),
			Result:        rec.Str("WL"),
			Order:         orders[gameID][playerID],
			CountingStats: countingFromRecord(rec),
			PlusMinus:     rec.Int("PLUS_MINUS"),
		})
	}
	return logs
}

// TeamSeasonStats builds one aggregate row per team record.
func (a *Assembler) TeamSeasonStats(records []normalize.Record, seasonType string) []store.TeamSeasonStats {
	stats := make([]store.TeamSeasonStats, 0, len(records))
	for _, rec := range records {
		stats = append(stats, store.TeamSeasonStats{
			TeamID:        rec.Int("TEAM_ID"),
			Season:        a.season,
			SeasonType:    seasonType,
			Wins:          rec.Int("W"),
			Losses:        rec.Int("L"),
			WinPercent:    rec.Float("W_PCT"),
			CountingStats: countingFromRecord(rec),
		})
	}
	return stats
}

// PlayerSeasonStats builds one aggregate row per career-season record of
// one player.
func (a *Assembler) PlayerSeasonStats(playerID int, records []normalize.Record, seasonType string) []store.PlayerSeasonStats {
	stats := make([]store.PlayerSeasonStats, 0, len(records))
	for _, rec := range records {
		stats = append(stats, store.PlayerSeasonStats{
			PlayerID:      playerID,
			Season:        a.season,
			StatSeason:    rec.Str("SEASON_ID"),
			SeasonType:    seasonType,
			TeamID:        rec.Int("TEAM_ID"),
			GamesPlayed:   rec.Int("GP"),
			GamesStarted:  rec.Int("GS"),
			CountingStats: countingFromRecord(rec),
		})
	}
	return stats
}

// PlayerCareerStats builds one career-total row per record.
func (a *Assembler) PlayerCareerStats(playerID int, records []normalize.Record, seasonType string) []store.PlayerCareerStats {
	stats := make([]store.PlayerCareerStats, 0, len(records))
	for _, rec := range records {
		stats = append(stats, store.PlayerCareerStats{
			PlayerID:      playerID,
			Season:        a.season,
			SeasonType:    seasonType,
			GamesPlayed:   rec.Int("GP"),
			GamesStarted:  rec.Int("GS"),
			CountingStats: countingFromRecord(rec),
		})
	}
	return stats
}
