package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/lshi/nbadaily/internal/assemble"
	"github.com/lshi/nbadaily/internal/normalize"
	"github.com/lshi/nbadaily/internal/snapshot"
	"github.com/lshi/nbadaily/internal/upstream"
)

// StatusPublisher receives run status updates. The Redis stream publisher
// implements it; a nil publisher disables status reporting.
type StatusPublisher interface {
	PublishIngestStatus(ctx context.Context, report interface{}) error
}

// SnapshotWriter persists a finished snapshot.
type SnapshotWriter interface {
	Write(ctx context.Context, s *snapshot.Snapshot) error
}

// Config wires a Runner.
type Config struct {
	Season     string
	Client     *upstream.Client
	Writer     SnapshotWriter
	Publisher  StatusPublisher
	Logger     *log.Logger
	FixtureDir string // when set, fixture files are written here as well
}

// Runner executes one full ingestion run. Batches run sequentially; the
// upstream pacing policy makes concurrent fetching pointless.
type Runner struct {
	cfg    Config
	logger *log.Logger
}

func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run ingests the configured season and writes one snapshot. On any batch
// failure the run aborts and nothing is persisted.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Season:    r.cfg.Season,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	r.publish(ctx, report)

	snap, err := r.buildSnapshot(ctx, report)
	if err == nil {
		if r.cfg.FixtureDir != "" {
			err = snapshot.WriteFixtureFiles(r.cfg.FixtureDir, snap)
		}
		if err == nil && r.cfg.Writer != nil {
			err = r.cfg.Writer.Write(ctx, snap)
		}
	}

	report.FinishedAt = time.Now().UTC()
	if err != nil {
		report.Status = StatusFailed
		report.Error = err.Error()
		r.publish(ctx, report)
		return report, err
	}

	report.Status = StatusOK
	r.publish(ctx, report)
	r.logger.Printf("[ingest] season %s complete in %s", r.cfg.Season, report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
	return report, nil
}

func (r *Runner) publish(ctx context.Context, report *Report) {
	if r.cfg.Publisher == nil {
		return
	}
	if err := r.cfg.Publisher.PublishIngestStatus(ctx, report); err != nil {
		r.logger.Printf("[ingest] failed to publish status: %v", err)
	}
}

// normalizeStorage runs a kind's storage-mode projection, recording the
// batch outcome.
func (r *Runner) normalizeStorage(report *Report, kind upstream.TableKind, t upstream.Table) ([]normalize.Record, error) {
	records, err := normalize.Normalize(kind, normalize.ModeStorage, t)
	report.record(kind, len(records), err)
	if err != nil {
		return nil, &BatchError{Kind: kind, Err: err}
	}
	return records, nil
}

func (r *Runner) buildSnapshot(ctx context.Context, report *Report) (*snapshot.Snapshot, error) {
	season := r.cfg.Season
	client := r.cfg.Client
	asm := assemble.New(season, r.logger)
	snap := &snapshot.Snapshot{Season: season}

	// Teams: id list first, then one summary fetch per team.
	teamList, err := client.TeamList(ctx)
	if err != nil {
		return nil, &BatchError{Kind: upstream.KindTeamList, Err: err}
	}
	teamIDs, err := r.normalizeStorage(report, upstream.KindTeamList, teamList)
	if err != nil {
		return nil, err
	}

	var teamSummaries upstream.Table
	for _, rec := range teamIDs {
		t, err := client.TeamSummary(ctx, rec.Int("TEAM_ID"), season)
		if err != nil {
			return nil, &BatchError{Kind: upstream.KindTeamSummary, Err: err}
		}
		if teamSummaries, err = teamSummaries.Append(t); err != nil {
			return nil, &BatchError{Kind: upstream.KindTeamSummary, Err: err}
		}
	}
	summaries, err := r.normalizeStorage(report, upstream.KindTeamSummary, teamSummaries)
	if err != nil {
		return nil, err
	}
	snap.Teams = asm.Teams(summaries)
	r.logger.Printf("[ingest] assembled %d teams", len(snap.Teams))

	teamSet := make(map[int]bool, len(snap.Teams))
	for _, t := range snap.Teams {
		teamSet[t.TeamID] = true
	}

	// Standings, one table per conference.
	var standings []normalize.Record
	for _, conf := range []string{"East", "West"} {
		t, err := client.ConferenceStandings(ctx, season, conf)
		if err != nil {
			return nil, &BatchError{Kind: upstream.KindStandings, Err: err}
		}
		recs, err := r.normalizeStorage(report, upstream.KindStandings, t)
		if err != nil {
			return nil, err
		}
		standings = append(standings, recs...)
	}
	snap.Standings = asm.Standings(standings)

	// Players: roster list first, then one summary fetch per player.
	playerList, err := client.PlayerList(ctx, season)
	if err != nil {
		return nil, &BatchError{Kind: upstream.KindPlayerList, Err: err}
	}
	playerIDs, err := r.normalizeStorage(report, upstream.KindPlayerList, playerList)
	if err != nil {
		return nil, err
	}

	var playerSummaries upstream.Table
	for _, rec := range playerIDs {
		if rec.Int("ROSTERSTATUS") != 1 {
			continue
		}
		t, err := client.PlayerSummary(ctx, rec.Int("PERSON_ID"))
		if err != nil {
			return nil, &BatchError{Kind: upstream.KindPlayerSummary, Err: err}
		}
		if playerSummaries, err = playerSummaries.Append(t); err != nil {
			return nil, &BatchError{Kind: upstream.KindPlayerSummary, Err: err}
		}
	}
	playerRecs, err := r.normalizeStorage(report, upstream.KindPlayerSummary, playerSummaries)
	if err != nil {
		return nil, err
	}
	snap.Players = asm.Players(playerRecs, teamSet)
	r.logger.Printf("[ingest] assembled %d players", len(snap.Players))

	playerSet := make(map[int]bool, len(snap.Players))
	for _, p := range snap.Players {
		playerSet[p.PlayerID] = true
	}

	// Team game logs, one fetch per team. Game ids fall out of the logs.
	var teamLogTable upstream.Table
	for _, rec := range teamIDs {
		t, err := client.TeamGameLog(ctx, rec.Int("TEAM_ID"), season)
		if err != nil {
			return nil, &BatchError{Kind: upstream.KindTeamGameLog, Err: err}
		}
		if teamLogTable, err = teamLogTable.Append(t); err != nil {
			return nil, &BatchError{Kind: upstream.KindTeamGameLog, Err: err}
		}
	}
	teamLogRecs, err := r.normalizeStorage(report, upstream.KindTeamGameLog, teamLogTable)
	if err != nil {
		return nil, err
	}

	gameIDs := make([]string, 0)
	seenGames := make(map[string]bool)
	for _, rec := range teamLogRecs {
		id := rec.Str("Game_ID")
		if !seenGames[id] {
			seenGames[id] = true
			gameIDs = append(gameIDs, id)
		}
	}
	sort.Strings(gameIDs)

	// Box scores, one fetch pair per game.
	lines := make(map[string][]normalize.Record, len(gameIDs))
	orders := make(map[string]map[int]int, len(gameIDs))
	for _, gameID := range gameIDs {
		tables, err := client.BoxScore(ctx, gameID)
		if err != nil {
			return nil, &BatchError{Kind: upstream.KindBoxScoreSummary, Err: err}
		}

		summaryRecs, err := r.normalizeStorage(report, upstream.KindBoxScoreSummary, tables.GameSummary)
		if err != nil {
			return nil, err
		}
		if len(summaryRecs) != 1 {
			return nil, &BatchError{Kind: upstream.KindBoxScoreSummary,
				Err: fmt.Errorf("game %s: expected one summary row, got %d", gameID, len(summaryRecs))}
		}
		lineRecs, err := r.normalizeStorage(report, upstream.KindLineScore, tables.LineScore)
		if err != nil {
			return nil, err
		}
		inactiveRecs, err := r.normalizeStorage(report, upstream.KindInactivePlayers, tables.InactivePlayers)
		if err != nil {
			return nil, err
		}
		boxRecs, err := r.normalizeStorage(report, upstream.KindBoxScoreTraditional, tables.PlayerStats)
		if err != nil {
			return nil, err
		}

		if _, err := assemble.Winner(gameID, lineRecs); err != nil {
			return nil, err
		}

		snap.Games = append(snap.Games, asm.Game(summaryRecs[0], inactiveRecs, boxRecs, playerSet))
		lines[gameID] = lineRecs
		orders[gameID] = assemble.BoxScoreOrder(boxRecs)
	}
	r.logger.Printf("[ingest] assembled %d games", len(snap.Games))

	snap.TeamGameLogs = asm.TeamGameLogs(teamLogRecs, lines, seenGames)

	// Player game logs, one league-wide fetch.
	playerLogTable, err := client.PlayerGameLog(ctx, season)
	if err != nil {
		return nil, &BatchError{Kind: upstream.KindPlayerGameLog, Err: err}
	}
	playerLogRecs, err := r.normalizeStorage(report, upstream.KindPlayerGameLog, playerLogTable)
	if err != nil {
		return nil, err
	}
	snap.PlayerGameLogs = asm.PlayerGameLogs(playerLogRecs, orders, playerSet, seenGames)

	// Season aggregates.
	teamStatsTable, err := client.TeamSeasonStats(ctx, season)
	if err != nil {
		return nil, &BatchError{Kind: upstream.KindTeamSeasonStats, Err: err}
	}
	teamStatsRecs, err := r.normalizeStorage(report, upstream.KindTeamSeasonStats, teamStatsTable)
	if err != nil {
		return nil, err
	}
	snap.TeamSeasonStats = asm.TeamSeasonStats(teamStatsRecs, "Regular")

	// Career tables, one fetch per player.
	for _, p := range snap.Players {
		tables, err := client.PlayerCareer(ctx, p.PlayerID)
		if err != nil {
			return nil, &BatchError{Kind: upstream.KindPlayerCareerStats, Err: err}
		}
		seasonReg, err := r.normalizeStorage(report, upstream.KindPlayerSeasonStats, tables.SeasonRegular)
		if err != nil {
			return nil, err
		}
		seasonPost, err := r.normalizeStorage(report, upstream.KindPlayerSeasonStats, tables.SeasonPost)
		if err != nil {
			return nil, err
		}
		careerReg, err := r.normalizeStorage(report, upstream.KindPlayerCareerStats, tables.CareerRegular)
		if err != nil {
			return nil, err
		}
		careerPost, err := r.normalizeStorage(report, upstream.KindPlayerCareerStats, tables.CareerPost)
		if err != nil {
			return nil, err
		}
		snap.PlayerSeasonStats = append(snap.PlayerSeasonStats, asm.PlayerSeasonStats(p.PlayerID, seasonReg, "Regular")...)
		snap.PlayerSeasonStats = append(snap.PlayerSeasonStats, asm.PlayerSeasonStats(p.PlayerID, seasonPost, "Post")...)
		snap.PlayerCareerStats = append(snap.PlayerCareerStats, asm.PlayerCareerStats(p.PlayerID, careerReg, "Regular")...)
		snap.PlayerCareerStats = append(snap.PlayerCareerStats, asm.PlayerCareerStats(p.PlayerID, careerPost, "Post")...)
	}

	return snap, nil
}
