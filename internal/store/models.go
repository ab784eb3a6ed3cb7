package store

import "fmt"

// SeasonType distinguishes regular-season from postseason aggregates.
const (
	SeasonTypeRegular = "Regular"
	SeasonTypePost    = "Post"
)

// IntegrityError reports a snapshot that violates a domain invariant, for
// example a tied final score or a duplicate primary key. It always aborts
// the snapshot rather than persisting a partial state.
type IntegrityError struct {
	Entity string
	Key    string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation on %s %s: %s", e.Entity, e.Key, e.Reason)
}

// SentinelTeamID marks "multiple teams / traded mid-season" for players who
// changed team during the season. The sentinel row carries no conference or
// standings semantics and is excluded from seeding computations.
const SentinelTeamID = 0

// Team is one franchise within a season snapshot. Identifiers are assigned
// by the upstream provider, never generated locally.
type Team struct {
	TeamID       int    `json:"team_id"`
	Season       string `json:"season"`
	Abbreviation string `json:"team_abb"`
	Conference   string `json:"team_conf"`
	Division     string `json:"team_div"`
	City         string `json:"team_city"`
	Name         string `json:"team_name"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Debut        string `json:"nba_debut"`
	MaxYear      string `json:"max_year"`
}

// FullName returns "City Name" for display.
func (t *Team) FullName() string {
	return fmt.Sprintf("%s %s", t.City, t.Name)
}

// Player is one rostered player within a season snapshot. BirthDate is a
// calendar date string; age is always derived from it at read time and is
// never persisted, since a persisted age goes stale.
type Player struct {
	PlayerID    int    `json:"player_id"`
	Season      string `json:"season"`
	TeamID      int    `json:"team_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	BirthDate   string `json:"birth_date"`
	DraftYear   string `json:"draft_year"`
	DraftRound  string `json:"draft_round"`
	DraftNumber string `json:"draft_number"`
	Position    string `json:"position"`
	Jersey      int    `json:"jersey"`
	Height      string `json:"height"`
	Weight      int    `json:"weight"`
	School      string `json:"school"`
	Country     string `json:"country"`
	SeasonExp   int    `json:"season_exp"`
}

// FullName returns "First Last" for display.
func (p *Player) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// Game is one completed game. DNPPlayers maps player id to the listed
// reason string; InactivePlayers holds ids of players inactive for the
// game. Both are filtered against the ingested player set.
type Game struct {
	GameID          string         `json:"game_id"`
	Season          string         `json:"season"`
	GameDate        string         `json:"game_date"`
	HomeTeamID      int            `json:"home_team"`
	AwayTeamID      int            `json:"away_team"`
	Broadcaster     string         `json:"broadcaster"`
	InactivePlayers []int64        `json:"inactive_players"`
	DNPPlayers      map[int]string `json:"dnp_players"`
}

// CountingStats holds the per-game or per-season counting stats shared by
// every log and aggregate entity. Percentages are stored as fractions in
// [0,1]; the display conversion happens once, in the normalizer.
type CountingStats struct {
	Minutes    int     `json:"minutes"`
	Points     int     `json:"points"`
	OffenseReb int     `json:"offense_reb"`
	DefenseReb int     `json:"defense_reb"`
	Rebounds   int     `json:"rebounds"`
	Assists    int     `json:"assists"`
	Steals     int     `json:"steals"`
	Blocks     int     `json:"blocks"`
	Turnovers  int     `json:"turnovers"`
	Fouls      int     `json:"fouls"`
	FGMade     int     `json:"fg_made"`
	FGAttempt  int     `json:"fg_attempt"`
	FGPercent  float64 `json:"fg_percent"`
	FG3Made    int     `json:"fg3_made"`
	FG3Attempt int     `json:"fg3_attempt"`
	FG3Percent float64 `json:"fg3_percent"`
	FTMade     int     `json:"ft_made"`
	FTAttempt  int     `json:"ft_attempt"`
	FTPercent  float64 `json:"ft_percent"`
}

// TeamGameLog is one team's side of a game: exactly two rows exist per
// game, with opposite results, and their point totals decide the winner.
type TeamGameLog struct {
	GameID     string `json:"game"`
	TeamID     int    `json:"team"`
	Season     string `json:"season"`
	GameDate   string `json:"game_date"`
	Matchup    string `json:"matchup"`
	Result     string `json:"result"`
	CurrWins   int    `json:"curr_wins"`
	CurrLosses int    `json:"curr_losses"`
	CountingStats
	PtsQtr [4]int  `json:"pts_qtr"`
	PtsOT  [10]int `json:"pts_ot"`
}

// PlayerGameLog is one player's appearance in a game. Order preserves the
// player's position within the upstream box-score table, numbered from 0
// per team, so rendering can reproduce the upstream display order. The
// (GameID, TeamID) pair references the owning TeamGameLog.
type PlayerGameLog struct {
	GameID   string `json:"game"`
	PlayerID int    `json:"player"`
	TeamID   int    `json:"curr_team"`
	Season   string `json:"season"`
	GameDate string `json:"game_date"`
	Matchup  string `json:"matchup"`
	Result   string `json:"result"`
	Order    int    `json:"order"`
	CountingStats
	PlusMinus int `json:"plus_minus"`
}

// Standing is one team's season record, one row per team per snapshot.
// Conference seeding ranks by win percent, then wins, then home record,
// then road record.
type Standing struct {
	TeamID     int     `json:"team"`
	Season     string  `json:"season"`
	Conference string  `json:"conference"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	HomeRecord string  `json:"home_record"`
	RoadRecord string  `json:"road_record"`
	WinPercent float64 `json:"win_percent"`
}

// TeamSeasonStats aggregates one team's season totals.
type TeamSeasonStats struct {
	TeamID     int     `json:"team"`
	Season     string  `json:"season"`
	SeasonType string  `json:"season_type"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinPercent float64 `json:"win_percent"`
	CountingStats
}

// PlayerSeasonStats aggregates one player's totals for one season of
// their career. StatSeason is the season the row describes; Season is the
// snapshot that ingested it.
type PlayerSeasonStats struct {
	PlayerID     int    `json:"player"`
	Season       string `json:"season"`
	StatSeason   string `json:"stat_season"`
	SeasonType   string `json:"season_type"`
	TeamID       int    `json:"curr_team"`
	GamesPlayed  int    `json:"games_played"`
	GamesStarted int    `json:"games_started"`
	CountingStats
}

// PlayerCareerStats aggregates one player's career totals per season type.
type PlayerCareerStats struct {
	PlayerID     int    `json:"player"`
	Season       string `json:"season"`
	SeasonType   string `json:"season_type"`
	GamesPlayed  int    `json:"games_played"`
	GamesStarted int    `json:"games_started"`
	CountingStats
}
