package upstream

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const DefaultBaseURL = "https://stats.nba.com/stats"

// Endpoint families for pacing. The provider throttles per endpoint family,
// so the client enforces a minimum inter-request delay within each family.
const (
	familyTeam   = "team"
	familyPlayer = "player"
	familyGame   = "game"
	familyLeague = "league"
)

// TransportError wraps a failed upstream call (timeout, non-success status).
// It is the only retryable error kind; retries use the same fixed pacing
// delay, never adaptive backoff.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues requests to the stats provider and decodes tabular results.
// It owns request pacing and bounded retries; the normalizer owns the column
// contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pacing     time.Duration
	maxRetries int
	logger     *log.Logger

	mu       sync.Mutex
	lastCall map[string]time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithPacing sets the minimum inter-request delay per endpoint family.
func WithPacing(d time.Duration) Option {
	return func(c *Client) { c.pacing = d }
}

// WithMaxRetries bounds transport-error retries per call.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logging sink.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient overrides the HTTP client (useful for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a stats provider client.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		pacing:     600 * time.Millisecond,
		maxRetries: 3,
		logger:     log.New(log.Writer(), "[upstream] ", log.LstdFlags),
		lastCall:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TeamList fetches the league's team list.
func (c *Client) TeamList(ctx context.Context) (Table, error) {
	tables, err := c.fetch(ctx, familyTeam, "commonteamyears", url.Values{
		"LeagueID": {"00"},
	})
	if err != nil {
		return Table{}, err
	}
	return firstTable(tables, "TeamYears")
}

// PlayerList fetches all players for a season, including roster status.
func (c *Client) PlayerList(ctx context.Context, season string) (Table, error) {
	tables, err := c.fetch(ctx, familyPlayer, "commonallplayers", url.Values{
		"LeagueID":            {"00"},
		"Season":              {season},
		"IsOnlyCurrentSeason": {"1"},
	})
	if err != nil {
		return Table{}, err
	}
	return firstTable(tables, "CommonAllPlayers")
}

// ConferenceStandings fetches one conference's standings table for the day
// the season ended. conference is "East" or "West".
func (c *Client) ConferenceStandings(ctx context.Context, season string, conference string) (Table, error) {
	year := seasonEndYear(season)
	tables, err := c.fetch(ctx, familyLeague, "scoreboardv2", url.Values{
		"LeagueID":  {"00"},
		"GameDate":  {fmt.Sprintf("%04d-06-01", year)},
		"DayOffset": {"0"},
	})
	if err != nil {
		return Table{}, err
	}
	return firstTable(tables, conference+"ConfStandingsByDay")
}

// TeamSummary fetches one team's season summary.
func (c *Client) TeamSummary(ctx context.Context, teamID int, season string) (Table, error) {
	tables, err := c.fetch(ctx, familyTeam, "teaminfocommon", url.Values{
		"LeagueID": {"00"},
		"TeamID":   {fmt.Sprint(teamID)},
		"Season":   {season},
	})
	if err != nil {
		return Table{}, err
	}
	return firstTable(tables, "TeamInfoCommon")
}

// PlayerSummary fetches one player's bio summary.
func (c *Client) PlayerSummary(ctx context.Context, playerID int) (Table, error) {
	tables, err := c.fetch(ctx, familyPlayer, "commonplayerinfo", url.Values{
		"PlayerID": {fmt.Sprint(playerID)},
	})
	if err != nil {
		return Table{}, err
	}
	return firstTable(tables, "CommonPlayerInfo")
}

// BoxScoreTables holds the three tables a game's box-score summary provides.
type BoxScoreTables struct {
	GameSummary     Table
	LineScore       Table
	InactivePlayers Table
	PlayerStats     Table
}

// BoxScore fetches a game's summary tables plus the traditional player box
// score. Two upstream calls within the game endpoint family.
func (c *Client) BoxScore(ctx context.Context, gameID string) (BoxScoreTables, error) {
	var out BoxScoreTables

	summary, err := c.fetch(ctx, familyGame, "boxscoresummaryv2", url.Values{
		"GameID": {gameID},
	})
	if err != nil {
		return out, err
	}
	if out.GameSummary, err = firstTable(summary, "GameSummary"); err != nil {
		return out, err
	}
	if out.LineScore, err = firstTable(summary, "LineScore"); err != nil {
		return out, err
	}
	if out.InactivePlayers, err = firstTable(summary, "InactivePlayers"); err != nil {
		return out, err
	}

	traditional, err := c.fetch(ctx, familyGame, "boxscoretraditionalv2", url.Values{
		"GameID":      {gameID},
		"StartPeriod": {"1"},
		"EndPeriod":   {"10"},
		"StartRange":  {"0"},
		"EndRange":    {"0"},
		"RangeType":   {"0"},
	})
	if err != nil {
		return out, err
	}
	if out.PlayerStats, err = firstTable(traditional, "PlayerStats"); err != nil {
		return out, err
	}

	return out, nil
}

// TeamGameLog fetches one team's per-game log for a season.
func (c *Client) TeamGameLog(ctx context.Context, teamID int, season string) (Table, error) {
	tables, err := c.fetch(ctx, familyTeam, "teamgamelog", url.Values{
		"LeagueID":   {"00"},
		"TeamID":     {fmt.Sprint(teamID)},
		"Season":     {season},
		"SeasonType": {"Regular Season"},
	})
	if err != nil {
		return Table{}, err
	}
	return firstTable(tables, "TeamGameLog")
}

// PlayerGameLog fetches the league-wide per-player game log for a season.
func (c *Client) PlayerGameLog(ctx context.Context, season string) (Table, error) {
	tables, err := c.fetch(ctx, familyLeague, "leaguegamelog", url.Values{
		"LeagueID":       {"00"},
		"Season":         {season},
		"SeasonType":     {"Regular Season"},
		"PlayerOrTeam":   {"P"},
		"Sorter":         {"DATE"},
		"Direction":      {"ASC"},
		"Counter":        {"0"},
	})
	if err != nil {
		return Table{}, err
	}
	return firstTable(tables, "LeagueGameLog")
}

// TeamSeasonStats fetches league-wide team season totals.
func (c *Client) TeamSeasonStats(ctx context.Context, season string) (Table, error) {
	tables, err := c.fetch(ctx, familyLeague, "leaguedashteamstats", url.Values{
		"LeagueID":   {"00"},
		"Season":     {season},
		"SeasonType": {"Regular Season"},
		"PerMode":    {"Totals"},
	})
	if err != nil {
		return Table{}, err
	}
	return firstTable(tables, "LeagueDashTeamStats")
}

// CareerTables holds one player's per-season and career totals, split by
// season type.
type CareerTables struct {
	SeasonRegular Table
	SeasonPost    Table
	CareerRegular Table
	CareerPost    Table
}

// PlayerCareer fetches one player's season and career totals.
func (c *Client) PlayerCareer(ctx context.Context, playerID int) (CareerTables, error) {
	var out CareerTables

	tables, err := c.fetch(ctx, familyPlayer, "playercareerstats", url.Values{
		"PlayerID": {fmt.Sprint(playerID)},
		"PerMode":  {"Totals"},
	})
	if err != nil {
		return out, err
	}
	if out.SeasonRegular, err = firstTable(tables, "SeasonTotalsRegularSeason"); err != nil {
		return out, err
	}
	if out.SeasonPost, err = firstTable(tables, "SeasonTotalsPostSeason"); err != nil {
		return out, err
	}
	if out.CareerRegular, err = firstTable(tables, "CareerTotalsRegularSeason"); err != nil {
		return out, err
	}
	if out.CareerPost, err = firstTable(tables, "CareerTotalsPostSeason"); err != nil {
		return out, err
	}
	return out, nil
}

// fetch performs a GET with pacing and bounded retries, returning the
// decoded result sets.
func (c *Client) fetch(ctx context.Context, family, endpoint string, params url.Values) (map[string]Table, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.pace(ctx, family); err != nil {
			return nil, err
		}

		tables, err := c.doFetch(ctx, endpoint, params)
		if err == nil {
			return tables, nil
		}
		lastErr = err

		if _, retryable := err.(*TransportError); !retryable {
			return nil, err
		}
		c.logger.Printf("attempt %d/%d for %s failed: %v", attempt, c.maxRetries, endpoint, err)
	}
	return nil, fmt.Errorf("%s: retries exhausted: %w", endpoint, lastErr)
}

func (c *Client) doFetch(ctx context.Context, endpoint string, params url.Values) (map[string]Table, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", endpoint, err)
	}

	// The provider rejects requests without browser-like headers.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	tables, err := DecodeTables(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return tables, nil
}

// pace blocks until the family's minimum inter-request delay has elapsed.
func (c *Client) pace(ctx context.Context, family string) error {
	c.mu.Lock()
	last, seen := c.lastCall[family]
	now := time.Now()
	wait := time.Duration(0)
	if seen {
		if elapsed := now.Sub(last); elapsed < c.pacing {
			wait = c.pacing - elapsed
		}
	}
	c.lastCall[family] = now.Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func firstTable(tables map[string]Table, name string) (Table, error) {
	t, ok := tables[name]
	if !ok {
		return Table{}, fmt.Errorf("response missing result set %q", name)
	}
	return t, nil
}

// seasonEndYear converts "2018-19" to 2019.
// seasonEndYear maps a season label like "2018-19" to its closing
// calendar year. The two-digit suffix is not added back onto the century
// so "1999-00" resolves to 2000.
func seasonEndYear(season string) int {
	var start, end int
	if _, err := fmt.Sscanf(season, "%d-%d", &start, &end); err != nil {
		return 0
	}
	return start + 1
}
