package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lshi/nbadaily/internal/cache"
	"github.com/lshi/nbadaily/internal/service"
	"github.com/lshi/nbadaily/internal/store"
	"github.com/lshi/nbadaily/internal/store/repository"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db               *store.Database
	standingsService *service.StandingsService
	teamService      *service.TeamService
	playerService    *service.PlayerService
	gameService      *service.GameService
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, c *cache.RedisCache, season string) *Handler {
	return &Handler{
		db:               db,
		standingsService: service.NewStandingsService(db, c, season),
		teamService:      service.NewTeamService(db, season),
		playerService:    service.NewPlayerService(db, season),
		gameService:      service.NewGameService(db, c, season),
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "nbadaily",
	})
}

// GetStandings returns both conferences seeded.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standingsService.GetStandings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch standings", err)
		return
	}
	respondJSON(w, http.StatusOK, standings)
}

// GetTeamList returns the season's teams.
func (h *Handler) GetTeamList(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}
	respondJSON(w, http.StatusOK, teams)
}

// GetTeam returns one team with its roster.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathInt(w, r, "teamID")
	if !ok {
		return
	}
	team, err := h.teamService.GetTeam(r.Context(), teamID)
	if err != nil {
		respondError(w, errStatus(err), "Failed to fetch team", err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// GetTeamSeason returns a team's season stats and game log.
func (h *Handler) GetTeamSeason(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathInt(w, r, "teamID")
	if !ok {
		return
	}
	vars := mux.Vars(r)
	out, err := h.teamService.GetTeamSeason(r.Context(), teamID, vars["season"], vars["seasonType"])
	if err != nil {
		respondError(w, errStatus(err), "Failed to fetch team season", err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// GetPlayerList returns the season's players.
func (h *Handler) GetPlayerList(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.ListPlayers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch players", err)
		return
	}
	respondJSON(w, http.StatusOK, players)
}

// GetPlayer returns one player with derived age.
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, ok := pathInt(w, r, "playerID")
	if !ok {
		return
	}
	player, err := h.playerService.GetPlayer(r.Context(), playerID)
	if err != nil {
		respondError(w, errStatus(err), "Failed to fetch player", err)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

// GetPlayerSeason returns a player's season stats, career totals, and
// game log.
func (h *Handler) GetPlayerSeason(w http.ResponseWriter, r *http.Request) {
	playerID, ok := pathInt(w, r, "playerID")
	if !ok {
		return
	}
	vars := mux.Vars(r)
	out, err := h.playerService.GetPlayerSeason(r.Context(), playerID, vars["season"], vars["seasonType"])
	if err != nil {
		respondError(w, errStatus(err), "Failed to fetch player season", err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// GetGame returns one game with both box scores.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	game, err := h.gameService.GetGame(r.Context(), gameID)
	if err != nil {
		respondError(w, errStatus(err), "Failed to fetch game", err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

// GetScoreboard returns final scores for one date.
func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
		return
	}
	scores, err := h.gameService.GetScoreboard(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch scoreboard", err)
		return
	}
	respondJSON(w, http.StatusOK, scores)
}

// pathInt extracts an integer path variable, writing a 400 on failure.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return v, true
}

// errStatus maps lookup misses to 404 and everything else to 500.
func errStatus(err error) int {
	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[rest] failed to encode response: %v", err)
	}
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("[rest] %s: %v", message, err)
	}
	respondJSON(w, status, map[string]string{"error": message})
}
