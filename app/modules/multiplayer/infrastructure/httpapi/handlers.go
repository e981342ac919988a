// Package multiplayerhttp serves game standings, leaderboards and exports over HTTP.
package multiplayerhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerrender "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/render"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	multiplayerevents "github.com/Black-And-White-Club/royale-bot/pkg/events/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResultsService is the part of the multiplayer service the API reads and drives.
type ResultsService interface {
	GetGameStanding(ctx context.Context, gameID multiplayerdomain.GameID) (*multiplayerdomain.GameStanding, error)
	ComputeResults(ctx context.Context, gameID multiplayerdomain.GameID) (*multiplayerservice.ResultsView, error)
	ReportResults(ctx context.Context, gameID multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error)
	AddLobby(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error)
	RemoveLobby(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error)
}

// Handlers serves the results API.
type Handlers struct {
	service ResultsService
	logger  *slog.Logger
}

// NewHandlers creates the results API handlers.
func NewHandlers(service ResultsService, logger *slog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// RouterConfig protects the routes.
type RouterConfig struct {
	Tokens         jwt.Service
	Limiter        *IPRateLimiter
	AllowedOrigins []string
}

// Routes mounts the game routes. Reads need a viewer token; report passes and
// lobby changes need an operator token.
func Routes(h *Handlers, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	if cfg.Limiter != nil {
		r.Use(RateLimitMiddleware(cfg.Limiter))
	}

	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(cfg.Tokens, jwt.RoleViewer))
			r.Get("/standing", h.GetStanding)
			r.Get("/leaderboard", h.GetLeaderboard)
			r.Get("/export.xlsx", h.ExportResults)
		})
		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(cfg.Tokens, jwt.RoleOperator))
			r.Post("/report", h.TriggerReport)
			r.Put("/lobbies/{lobbyID}", h.AddLobby)
			r.Delete("/lobbies/{lobbyID}", h.RemoveLobby)
		})
	})
	return r
}

// GetStanding returns the standing of a game as JSON, or as a table with format=table.
func (h *Handlers) GetStanding(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}

	standing, err := h.service.GetGameStanding(r.Context(), gameID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "table" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := multiplayerrender.WriteStandingTable(w, *standing); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to render standing table", attr.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, standing)
}

// GetLeaderboard returns the latest leaderboard, or the one of round=N. The
// format parameter selects json (default), text, table or png.
func (h *Handlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}

	round := 0
	if v := r.URL.Query().Get("round"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid round")
			return
		}
		round = n
	}

	view, err := h.service.ComputeResults(r.Context(), gameID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	lb, found := pickLeaderboard(view.Results.Leaderboards(), round)
	if !found {
		writeError(w, http.StatusNotFound, "no leaderboard for this round yet")
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, lb)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(multiplayerrender.LeaderboardText(lb)))
	case "table":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := multiplayerrender.WriteLeaderboardTable(w, lb); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to render leaderboard table", attr.Error(err))
		}
	case "png":
		img, err := multiplayerrender.LeaderboardChart(lb, multiplayerrender.DefaultPalette)
		if err != nil {
			h.writeServiceError(w, r, fmt.Errorf("render chart: %w", err))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

func pickLeaderboard(all []multiplayerdomain.Leaderboard, round int) (multiplayerdomain.Leaderboard, bool) {
	if len(all) == 0 {
		return multiplayerdomain.Leaderboard{}, false
	}
	if round == 0 {
		return all[len(all)-1], true
	}
	for _, lb := range all {
		if lb.RoundNumber == round {
			return lb, true
		}
	}
	return multiplayerdomain.Leaderboard{}, false
}

// ExportResults streams the game's standing and round results as a workbook.
func (h *Handlers) ExportResults(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}

	view, err := h.service.ComputeResults(r.Context(), gameID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	buf, err := multiplayerrender.ExportResults(view.Results)
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("export results: %w", err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"game-%d.xlsx\"", gameID))
	_, _ = buf.WriteTo(w)
}

// TriggerReport runs a report pass; dry_run=true only lists what would be published.
func (h *Handlers) TriggerReport(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	outcome, err := h.service.ReportResults(r.Context(), gameID, multiplayerservice.ReportOptions{DryRun: dryRun})
	if err != nil {
		var pubErr *multiplayerservice.PublishError
		if errors.As(err, &pubErr) {
			writeJSON(w, http.StatusBadGateway, multiplayerevents.ResultsReportFailedPayloadV1{
				GameID:    gameID,
				Reason:    err.Error(),
				Published: pubErr.Published,
			})
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, multiplayerevents.ResultsReportedPayloadV1{
		GameID:    gameID,
		Published: len(outcome.Published),
		Pending:   len(outcome.Pending),
		Concluded: outcome.Concluded,
		Status:    outcome.Status,
		DryRun:    dryRun,
	})
}

// AddLobby attaches a lobby to a game that has not recorded a match yet.
func (h *Handlers) AddLobby(w http.ResponseWriter, r *http.Request) {
	h.changeLobbies(w, r, h.service.AddLobby)
}

// RemoveLobby stops a game from waiting on a lobby. Matches it already
// recorded keep counting.
func (h *Handlers) RemoveLobby(w http.ResponseWriter, r *http.Request) {
	h.changeLobbies(w, r, h.service.RemoveLobby)
}

type lobbyChange func(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error)

func (h *Handlers) changeLobbies(w http.ResponseWriter, r *http.Request, change lobbyChange) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "lobbyID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}
	lobbyID := multiplayerdomain.LobbyID(id)

	lobbies, err := change(r.Context(), gameID, lobbyID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, multiplayerevents.LobbiesChangedPayloadV1{GameID: gameID, LobbyID: lobbyID, Lobbies: lobbies})
}

func parseGameID(w http.ResponseWriter, r *http.Request) (multiplayerdomain.GameID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return 0, false
	}
	return multiplayerdomain.GameID(id), true
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, multiplayerservice.ErrGameNotFound),
		errors.Is(err, multiplayerservice.ErrLobbyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, multiplayerservice.ErrGameNotReportable),
		errors.Is(err, multiplayerservice.ErrLobbyInUse),
		errors.Is(err, multiplayerservice.ErrLobbiesLocked):
		writeError(w, http.StatusConflict, err.Error())
	case multiplayerservice.IsBusinessError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Results API request failed",
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
