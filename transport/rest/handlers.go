package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe/transport/view"
)

const maxBodyBytes = 1 << 10

type uGame interface {
	Connect(ctx context.Context, sessionID string) (*entity.GameState, error)
	MakeMove(ctx context.Context, sessionID string, coord entity.Coord) (*entity.GameState, tictactoe.MoveResult, error)
	Reset(ctx context.Context, sessionID string) (*entity.GameState, error)
	EndSession(ctx context.Context, sessionID string) error
}

type moveRequest struct {
	Cell string `json:"cell"`
}

type gameResponse struct {
	Game     *view.Game `json:"game,omitempty"`
	Rejected string     `json:"rejected,omitempty"`
	Error    string     `json:"error,omitempty"`
}

type handlers struct {
	logger     *slog.Logger
	uGame      uGame
	sessionTTL time.Duration
}

// NewHandler - routes the game API and the ping endpoint.
func NewHandler(logger *slog.Logger, uGame uGame, sessionTTL time.Duration) http.Handler {
	h := &handlers{
		logger:     logger.With("component", "rest"),
		uGame:      uGame,
		sessionTTL: sessionTTL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", h.PingHandler)
	mux.HandleFunc("GET /api/game", h.GetGame)
	mux.HandleFunc("POST /api/game/move", h.MakeMove)
	mux.HandleFunc("POST /api/game/reset", h.ResetGame)
	mux.HandleFunc("DELETE /api/session", h.EndSession)

	return mux
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGame")

	sessionID := pkg.SessionFromRequest(w, r, that.sessionTTL, "/")

	game, err := that.uGame.Connect(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to get game", "session", sessionID, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, gameResponse{Error: "failed to get the game"})
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: view.NewGame(game)})
}

func (that *handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "MakeMove")

	sessionID := pkg.SessionFromRequest(w, r, that.sessionTTL, "/")

	var req moveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, gameResponse{Error: "malformed request body"})
		return
	}

	coord, err := entity.ParseCellID(req.Cell)
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, gameResponse{Error: err.Error()})
		return
	}

	game, result, err := that.uGame.MakeMove(r.Context(), sessionID, coord)
	if errors.Is(err, apperror.ErrInvalidCell) {
		that.writeJSON(w, http.StatusBadRequest, gameResponse{Error: err.Error()})
		return
	}

	if err != nil {
		log.Error("failed to make move", "session", sessionID, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, gameResponse{Error: "failed to make move"})
		return
	}

	resp := gameResponse{Game: view.NewGame(game)}
	if !result.Accepted() {
		resp.Rejected = result.String()
	}

	that.writeJSON(w, http.StatusOK, resp)
}

func (that *handlers) ResetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ResetGame")

	sessionID := pkg.SessionFromRequest(w, r, that.sessionTTL, "/")

	game, err := that.uGame.Reset(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to reset game", "session", sessionID, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, gameResponse{Error: "failed to reset the game"})
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: view.NewGame(game)})
}

// EndSession - drops the game and expires the session cookie.
func (that *handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "EndSession")

	cookie, err := r.Cookie(pkg.SessionCookieName)
	if err != nil || cookie.Value == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err = that.uGame.EndSession(r.Context(), cookie.Value); err != nil {
		log.Error("failed to end session", "session", cookie.Value, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, gameResponse{Error: "failed to end the session"})
		return
	}

	http.SetCookie(w, &http.Cookie{Name: pkg.SessionCookieName, Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, resp gameResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
