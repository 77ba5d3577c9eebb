package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"turtlesoup/internal/model"
	"turtlesoup/internal/service"
	"turtlesoup/internal/transport/rest/middleware"
)

// GameHandler handles the start, ask and status endpoints
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// StartRequest is the request body for starting or joining a game
type StartRequest struct {
	RoomID string `json:"roomId"`
}

// startResponse carries history only when an existing game was joined
type startResponse struct {
	Puzzle    string         `json:"puzzle"`
	IsNewGame bool           `json:"isNewGame"`
	SessionID string         `json:"sessionId"`
	History   *[]model.Entry `json:"history,omitempty"`
}

// Start handles POST /v1/game/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.gameSvc.Start(r.Context(), req.RoomID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := startResponse{
		Puzzle:    res.Puzzle,
		IsNewGame: res.IsNewGame,
		SessionID: res.SessionID,
	}
	if !res.IsNewGame {
		history := res.History
		if history == nil {
			history = []model.Entry{}
		}
		resp.History = &history
	}
	writeJSON(w, http.StatusOK, resp)
}

// AskRequest is the request body for asking a question
type AskRequest struct {
	RoomID   string `json:"roomId"`
	Question string `json:"question"`
}

// Ask handles POST /v1/game/ask
func (h *GameHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.gameSvc.Ask(r.Context(), req.RoomID, req.Question)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Status handles GET /v1/game/status?roomId=
func (h *GameHandler) Status(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.gameSvc.Status(r.Context(), roomID))
}

// Health handles GET /health
func (h *GameHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"rooms":  h.gameSvc.RoomCount(),
	})
}

// decodeBody reads an optional JSON body into dst. A missing body leaves dst
// zero so the service reports the missing fields itself.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// statusFor maps service errors to HTTP status codes and client messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrMissingRoomID):
		return http.StatusBadRequest, model.ErrMissingRoomID.Error()
	case errors.Is(err, model.ErrGameNotStarted), errors.Is(err, model.ErrRoomNotFound):
		return http.StatusConflict, model.ErrGameNotStarted.Error()
	case errors.Is(err, model.ErrOracleUnavailable):
		return http.StatusBadGateway, model.ErrOracleUnavailable.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("unhandled service error")
	}
	writeError(w, status, message)
}
