package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quiz-player/internal/app"
	"quiz-player/internal/domain"
)

// SessionHandler exposes quiz sessions over plain HTTP for clients that poll
// instead of holding a websocket open.
type SessionHandler struct {
	service *app.QuizService
}

func NewSessionHandler(service *app.QuizService) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) Mount(r chi.Router) {
	r.Post("/", h.create)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.end)
		r.Post("/answers", h.answer)
		r.Get("/result", h.result)
	})
}

type createRequest struct {
	ExerciseID string `json:"exerciseId"`
}

type answerResponse struct {
	Result  domain.AnswerResult `json:"result"`
	Session sessionPayload      `json:"session"`
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
			return
		}
	}
	if strings.TrimSpace(req.ExerciseID) == "" {
		req.ExerciseID = r.URL.Query().Get("exerciseId")
	}

	session, err := h.service.Start(r.Context(), req.ExerciseID, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionPayload(session.Snapshot()))
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionPayload(snap))
}

func (h *SessionHandler) answer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Answer.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid answer payload"})
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), sessionID, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.service.Snapshot(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Result: result, Session: toSessionPayload(snap)})
}

func (h *SessionHandler) result(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Result(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultPayload(summary))
}

func (h *SessionHandler) end(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.End(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultPayload(summary))
}
