package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"quiz-player/internal/domain"
)

// questionPayload is a question as sent to clients; the correct answer is withheld.
type questionPayload struct {
	Heading  string          `json:"heading"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Text     string          `json:"text"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Options  []domain.Choice `json:"options"`
}

type timerPayload struct {
	RemainingSeconds int    `json:"remainingSeconds"`
	Display          string `json:"display"`
}

type resultPayload struct {
	domain.ResultSummary
	Display string `json:"display"`
}

type sessionPayload struct {
	SessionID        string                  `json:"sessionId"`
	ExerciseID       string                  `json:"exerciseId"`
	Heading          string                  `json:"heading"`
	Phase            domain.Phase            `json:"phase"`
	Index            int                     `json:"index"`
	Total            int                     `json:"total"`
	Score            int                     `json:"score"`
	Answered         int                     `json:"answered"`
	Timed            bool                    `json:"timed"`
	RemainingSeconds int                     `json:"remainingSeconds,omitempty"`
	Reason           domain.CompletionReason `json:"reason,omitempty"`
	Current          *questionPayload        `json:"current,omitempty"`
}

type answerRequest struct {
	Answer domain.AnswerKey `json:"answer"`
}

type errorPayload struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func toQuestionPayload(view domain.QuestionView) questionPayload {
	return questionPayload{
		Heading:  view.Heading,
		Index:    view.Index,
		Total:    view.Total,
		Text:     view.Question.Text,
		ImageURL: view.Question.ImageURL,
		Options:  view.Question.Options.Choices(),
	}
}

func toSessionPayload(snap domain.Snapshot) sessionPayload {
	out := sessionPayload{
		SessionID:        snap.SessionID,
		ExerciseID:       snap.ExerciseID,
		Heading:          snap.Heading,
		Phase:            snap.Phase,
		Index:            snap.Index,
		Total:            snap.Total,
		Score:            snap.Score,
		Answered:         snap.Answered,
		Timed:            snap.Timed,
		RemainingSeconds: snap.RemainingSeconds,
		Reason:           snap.Reason,
	}
	if snap.Current != nil {
		q := toQuestionPayload(domain.QuestionView{
			Heading:  snap.Heading,
			Index:    snap.Index,
			Total:    snap.Total,
			Question: *snap.Current,
		})
		out.Current = &q
	}
	return out
}

func toResultPayload(summary domain.ResultSummary) resultPayload {
	return resultPayload{ResultSummary: summary, Display: summary.Display()}
}

// clock renders seconds as m:ss.
func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// userMessage collapses errors into the text shown to players. All load
// failures read the same regardless of cause.
func userMessage(err error) errorPayload {
	switch {
	case errors.Is(err, domain.ErrMissingIdentifier):
		return errorPayload{Message: "No exercise ID provided!"}
	case errors.Is(err, domain.ErrLoadFailed):
		return errorPayload{Message: "Failed to load quiz data", Detail: err.Error()}
	default:
		return errorPayload{Message: err.Error()}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLoadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), userMessage(err))
}
