package domain

import (
	"fmt"
	"math"
)

// Phase is the lifecycle phase of a quiz session.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// CompletionReason records what moved a session into PhaseCompleted.
type CompletionReason string

const (
	ReasonAnswered CompletionReason = "answered"
	ReasonTimeout  CompletionReason = "timeout"
	ReasonAborted  CompletionReason = "aborted"
)

// Exercise is the metadata of a quiz.
type Exercise struct {
	ID             string `json:"id"`
	Subject        string `json:"subject"`
	Chapter        string `json:"chapter"`
	ExerciseNumber string `json:"exerciseNumber"`
	Title          string `json:"title,omitempty"`
	TimerMinutes   int    `json:"timerMinutes,omitempty"`
}

// Heading is the title line shown above the questions.
func (e Exercise) Heading() string {
	if e.Subject == "" && e.Chapter == "" && e.ExerciseNumber == "" {
		return e.Title
	}
	return fmt.Sprintf("%s - Chapter %s - Exercise %s", e.Subject, e.Chapter, e.ExerciseNumber)
}

// TimerSeconds is the countdown length, zero when the exercise is untimed.
func (e Exercise) TimerSeconds() int {
	if e.TimerMinutes <= 0 {
		return 0
	}
	return e.TimerMinutes * 60
}

// Question is one multiple-choice prompt.
type Question struct {
	Text          string    `json:"text"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Options       Options   `json:"options"`
	CorrectAnswer AnswerKey `json:"correctAnswer"`
}

// IsCorrect compares key to the correct answer without any type coercion.
func (q Question) IsCorrect(key AnswerKey) bool {
	return !key.IsZero() && key == q.CorrectAnswer
}

// Quiz is an exercise with its ordered questions.
type Quiz struct {
	Exercise  Exercise   `json:"exercise"`
	Questions []Question `json:"questions"`
}

// AnswerResult is the outcome of a single submission.
type AnswerResult struct {
	QuestionIndex int  `json:"questionIndex"`
	Correct       bool `json:"correct"`
	Score         int  `json:"score"`
	Completed     bool `json:"completed"`
}

// ResultSummary is produced once a session completes.
type ResultSummary struct {
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Answered       int              `json:"answered"`
	Percentage     float64          `json:"percentage"`
	Reason         CompletionReason `json:"reason"`
}

// Display renders the summary the way the results screen shows it.
func (r ResultSummary) Display() string {
	return fmt.Sprintf("%d/%d (%.1f%%)", r.Score, r.TotalQuestions, r.Percentage)
}

// Percentage returns score/total as a percentage rounded to one decimal.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*1000) / 10
}

// QuestionView is what a presenter receives when the current question changes.
type QuestionView struct {
	Heading  string   `json:"heading"`
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Question Question `json:"question"`
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	SessionID        string           `json:"sessionId"`
	ExerciseID       string           `json:"exerciseId"`
	Heading          string           `json:"heading"`
	Phase            Phase            `json:"phase"`
	Index            int              `json:"index"`
	Total            int              `json:"total"`
	Score            int              `json:"score"`
	Answered         int              `json:"answered"`
	Timed            bool             `json:"timed"`
	RemainingSeconds int              `json:"remainingSeconds"`
	Reason           CompletionReason `json:"reason,omitempty"`
	Current          *Question        `json:"current,omitempty"`
}
