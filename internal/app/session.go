package app

import (
	"fmt"
	"sync"
	"time"

	"quiz-player/internal/domain"
)

// Presenter renders session events. Methods are called in event order while
// the session is locked, so implementations must not call back into it.
type Presenter interface {
	QuestionChanged(view domain.QuestionView)
	SessionCompleted(summary domain.ResultSummary)
}

// TimerPresenter is implemented by presenters that show the countdown.
type TimerPresenter interface {
	TimeRemaining(seconds int)
}

type nopPresenter struct{}

func (nopPresenter) QuestionChanged(domain.QuestionView)   {}
func (nopPresenter) SessionCompleted(domain.ResultSummary) {}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPresenter sets the presenter receiving session events.
func WithPresenter(p Presenter) SessionOption {
	return func(s *Session) {
		if p != nil {
			s.presenter = p
		}
	}
}

// WithTicker drives the countdown from tickers built by newTicker. A nil
// newTicker leaves ticking to the caller through Tick.
func WithTicker(newTicker TickerFunc, every time.Duration) SessionOption {
	return func(s *Session) {
		s.newTicker = newTicker
		if every > 0 {
			s.tickEvery = every
		}
	}
}

// Session is one run-through of an exercise: Loading, then InProgress, then
// Completed. It is safe for concurrent use by an answer source and its own
// countdown.
type Session struct {
	id        string
	presenter Presenter
	newTicker TickerFunc
	tickEvery time.Duration

	mu        sync.Mutex
	phase     domain.Phase
	quiz      domain.Quiz
	index     int
	score     int
	answered  int
	timed     bool
	remaining int
	countdown *Countdown
	reason    domain.CompletionReason
	done      chan struct{}
}

// NewSession returns a session in the Loading phase. Without WithTicker the
// session uses real one-second tickers.
func NewSession(id string, opts ...SessionOption) *Session {
	s := &Session{
		id:        id,
		presenter: nopPresenter{},
		newTicker: NewRealTicker,
		tickEvery: time.Second,
		phase:     domain.PhaseLoading,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

// Done is closed when the session reaches Completed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Initialize starts the session at question 0 with score 0 and, for timed
// exercises, starts the countdown.
func (s *Session) Initialize(quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseLoading {
		return fmt.Errorf("initialize in phase %s: %w", s.phase, domain.ErrInvalidState)
	}
	if len(quiz.Questions) == 0 {
		return domain.ErrNoQuestions
	}

	s.quiz = quiz
	s.index = 0
	s.score = 0
	s.answered = 0
	s.phase = domain.PhaseInProgress

	if seconds := quiz.Exercise.TimerSeconds(); seconds > 0 {
		s.timed = true
		s.remaining = seconds
		if s.newTicker != nil {
			s.countdown = StartCountdown(s.newTicker(s.tickEvery), s.onTick)
		}
		s.emitRemainingLocked()
	}

	s.emitQuestionLocked()
	return nil
}

// SubmitAnswer scores key against the current question and advances.
func (s *Session) SubmitAnswer(key domain.AnswerKey) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseInProgress {
		return domain.AnswerResult{}, fmt.Errorf("submit answer in phase %s: %w", s.phase, domain.ErrInvalidState)
	}

	question := s.quiz.Questions[s.index]
	result := domain.AnswerResult{QuestionIndex: s.index}
	if question.IsCorrect(key) {
		s.score++
		result.Correct = true
	}
	s.answered++
	s.index++

	if s.index == len(s.quiz.Questions) {
		s.completeLocked(domain.ReasonAnswered)
	} else {
		s.emitQuestionLocked()
	}

	result.Score = s.score
	result.Completed = s.phase == domain.PhaseCompleted
	return result, nil
}

// Tick consumes one second of the countdown. Reaching zero completes the
// session immediately; unanswered questions stay unscored.
func (s *Session) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseInProgress || !s.timed || s.remaining <= 0 {
		return fmt.Errorf("tick in phase %s: %w", s.phase, domain.ErrInvalidState)
	}

	s.remaining--
	s.emitRemainingLocked()
	if s.remaining == 0 {
		s.completeLocked(domain.ReasonTimeout)
	}
	return nil
}

// Abort ends an unfinished session. Completed sessions are left untouched.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case domain.PhaseCompleted:
		return
	case domain.PhaseLoading:
		s.phase = domain.PhaseCompleted
		s.reason = domain.ReasonAborted
		close(s.done)
	default:
		s.completeLocked(domain.ReasonAborted)
	}
}

// Finalize returns the result summary of a completed session.
func (s *Session) Finalize() (domain.ResultSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseCompleted {
		return domain.ResultSummary{}, fmt.Errorf("finalize in phase %s: %w", s.phase, domain.ErrInvalidState)
	}
	return s.summaryLocked(), nil
}

// Snapshot returns a read-only view of the session.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.Snapshot{
		SessionID:        s.id,
		ExerciseID:       s.quiz.Exercise.ID,
		Heading:          s.quiz.Exercise.Heading(),
		Phase:            s.phase,
		Index:            s.index,
		Total:            len(s.quiz.Questions),
		Score:            s.score,
		Answered:         s.answered,
		Timed:            s.timed,
		RemainingSeconds: s.remaining,
		Reason:           s.reason,
	}
	if s.phase == domain.PhaseInProgress {
		q := s.quiz.Questions[s.index]
		snap.Current = &q
	}
	return snap
}

func (s *Session) onTick() {
	// ErrInvalidState here means the session completed between ticks.
	_ = s.Tick()
}

func (s *Session) completeLocked(reason domain.CompletionReason) {
	s.phase = domain.PhaseCompleted
	s.reason = reason
	if s.countdown != nil {
		s.countdown.Stop()
	}
	close(s.done)
	s.presenter.SessionCompleted(s.summaryLocked())
}

func (s *Session) summaryLocked() domain.ResultSummary {
	total := len(s.quiz.Questions)
	return domain.ResultSummary{
		Score:          s.score,
		TotalQuestions: total,
		Answered:       s.answered,
		Percentage:     domain.Percentage(s.score, total),
		Reason:         s.reason,
	}
}

func (s *Session) emitQuestionLocked() {
	s.presenter.QuestionChanged(domain.QuestionView{
		Heading:  s.quiz.Exercise.Heading(),
		Index:    s.index,
		Total:    len(s.quiz.Questions),
		Question: s.quiz.Questions[s.index],
	})
}

func (s *Session) emitRemainingLocked() {
	if tp, ok := s.presenter.(TimerPresenter); ok {
		tp.TimeRemaining(s.remaining)
	}
}
