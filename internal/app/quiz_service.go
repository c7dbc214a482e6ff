package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-player/internal/domain"
)

// SessionRepository abstracts where live sessions are registered (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error)
}

// QuizService contains the quiz player use cases.
type QuizService struct {
	sessions  SessionRepository
	quizzes   QuizRepository
	newTicker TickerFunc
	tickEvery time.Duration
	retention time.Duration
	newID     func() string
}

// ServiceOption configures a QuizService.
type ServiceOption func(*QuizService)

// WithSessionTicker sets how session countdowns are driven. A nil newTicker
// leaves ticking to the caller.
func WithSessionTicker(newTicker TickerFunc, every time.Duration) ServiceOption {
	return func(s *QuizService) {
		s.newTicker = newTicker
		s.tickEvery = every
	}
}

// WithRetention keeps completed sessions registered for d before dropping
// them. Zero keeps them until End is called.
func WithRetention(d time.Duration) ServiceOption {
	return func(s *QuizService) { s.retention = d }
}

// WithIDGenerator replaces the UUID session id generator.
func WithIDGenerator(gen func() string) ServiceOption {
	return func(s *QuizService) { s.newID = gen }
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		sessions:  store,
		quizzes:   quizzes,
		newTicker: NewRealTicker,
		tickEvery: time.Second,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the exercise and begins a new session rendered by presenter.
// Every load failure, including an empty question list, is a *domain.LoadError.
func (s *QuizService) Start(ctx context.Context, exerciseID string, presenter Presenter) (*Session, error) {
	exerciseID = strings.TrimSpace(exerciseID)
	if exerciseID == "" {
		return nil, domain.ErrMissingIdentifier
	}

	quiz, err := s.quizzes.GetQuiz(ctx, exerciseID)
	if err != nil {
		return nil, domain.NewLoadError(exerciseID, err)
	}
	if quiz.Exercise.ID == "" {
		quiz.Exercise.ID = exerciseID
	}

	session := NewSession(s.newID(), WithPresenter(presenter), WithTicker(s.newTicker, s.tickEvery))
	if err := session.Initialize(quiz); err != nil {
		return nil, domain.NewLoadError(exerciseID, err)
	}

	s.sessions.Put(session)
	if s.retention > 0 {
		go s.expireWhenDone(session)
	}
	return session, nil
}

// SubmitAnswer answers the current question of a session.
func (s *QuizService) SubmitAnswer(_ context.Context, sessionID string, key domain.AnswerKey) (domain.AnswerResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.SubmitAnswer(key)
}

// Snapshot returns the current view of a session.
func (s *QuizService) Snapshot(sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Result returns the summary of a completed session.
func (s *QuizService) Result(sessionID string) (domain.ResultSummary, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ResultSummary{}, domain.ErrSessionNotFound
	}
	return session.Finalize()
}

// End aborts the session if it is still running, unregisters it and returns
// its final summary.
func (s *QuizService) End(_ context.Context, sessionID string) (domain.ResultSummary, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ResultSummary{}, domain.ErrSessionNotFound
	}
	session.Abort()
	s.sessions.Delete(sessionID)
	return session.Finalize()
}

func (s *QuizService) expireWhenDone(session *Session) {
	<-session.Done()
	time.AfterFunc(s.retention, func() {
		if current, ok := s.sessions.Get(session.ID()); ok && current == session {
			s.sessions.Delete(session.ID())
		}
	})
}
