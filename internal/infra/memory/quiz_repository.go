package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-player/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (dashboard API, Postgres, SQLite).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error)
}

// QuizRepository caches quizzes with TTL to avoid refetching an exercise for
// every session.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(exerciseID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(exerciseID, func() (interface{}, error) {
		if quiz, ok := r.cached(exerciseID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, exerciseID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if r.ttl <= 0 {
			return quiz, nil
		}

		r.mu.Lock()
		r.cache[exerciseID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) cached(exerciseID string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[exerciseID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) ttlWithJitterLocked() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuizLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticQuizLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticQuizLoader(quizzes map[string]domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, exerciseID string) (domain.Quiz, error) {
	quiz, ok := l.quizzes[exerciseID]
	if !ok {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, domain.ErrExerciseNotFound)
	}
	if len(quiz.Questions) == 0 {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, domain.ErrNoQuestions)
	}
	return quiz, nil
}
