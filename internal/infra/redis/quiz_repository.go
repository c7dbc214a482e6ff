package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-player/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (dashboard API, Postgres, SQLite).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error)
}

// QuizRepository caches decoded quizzes in Redis and falls back to a loader on
// cache miss. Each exercise is stored as JSON under exercise:{id}.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, exerciseID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(exerciseID, func() (interface{}, error) {
		// Re-check cache in case another instance filled it.
		if quiz, ok := r.cached(ctx, exerciseID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, exerciseID)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, err
		}
		if err := r.client.Set(ctx, r.key(exerciseID), data, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache exercise %s: %v", exerciseID, err)
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate removes a cached exercise.
func (r *QuizRepository) Invalidate(ctx context.Context, exerciseID string) error {
	return r.client.Del(ctx, r.key(exerciseID)).Err()
}

func (r *QuizRepository) cached(ctx context.Context, exerciseID string) (domain.Quiz, bool) {
	data, err := r.client.Get(ctx, r.key(exerciseID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil || len(quiz.Questions) == 0 {
		// unreadable entries are treated as a miss and overwritten
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) key(exerciseID string) string {
	return "exercise:" + exerciseID
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
