package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-player/internal/domain"
	"quiz-player/internal/infra/memory"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"ex-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(client, loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "ex-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("exercise:ex-1") {
		t.Fatalf("expected exercise cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuiz(context.Background(), "ex-1")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached.Questions) != len(quiz.Questions) {
		t.Fatalf("expected %d cached questions, got %d", len(quiz.Questions), len(cached.Questions))
	}
	if cached.Questions[0].CorrectAnswer != domain.LabelKey("B") {
		t.Fatalf("expected answer key to survive the cache, got %s", cached.Questions[0].CorrectAnswer)
	}
	if cached.Questions[1].CorrectAnswer != domain.IndexKey(0) {
		t.Fatalf("expected index key to survive the cache, got %s", cached.Questions[1].CorrectAnswer)
	}
}

func TestQuizRepositoryTreatsCorruptEntryAsMiss(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set("exercise:ex-1", "not-json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{"ex-1": sampleQuiz()}),
	}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "ex-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected reload of corrupt entry, loader calls=%d", loader.calls)
	}

	if err := repo.Invalidate(context.Background(), "ex-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("exercise:ex-1") {
		t.Fatalf("expected key removed")
	}
}

type countingLoader struct {
	memory.QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, exerciseID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		Exercise: domain.Exercise{ID: "ex-1", Subject: "Physics", Chapter: "3", ExerciseNumber: "2", TimerMinutes: 5},
		Questions: []domain.Question{
			{
				Text:          "Unit of force?",
				Options:       domain.KeyedOptions(map[string]string{"A": "Joule", "B": "Newton", "C": "Watt", "D": "Pascal"}),
				CorrectAnswer: domain.LabelKey("B"),
			},
			{
				Text:          "Speed of light is constant in vacuum.",
				Options:       domain.IndexedOptions("True", "False"),
				CorrectAnswer: domain.IndexKey(0),
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
