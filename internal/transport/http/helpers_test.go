package http

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"quiz-player/internal/app"
	"quiz-player/internal/domain"
	"quiz-player/internal/infra/memory"
)

type chanTicker struct {
	ch   chan time.Time
	once sync.Once
	stop chan struct{}
}

func (c *chanTicker) Chan() <-chan time.Time { return c.ch }
func (c *chanTicker) Stop()                  { c.once.Do(func() { close(c.stop) }) }

func newTestServer(t *testing.T, opts ...app.ServiceOption) (*httptest.Server, *memory.SessionStore) {
	t.Helper()
	store := memory.NewSessionStore()
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"ex-1":  sampleQuiz(0),
		"timed": sampleQuiz(1),
	})
	repo := memory.NewQuizRepository(loader, time.Minute)
	opts = append([]app.ServiceOption{app.WithSessionTicker(nil, 0)}, opts...)
	service := app.NewQuizService(store, repo, opts...)

	server := httptest.NewServer(NewRouter(service, RouterOptions{CORSOrigins: []string{"http://localhost:3000"}}))
	t.Cleanup(server.Close)
	return server, store
}

func sampleQuiz(timerMinutes int) domain.Quiz {
	return domain.Quiz{
		Exercise: domain.Exercise{
			ID:             "ex-1",
			Subject:        "Physics",
			Chapter:        "4",
			ExerciseNumber: "2",
			TimerMinutes:   timerMinutes,
		},
		Questions: []domain.Question{
			{
				Text:          "Unit of force?",
				Options:       domain.KeyedOptions(map[string]string{"A": "Joule", "B": "Newton", "C": "Watt", "D": "Pascal"}),
				CorrectAnswer: domain.LabelKey("B"),
			},
			{
				Text:          "Unit of power?",
				ImageURL:      "https://cdn.example.com/power.png",
				Options:       domain.IndexedOptions("Joule", "Newton", "Watt", "Pascal"),
				CorrectAnswer: domain.IndexKey(2),
			},
		},
	}
}
