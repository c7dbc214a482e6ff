package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-player/internal/app"
	"quiz-player/internal/domain"
	"quiz-player/internal/infra/memory"
)

func TestStartAndPlay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	service := newTestService(store)
	rec := &recorder{}

	session, err := service.Start(ctx, "ex-1", rec)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if session.ID() != "session-1" {
		t.Fatalf("expected generated id session-1, got %q", session.ID())
	}
	if len(rec.questions) != 1 || rec.questions[0].Index != 0 {
		t.Fatalf("expected first question event, got %+v", rec.questions)
	}

	if _, err := service.SubmitAnswer(ctx, session.ID(), domain.LabelKey("B")); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.Result(session.ID()); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state before completion, got %v", err)
	}
	res, err := service.SubmitAnswer(ctx, session.ID(), domain.LabelKey("A"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !res.Completed || res.Score != 2 {
		t.Fatalf("expected completed with score 2, got %+v", res)
	}

	summary, err := service.Result(session.ID())
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}
	if summary.Percentage != 100.0 {
		t.Fatalf("expected 100%%, got %v", summary.Percentage)
	}

	if _, err := service.End(ctx, session.ID()); err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected session unregistered")
	}
	if _, err := service.Snapshot(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found after end, got %v", err)
	}
}

func TestStartRequiresIdentifier(t *testing.T) {
	service := newTestService(memory.NewSessionStore())

	for _, id := range []string{"", "   "} {
		_, err := service.Start(context.Background(), id, nil)
		if !errors.Is(err, domain.ErrMissingIdentifier) {
			t.Fatalf("expected missing identifier for %q, got %v", id, err)
		}
	}
}

func TestStartLoadFailures(t *testing.T) {
	service := newTestService(memory.NewSessionStore())

	_, err := service.Start(context.Background(), "unknown", nil)
	if !errors.Is(err, domain.ErrLoadFailed) {
		t.Fatalf("expected load failure, got %v", err)
	}

	_, err = service.Start(context.Background(), "empty", nil)
	if !errors.Is(err, domain.ErrLoadFailed) || !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected load failure for empty exercise, got %v", err)
	}
}

func TestEndAbortsRunningSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(memory.NewSessionStore())

	session, err := service.Start(ctx, "ex-1", nil)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	summary, err := service.End(ctx, session.ID())
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if summary.Reason != domain.ReasonAborted || summary.Answered != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := service.SubmitAnswer(ctx, session.ID(), domain.LabelKey("B")); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompletedSessionsExpire(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"ex-1": twoQuestionQuiz(0),
	}), time.Minute)
	service := app.NewQuizService(store, quizzes,
		app.WithSessionTicker(nil, 0),
		app.WithRetention(10*time.Millisecond),
	)

	session, err := service.Start(ctx, "ex-1", nil)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, _ = service.SubmitAnswer(ctx, session.ID(), domain.LabelKey("B"))
	_, _ = service.SubmitAnswer(ctx, session.ID(), domain.LabelKey("A"))

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("completed session was not expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestService(store app.SessionRepository) *app.QuizService {
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"ex-1":  twoQuestionQuiz(0),
		"empty": {Exercise: domain.Exercise{ID: "empty"}},
	}), 5*time.Minute)
	n := 0
	return app.NewQuizService(store, quizRepo,
		app.WithSessionTicker(nil, 0),
		app.WithIDGenerator(func() string {
			n++
			return "session-" + string(rune('0'+n))
		}),
	)
}
