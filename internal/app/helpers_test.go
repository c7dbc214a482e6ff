package app_test

import (
	"sync"
	"time"

	"quiz-player/internal/domain"
)

type recorder struct {
	mu        sync.Mutex
	questions []domain.QuestionView
	results   []domain.ResultSummary
	remaining []int
}

func (r *recorder) QuestionChanged(view domain.QuestionView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, view)
}

func (r *recorder) SessionCompleted(summary domain.ResultSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, summary)
}

func (r *recorder) TimeRemaining(seconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = append(r.remaining, seconds)
}

func (r *recorder) completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() { f.once.Do(func() { close(f.stopped) }) }

func twoQuestionQuiz(timerMinutes int) domain.Quiz {
	return domain.Quiz{
		Exercise: domain.Exercise{
			ID:             "ex-1",
			Subject:        "Maths",
			Chapter:        "3",
			ExerciseNumber: "1",
			TimerMinutes:   timerMinutes,
		},
		Questions: []domain.Question{
			{
				Text:          "2 + 2?",
				Options:       domain.KeyedOptions(map[string]string{"A": "3", "B": "4", "C": "5", "D": "6"}),
				CorrectAnswer: domain.LabelKey("B"),
			},
			{
				Text:          "3 * 3?",
				Options:       domain.KeyedOptions(map[string]string{"A": "9", "B": "6", "C": "12", "D": "33"}),
				CorrectAnswer: domain.LabelKey("A"),
			},
		},
	}
}

func quizWithQuestions(n int) domain.Quiz {
	quiz := domain.Quiz{Exercise: domain.Exercise{ID: "ex-n", Subject: "Mixed"}}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			Text:          "pick the first",
			Options:       domain.IndexedOptions("first", "second"),
			CorrectAnswer: domain.IndexKey(0),
		})
	}
	return quiz
}
