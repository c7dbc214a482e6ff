package payload

import (
	"errors"
	"testing"

	"quiz-player/internal/domain"
)

func TestExerciseShapes(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		questions int
	}{
		{
			name:      "top-level questions",
			body:      `{"subject":"Maths","questions":[{"text":"q","options":["a","b"],"correctAnswer":1}]}`,
			questions: 1,
		},
		{
			name:      "nested exercise questions",
			body:      `{"exercise":{"subject":"Maths","questions":[{"text":"q","options":["a","b"],"correctAnswer":1}]}}`,
			questions: 1,
		},
		{
			name:      "sibling questions",
			body:      `{"exercise":{"subject":"Maths"},"questions":[{"text":"q","options":["a","b"],"correctAnswer":1},{"text":"r","options":["a","b"],"correctAnswer":0}]}`,
			questions: 2,
		},
		{
			name:      "no questions",
			body:      `{"subject":"Maths"}`,
			questions: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exercise, questions, err := Exercise([]byte(tc.body), "")
			if err != nil {
				t.Fatalf("Exercise returned error: %v", err)
			}
			if exercise.Subject != "Maths" {
				t.Fatalf("expected subject Maths, got %q", exercise.Subject)
			}
			if len(questions) != tc.questions {
				t.Fatalf("expected %d questions, got %d", tc.questions, len(questions))
			}
		})
	}
}

func TestExerciseFieldTypes(t *testing.T) {
	exercise, _, err := Exercise([]byte(`{"id":"ex-3","subject":"Chem","chapter":12,"exerciseNumber":"4","title":"Acids","timerMinutes":"2"}`), "")
	if err != nil {
		t.Fatalf("Exercise returned error: %v", err)
	}
	if exercise.ID != "ex-3" || exercise.Chapter != "12" || exercise.ExerciseNumber != "4" || exercise.Title != "Acids" {
		t.Fatalf("unexpected exercise %+v", exercise)
	}
	if exercise.TimerMinutes != 2 {
		t.Fatalf("expected timer 2, got %d", exercise.TimerMinutes)
	}

	exercise, _, err = Exercise([]byte(`{"subject":"Chem","timerMinutes":-5}`), "")
	if err != nil {
		t.Fatalf("Exercise returned error: %v", err)
	}
	if exercise.TimerMinutes != 0 {
		t.Fatalf("expected non-positive timer to read as untimed, got %d", exercise.TimerMinutes)
	}
}

func TestExerciseRejectsInexactTimer(t *testing.T) {
	for _, raw := range []string{`0.5`, `1.5`, `1e20`, `"2.25"`} {
		body := `{"subject":"Chem","timerMinutes":` + raw + `,"questions":[{"text":"q","options":["a","b"],"correctAnswer":0}]}`
		if _, err := Quiz([]byte(body), ""); err == nil {
			t.Fatalf("expected timerMinutes %s to be rejected", raw)
		}
	}

	quiz, err := Quiz([]byte(`{"subject":"Chem","timerMinutes":3.0,"questions":[{"text":"q","options":["a","b"],"correctAnswer":0}]}`), "")
	if err != nil {
		t.Fatalf("Quiz returned error: %v", err)
	}
	if quiz.Exercise.TimerSeconds() != 180 {
		t.Fatalf("expected 180 second timer, got %d", quiz.Exercise.TimerSeconds())
	}
}

func TestQuestionsWrappedList(t *testing.T) {
	questions, err := Questions([]byte(`{"questions":[{"question":"Capital of France?","options":{"A":"Paris","B":"Rome"},"correctAnswer":"A"}]}`), "")
	if err != nil {
		t.Fatalf("Questions returned error: %v", err)
	}
	if len(questions) != 1 || questions[0].Text != "Capital of France?" {
		t.Fatalf("unexpected questions %+v", questions)
	}
	if questions[0].CorrectAnswer != domain.LabelKey("A") {
		t.Fatalf("expected label key A, got %s", questions[0].CorrectAnswer)
	}
}

func TestCanonicalAnswerPerOptionsVariant(t *testing.T) {
	cases := []struct {
		name string
		body string
		want domain.AnswerKey
	}{
		{"indexed numeric", `[{"text":"q","options":["a","b","c"],"correctAnswer":2}]`, domain.IndexKey(2)},
		{"indexed numeric string", `[{"text":"q","options":["a","b","c"],"correctAnswer":"1"}]`, domain.IndexKey(1)},
		{"indexed letter", `[{"text":"q","options":["a","b","c"],"correctAnswer":"c"}]`, domain.IndexKey(2)},
		{"keyed label", `[{"text":"q","options":{"A":"a","B":"b"},"correctAnswer":"B"}]`, domain.LabelKey("B")},
		{"keyed numeric", `[{"text":"q","options":{"1":"a","2":"b"},"correctAnswer":2}]`, domain.LabelKey("2")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			questions, err := Questions([]byte(tc.body), "")
			if err != nil {
				t.Fatalf("Questions returned error: %v", err)
			}
			if questions[0].CorrectAnswer != tc.want {
				t.Fatalf("correct answer = %s, want %s", questions[0].CorrectAnswer, tc.want)
			}
		})
	}
}

func TestQuestionsRejectsMalformed(t *testing.T) {
	bodies := []string{
		`[{"text":"q","options":[],"correctAnswer":0}]`,
		`[{"text":"q","options":["a","b"],"correctAnswer":5}]`,
		`[{"text":"q","options":{"A":"a"},"correctAnswer":"Z"}]`,
		`[{"text":"q","options":"abc","correctAnswer":"A"}]`,
		`[{"text":"q","options":["a"],"correctAnswer":1.5}]`,
	}
	for _, body := range bodies {
		if _, err := Questions([]byte(body), ""); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestQuizRequiresQuestions(t *testing.T) {
	_, err := Quiz([]byte(`{"subject":"Maths","questions":[]}`), "")
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	_, err = Quiz([]byte(`{"subject":"Maths"}`), "")
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions for missing list, got %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct{ base, ref, want string }{
		{"https://api.test/api", "/uploads/a.png", "https://api.test/api/uploads/a.png"},
		{"https://api.test/api/", "uploads/a.png", "https://api.test/api/uploads/a.png"},
		{"https://api.test/api", "https://cdn.test/a.png", "https://cdn.test/a.png"},
		{"https://api.test/api", "", ""},
		{"", "/uploads/a.png", "/uploads/a.png"},
	}
	for _, tc := range cases {
		if got := ResolveURL(tc.base, tc.ref); got != tc.want {
			t.Fatalf("ResolveURL(%q, %q) = %q, want %q", tc.base, tc.ref, got, tc.want)
		}
	}
}
