// Package payload decodes the exercise and question JSON served by the
// dashboard API and stored in the exercise tables.
//
// Accepted exercise shapes:
//
//	{"subject": ..., "questions": [...]}                    top-level questions
//	{"exercise": {"subject": ..., "questions": [...]}}      nested questions
//	{"exercise": {...}, "questions": [...]}                 sibling questions
//	{"subject": ...}                                        questions fetched separately
//
// Accepted question list shapes are a bare array or {"questions": [...]}.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"quiz-player/internal/domain"
)

type exerciseWire struct {
	ID             flexString      `json:"id"`
	ObjectID       flexString      `json:"_id"`
	Subject        flexString      `json:"subject"`
	Chapter        flexString      `json:"chapter"`
	ExerciseNumber flexString      `json:"exerciseNumber"`
	Title          flexString      `json:"title"`
	TimerMinutes   flexInt         `json:"timerMinutes"`
	Questions      json.RawMessage `json:"questions"`
}

type envelope struct {
	Exercise  json.RawMessage `json:"exercise"`
	Questions json.RawMessage `json:"questions"`
}

type questionWire struct {
	Text          string           `json:"text"`
	Question      string           `json:"question"`
	ImageURL      string           `json:"imageUrl"`
	Options       domain.Options   `json:"options"`
	CorrectAnswer domain.AnswerKey `json:"correctAnswer"`
}

// Exercise decodes an exercise payload. The returned questions are nil when the
// payload carries no question list, in which case the caller fetches them.
func Exercise(data []byte, baseURL string) (domain.Exercise, []domain.Question, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.Exercise{}, nil, fmt.Errorf("decode exercise: %w", err)
	}

	exerciseJSON := data
	questionsJSON := env.Questions
	if isObject(env.Exercise) {
		exerciseJSON = env.Exercise
	}

	var wire exerciseWire
	if err := json.Unmarshal(exerciseJSON, &wire); err != nil {
		return domain.Exercise{}, nil, fmt.Errorf("decode exercise: %w", err)
	}
	if isNull(questionsJSON) {
		questionsJSON = wire.Questions
	}

	exercise := domain.Exercise{
		ID:             string(wire.ID),
		Subject:        string(wire.Subject),
		Chapter:        string(wire.Chapter),
		ExerciseNumber: string(wire.ExerciseNumber),
		Title:          string(wire.Title),
		TimerMinutes:   int(wire.TimerMinutes),
	}
	if exercise.ID == "" {
		exercise.ID = string(wire.ObjectID)
	}

	if isNull(questionsJSON) {
		return exercise, nil, nil
	}
	questions, err := Questions(questionsJSON, baseURL)
	if err != nil {
		return domain.Exercise{}, nil, err
	}
	return exercise, questions, nil
}

// Questions decodes a question list. An empty list yields an empty, non-nil slice.
func Questions(data []byte, baseURL string) ([]domain.Question, error) {
	data = bytes.TrimSpace(data)
	if isObject(data) {
		var wrapped struct {
			Questions json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		data = bytes.TrimSpace(wrapped.Questions)
	}
	if isNull(data) {
		return []domain.Question{}, nil
	}

	var wires []questionWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(wires))
	for i, w := range wires {
		q, err := buildQuestion(w, baseURL)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Quiz decodes a self-contained payload and requires a non-empty question list.
func Quiz(data []byte, baseURL string) (domain.Quiz, error) {
	exercise, questions, err := Exercise(data, baseURL)
	if err != nil {
		return domain.Quiz{}, err
	}
	if len(questions) == 0 {
		return domain.Quiz{}, domain.ErrNoQuestions
	}
	return domain.Quiz{Exercise: exercise, Questions: questions}, nil
}

func buildQuestion(w questionWire, baseURL string) (domain.Question, error) {
	text := w.Text
	if text == "" {
		text = w.Question
	}
	if w.Options.Len() == 0 {
		return domain.Question{}, fmt.Errorf("no options")
	}
	answer := canonicalAnswer(w.Options, w.CorrectAnswer)
	if !w.Options.Contains(answer) {
		return domain.Question{}, fmt.Errorf("correct answer %s matches no option", w.CorrectAnswer)
	}
	return domain.Question{
		Text:          text,
		ImageURL:      ResolveURL(baseURL, w.ImageURL),
		Options:       w.Options,
		CorrectAnswer: answer,
	}, nil
}

// canonicalAnswer rewrites a correct answer into the key form of its options:
// indexed lists compare by index, keyed maps by label. This is the only place
// the two forms are reconciled; submissions are compared exactly.
func canonicalAnswer(opts domain.Options, key domain.AnswerKey) domain.AnswerKey {
	switch opts.Kind() {
	case domain.OptionsIndexed:
		label, ok := key.Label()
		if !ok {
			return key
		}
		label = strings.TrimSpace(label)
		if n, err := strconv.Atoi(label); err == nil {
			return domain.IndexKey(n)
		}
		if len(label) == 1 {
			c := strings.ToUpper(label)[0]
			if c >= 'A' && c <= 'Z' {
				return domain.IndexKey(int(c - 'A'))
			}
		}
	case domain.OptionsKeyed:
		if n, ok := key.Index(); ok {
			return domain.LabelKey(strconv.Itoa(n))
		}
	}
	return key
}

// ResolveURL joins a relative asset path onto the API base.
func ResolveURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || baseURL == "" {
		return ref
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return ref
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(ref, "/")
}

func isNull(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// maxTimerMinutes keeps the countdown length in seconds within an int32.
const maxTimerMinutes = math.MaxInt32 / 60

// flexInt accepts a JSON integer or integer string; non-positive values read
// as zero. Fractional and out-of-range values are rejected.
type flexInt int

func (v *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		*v = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("timerMinutes: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("timerMinutes: %s is not a whole number of minutes", raw)
	}
	if f > maxTimerMinutes {
		return fmt.Errorf("timerMinutes: %s is out of range", raw)
	}
	if f <= 0 {
		*v = 0
		return nil
	}
	*v = flexInt(f)
	return nil
}
