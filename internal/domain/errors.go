package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingIdentifier is returned when no exercise id was supplied.
	ErrMissingIdentifier = errors.New("no exercise id provided")
	// ErrLoadFailed matches every *LoadError.
	ErrLoadFailed = errors.New("failed to load quiz")
	// ErrNoQuestions indicates the exercise loaded but carries no questions.
	ErrNoQuestions = errors.New("no questions found for this exercise")
	// ErrInvalidState is returned when a session operation is invoked outside its phase.
	ErrInvalidState = errors.New("invalid session state")
	// ErrExerciseNotFound indicates the backing store has no such exercise.
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrSessionNotFound is returned when a session id is unknown to the registry.
	ErrSessionNotFound = errors.New("quiz session not found")
)

// LoadError reports why a quiz could not be loaded. Network, status and
// payload failures are all reported through this one type.
type LoadError struct {
	ExerciseID string
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load exercise %s: %v", e.ExerciseID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrLoadFailed) match any load failure.
func (e *LoadError) Is(target error) bool { return target == ErrLoadFailed }

// NewLoadError wraps err unless it already is a *LoadError.
func NewLoadError(exerciseID string, err error) error {
	if err == nil {
		return nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{ExerciseID: exerciseID, Err: err}
}
