package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-player/internal/domain"
	"quiz-player/internal/payload"
)

// QuizLoader loads exercise JSONB from Postgres.
type QuizLoader struct {
	pool    *pgxpool.Pool
	baseURL string
}

// NewQuizLoader returns a loader; baseURL resolves relative image references.
func NewQuizLoader(pool *pgxpool.Pool, baseURL string) *QuizLoader {
	return &QuizLoader{pool: pool, baseURL: baseURL}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM exercises WHERE id=$1`, exerciseID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, domain.ErrExerciseNotFound)
	}
	if err != nil {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, fmt.Errorf("load exercise: %w", err))
	}

	quiz, err := payload.Quiz(raw, l.baseURL)
	if err != nil {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, err)
	}
	if quiz.Exercise.ID == "" {
		quiz.Exercise.ID = exerciseID
	}
	return quiz, nil
}
