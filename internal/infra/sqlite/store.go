package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"quiz-player/internal/domain"
	"quiz-player/internal/payload"
)

const schema = `
CREATE TABLE IF NOT EXISTS exercises (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Store keeps exercise payloads in a local SQLite file so quizzes can be
// played without the dashboard API.
type Store struct {
	db      *sql.DB
	baseURL string
}

// Open opens (creating if needed) the SQLite database at path.
func Open(ctx context.Context, path, baseURL string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "exercises.db"
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db, baseURL: baseURL}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadQuiz reads and decodes the stored exercise payload.
func (s *Store) LoadQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM exercises WHERE id = ?`, exerciseID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, domain.ErrExerciseNotFound)
	}
	if err != nil {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, fmt.Errorf("load exercise: %w", err))
	}

	quiz, err := payload.Quiz([]byte(raw), s.baseURL)
	if err != nil {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, err)
	}
	if quiz.Exercise.ID == "" {
		quiz.Exercise.ID = exerciseID
	}
	return quiz, nil
}

// Import validates an exercise payload and upserts it under id.
func (s *Store) Import(ctx context.Context, id string, data []byte) error {
	if id == "" {
		return fmt.Errorf("import exercise: empty id")
	}
	if _, err := payload.Quiz(data, ""); err != nil {
		return fmt.Errorf("import exercise %s: %w", id, err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exercises (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("import exercise %s: %w", id, err)
	}
	return nil
}
