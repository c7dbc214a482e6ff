package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-player/internal/payload"
)

type exerciseRow struct {
	bun.BaseModel `bun:"table:exercises"`

	ID        string          `bun:"id,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at"`
}

// OpenDB opens a bun handle over the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// ImportExercise validates an exercise payload and upserts it under id.
func ImportExercise(ctx context.Context, db bun.IDB, id string, data []byte) error {
	if id == "" {
		return fmt.Errorf("import exercise: empty id")
	}
	if _, err := payload.Quiz(data, ""); err != nil {
		return fmt.Errorf("import exercise %s: %w", id, err)
	}

	row := &exerciseRow{ID: id, Data: json.RawMessage(data), UpdatedAt: time.Now().UTC()}
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("import exercise %s: %w", id, err)
	}
	return nil
}
