package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-player/internal/config"
	pgstore "quiz-player/internal/infra/postgres"
	rediscache "quiz-player/internal/infra/redis"
	"quiz-player/internal/infra/sqlite"
)

// NewImportCmd stores an exercise JSON document in Postgres or SQLite so it
// can be played without the dashboard API.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		file   string
		id     string
		target string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an exercise payload into the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), *configPath, target, id, data)
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "exercise JSON file, - for stdin")
	cmd.Flags().StringVar(&id, "id", "", "exercise id to store the payload under")
	cmd.Flags().StringVar(&target, "target", "", "postgres or sqlite (default: whichever is configured)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func readPayload(stdin io.Reader, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}

func runImport(ctx context.Context, configPath, target, id string, data []byte) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if target == "" {
		target = "sqlite"
		if cfg.Postgres.URL != "" {
			target = "postgres"
		}
	}

	switch target {
	case "postgres":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		db := pgstore.OpenDB(cfg.Postgres.URL)
		defer db.Close()
		if err := pgstore.ImportExercise(ctx, db, id, data); err != nil {
			return err
		}
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path, cfg.API.BaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Import(ctx, id, data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown import target %q", target)
	}
	log.Printf("imported exercise %s into %s", id, target)

	if cfg.Redis.Addr != "" {
		if err := invalidateCachedExercise(ctx, cfg, id); err != nil {
			return fmt.Errorf("invalidate cached exercise %s: %w", id, err)
		}
	}
	return nil
}

// invalidateCachedExercise drops the shared Redis copy so running servers
// load the imported payload on the next session.
func invalidateCachedExercise(ctx context.Context, cfg config.Config, id string) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()
	return rediscache.NewQuizRepository(client, nil, 0).Invalidate(ctx, id)
}
