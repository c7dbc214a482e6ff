package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"quiz-player/internal/config"
	"quiz-player/internal/domain"
	"quiz-player/internal/transport/terminal"
)

// NewPlayCmd plays one exercise in the terminal. The exercise comes from
// --exercise-id or from the exerciseId query parameter of a quiz page URL.
func NewPlayCmd(configPath, apiBase *string) *cobra.Command {
	var exerciseID string
	cmd := &cobra.Command{
		Use:   "play [quiz-page-url]",
		Short: "Play an exercise in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := exerciseID
			if id == "" && len(args) == 1 {
				var err error
				if id, err = exerciseIDFromURL(args[0]); err != nil {
					return err
				}
			}
			if strings.TrimSpace(id) == "" {
				return domain.ErrMissingIdentifier
			}
			return runPlay(cmd, *configPath, *apiBase, id)
		},
	}
	cmd.Flags().StringVar(&exerciseID, "exercise-id", "", "exercise to play")
	return cmd
}

func runPlay(cmd *cobra.Command, configPath, apiBaseFlag, exerciseID string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if apiBaseFlag != "" {
		cfg.API.BaseURL = apiBaseFlag
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = terminal.Play(ctx, service, exerciseID, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// exerciseIDFromURL extracts the exerciseId query parameter of a quiz page URL.
func exerciseIDFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse quiz url: %w", err)
	}
	id := strings.TrimSpace(u.Query().Get("exerciseId"))
	if id == "" {
		return "", domain.ErrMissingIdentifier
	}
	return id, nil
}
