package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"quiz-player/internal/app"
	"quiz-player/internal/domain"
)

// Play runs one session of exerciseID, reading one answer per line from in
// and rendering to out. It returns when the session completes, in is
// exhausted or ctx is cancelled; the session is ended in every case.
func Play(ctx context.Context, service *app.QuizService, exerciseID string, in io.Reader, out io.Writer) (domain.ResultSummary, error) {
	presenter := NewPresenter(out)
	session, err := service.Start(ctx, exerciseID, presenter)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingIdentifier):
			presenter.Error("No exercise ID provided!")
		case errors.Is(err, domain.ErrLoadFailed):
			presenter.Error("Failed to load quiz data")
		}
		return domain.ResultSummary{}, err
	}
	sessionID := session.ID()

	stop := make(chan struct{})
	defer close(stop)
	lines, readErr := readLines(in, stop)

	for {
		select {
		case <-session.Done():
			return service.End(context.Background(), sessionID)
		case <-ctx.Done():
			summary, _ := service.End(context.Background(), sessionID)
			return summary, ctx.Err()
		case err := <-readErr:
			summary, endErr := service.End(context.Background(), sessionID)
			if err != nil {
				return summary, err
			}
			return summary, endErr
		case line := <-lines:
			snap, err := service.Snapshot(sessionID)
			if err != nil {
				return domain.ResultSummary{}, err
			}
			if snap.Current == nil {
				continue
			}
			key, ok := snap.Current.Options.KeyForLabel(line)
			if !ok {
				presenter.InvalidAnswer(strings.TrimSpace(line), snap.Current.Options.Choices())
				continue
			}
			if _, err := service.SubmitAnswer(ctx, sessionID, key); err != nil && !errors.Is(err, domain.ErrInvalidState) {
				return domain.ResultSummary{}, err
			}
		}
	}
}

// readLines scans in on its own goroutine. The error channel receives nil at
// EOF. A goroutine blocked on a read that never returns is abandoned.
func readLines(in io.Reader, stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
