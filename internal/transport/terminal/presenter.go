package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"quiz-player/internal/domain"
)

// Presenter renders a session as plain text.
type Presenter struct {
	mu          sync.Mutex
	out         io.Writer
	headingDone bool
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) QuestionChanged(view domain.QuestionView) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.headingDone && view.Heading != "" {
		fmt.Fprintf(p.out, "%s\n", view.Heading)
		fmt.Fprintln(p.out, strings.Repeat("=", len(view.Heading)))
	}
	p.headingDone = true

	fmt.Fprintf(p.out, "\nQ%d/%d: %s\n", view.Index+1, view.Total, view.Question.Text)
	if view.Question.ImageURL != "" {
		fmt.Fprintf(p.out, "  [image] %s\n", view.Question.ImageURL)
	}
	for _, c := range view.Question.Options.Choices() {
		fmt.Fprintf(p.out, "  %s. %s\n", c.Label, c.Text)
	}
	fmt.Fprint(p.out, "> ")
}

// TimeRemaining prints on whole minutes and during the final ten seconds.
func (p *Presenter) TimeRemaining(seconds int) {
	if seconds%60 != 0 && seconds > 10 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\n[time left %s]\n", formatClock(seconds))
}

func (p *Presenter) SessionCompleted(summary domain.ResultSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch summary.Reason {
	case domain.ReasonTimeout:
		fmt.Fprintln(p.out, "\nTime's up!")
	case domain.ReasonAborted:
		fmt.Fprintln(p.out, "\nQuiz ended early.")
	}
	fmt.Fprintln(p.out, "\nQuiz Complete!")
	fmt.Fprintf(p.out, "Your score: %s\n", summary.Display())
}

// InvalidAnswer re-prompts after input that matches no option.
func (p *Presenter) InvalidAnswer(input string, choices []domain.Choice) {
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%q is not an option, choose one of %s\n> ", input, strings.Join(labels, ", "))
}

// Error prints a failure the player should see.
func (p *Presenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "Error: %s\n", msg)
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
