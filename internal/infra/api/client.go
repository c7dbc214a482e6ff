package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quiz-player/internal/domain"
	"quiz-player/internal/payload"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client loads exercises from the dashboard API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient gets a client with
// a 15 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

// BaseURL is the API root used to resolve relative image references.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoadQuiz fetches GET /exercises/{id}. When the exercise payload carries no
// questions they are fetched from GET /exercises/{id}/questions.
func (c *Client) LoadQuiz(ctx context.Context, exerciseID string) (domain.Quiz, error) {
	exerciseURL := c.baseURL + "/exercises/" + url.PathEscape(exerciseID)

	body, err := c.get(ctx, exerciseURL)
	if err != nil {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, err)
	}
	exercise, questions, err := payload.Exercise(body, c.baseURL)
	if err != nil {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, err)
	}

	if len(questions) == 0 {
		body, err := c.get(ctx, exerciseURL+"/questions")
		if err != nil {
			return domain.Quiz{}, domain.NewLoadError(exerciseID, err)
		}
		questions, err = payload.Questions(body, c.baseURL)
		if err != nil {
			return domain.Quiz{}, domain.NewLoadError(exerciseID, err)
		}
	}
	if len(questions) == 0 {
		return domain.Quiz{}, domain.NewLoadError(exerciseID, domain.ErrNoQuestions)
	}

	if exercise.ID == "" {
		exercise.ID = exerciseID
	}
	return domain.Quiz{Exercise: exercise, Questions: questions}, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: status %d", reqURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", reqURL, err)
	}
	return body, nil
}
