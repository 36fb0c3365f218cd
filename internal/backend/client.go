// Package backend talks to the external fitness backend: user details and
// fitness plan, the exercise catalog, and workout submission.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fitbuddy/internal/models"
)

// ErrNotFound is returned when the backend answers 404.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx answer other than 404.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s returned %d: %s", e.Path, e.Code, e.Body)
}

// TokenSource yields the bearer token for backend requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is an HTTP client for the fitness backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	retries    int
	backoff    time.Duration
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetries sets how many attempts LogWorkout makes.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the base delay between LogWorkout attempts; it doubles per attempt.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Client for baseURL authenticating through tokens.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		retries:    3,
		backoff:    time.Second,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: marshal %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("backend: %s: %w", path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return nil
}

// Login checks the current token against the backend and returns the account email.
func (c *Client) Login(ctx context.Context) (string, error) {
	var resp struct {
		Email string `json:"email"`
	}
	if err := c.do(ctx, http.MethodPost, "/users/login/", nil, &resp); err != nil {
		return "", err
	}
	return resp.Email, nil
}

// UserDetails fetches the profile, survey answers and fitness plan.
func (c *Client) UserDetails(ctx context.Context) (*models.UserDetails, error) {
	var details models.UserDetails
	if err := c.do(ctx, http.MethodGet, "/users/details/", nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Plan returns the user's fitness plan, or nil when none is assigned.
func (c *Client) Plan(ctx context.Context) (*models.FitnessPlan, error) {
	details, err := c.UserDetails(ctx)
	if err != nil {
		return nil, err
	}
	return details.FitnessPlan, nil
}

// Exercises returns one page (1-based) of the exercise catalog.
func (c *Client) Exercises(ctx context.Context, page int) (*models.ExercisePage, error) {
	if page < 1 {
		page = 1
	}
	var p models.ExercisePage
	path := "/users/exercises/?page=" + strconv.Itoa(page)
	if err := c.do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ExerciseID resolves a catalog exercise id by name.
func (c *Client) ExerciseID(ctx context.Context, name string) (int, error) {
	var resp struct {
		ExerciseID int `json:"exercise_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/exercises/get_id/"+url.PathEscape(name)+"/", nil, &resp); err != nil {
		return 0, err
	}
	if resp.ExerciseID == 0 {
		return 0, fmt.Errorf("backend: exercise %q: %w", name, ErrNotFound)
	}
	return resp.ExerciseID, nil
}

// PlanDayID returns the id of the user's current plan day.
func (c *Client) PlanDayID(ctx context.Context, uid string) (int, error) {
	var resp struct {
		PlanDayID int `json:"plan_day_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/planday/get_id/"+url.PathEscape(uid)+"/", nil, &resp); err != nil {
		return 0, err
	}
	return resp.PlanDayID, nil
}

// CreateWorkout opens a workout history entry and returns its id.
func (c *Client) CreateWorkout(ctx context.Context, uid string, planDayID int, completedAt time.Time) (int, error) {
	req := models.CreateWorkoutRequest{UserID: uid, PlanDayID: planDayID, CompletedAt: completedAt.UTC()}
	var resp struct {
		WorkoutHistoryID int `json:"workout_history_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/workouts/create/", req, &resp); err != nil {
		return 0, err
	}
	return resp.WorkoutHistoryID, nil
}

// LogWorkout submits a finished workout. Retries with exponential backoff on
// transport errors and 5xx answers.
func (c *Client) LogWorkout(ctx context.Context, log *models.WorkoutLog) error {
	if _, err := c.tokens.Token(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := range c.retries {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<uint(attempt-1))
			c.log.Warn("retrying workout log", "attempt", attempt+1, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.do(ctx, http.MethodPost, "/workouts/log/", log, nil)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d attempts: %w", c.retries, lastErr)
}

// SubmitSurvey stores the onboarding survey answers.
func (c *Client) SubmitSurvey(ctx context.Context, s models.Survey) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/users/survey/", s, nil)
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return !errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled)
}
