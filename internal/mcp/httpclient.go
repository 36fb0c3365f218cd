package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fitbuddy/internal/models"
	"github.com/claude/fitbuddy/internal/schedule"
	"github.com/claude/fitbuddy/internal/session"
	"github.com/claude/fitbuddy/internal/storage"
)

// HTTPClient implements DataSource by calling the FitBuddy REST API.
// Used for stdio MCP mode where the binary runs next to the MCP client but
// the workspace lives in the fitbuddy server.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) Plan(ctx context.Context) (*models.FitnessPlan, error) {
	var resp struct {
		Plan *models.FitnessPlan `json:"plan"`
	}
	if err := c.get(ctx, "/api/v1/plan", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Plan, nil
}

func (c *HTTPClient) DailyWorkout(ctx context.Context) (models.DayPlan, error) {
	var resp struct {
		Scheduled bool           `json:"scheduled"`
		Reason    string         `json:"reason"`
		Day       models.DayPlan `json:"day"`
	}
	if err := c.get(ctx, "/api/v1/plan/today", nil, &resp); err != nil {
		return models.DayPlan{}, err
	}
	if !resp.Scheduled {
		return models.DayPlan{}, fmt.Errorf("%s: %w", resp.Reason, schedule.ErrScheduleUnresolved)
	}
	return resp.Day, nil
}

func (c *HTTPClient) WeeklyWorkout(ctx context.Context) ([]models.DayPlan, error) {
	var resp struct {
		Scheduled bool             `json:"scheduled"`
		Reason    string           `json:"reason"`
		Days      []models.DayPlan `json:"days"`
	}
	if err := c.get(ctx, "/api/v1/plan/week", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Scheduled {
		return nil, fmt.Errorf("%s: %w", resp.Reason, schedule.ErrScheduleUnresolved)
	}
	return resp.Days, nil
}

func (c *HTTPClient) Exercises(ctx context.Context, page int) (*models.ExercisePage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var result models.ExercisePage
	if err := c.get(ctx, "/api/v1/exercises", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) SessionSummary(ctx context.Context) (session.Summary, error) {
	var sum session.Summary
	err := c.get(ctx, "/api/v1/session/", nil, &sum)
	return sum, err
}

func (c *HTTPClient) Heatmap(ctx context.Context, year int, month time.Month) (schedule.Heatmap, error) {
	params := url.Values{}
	params.Set("month", fmt.Sprintf("%04d-%02d", year, int(month)))

	var hm schedule.Heatmap
	err := c.get(ctx, "/api/v1/heatmap", params, &hm)
	return hm, err
}

func (c *HTTPClient) QueryWorkoutSets(ctx context.Context, start, end time.Time) ([]models.HistorySetRow, error) {
	var rows []models.HistorySetRow
	if err := c.get(ctx, "/api/v1/history", timeParams(start, end), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) TrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error) {
	params := timeParams(start, end)
	params.Set("bucket", bucket)

	var periods []storage.TrainingSummaryPeriod
	if err := c.get(ctx, "/api/v1/history/summary", params, &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

func (c *HTTPClient) HistoryStats(ctx context.Context) (*storage.HistoryStats, error) {
	var stats storage.HistoryStats
	if err := c.get(ctx, "/api/v1/history/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) ExerciseProgress(ctx context.Context, start, end time.Time, exercise string) (*storage.ExerciseProgress, error) {
	params := timeParams(start, end)
	params.Set("exercise", exercise)

	var progress storage.ExerciseProgress
	if err := c.get(ctx, "/api/v1/history/progress", params, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}
