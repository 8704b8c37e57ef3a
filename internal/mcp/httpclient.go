package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/split"
	"github.com/claude/repcycle/internal/storage"
)

// HTTPClient implements DataSource by calling the RepCycle REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

// getJSON fetches path and decodes the body into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
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

func (c *HTTPClient) GetActiveSplitRow(ctx context.Context, _ int) (*models.SplitRow, error) {
	var row models.SplitRow
	err := c.getJSON(ctx, "/api/v1/splits/active", nil, &row)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (c *HTTPClient) GetActiveSplit(ctx context.Context, userID int) (*split.Split, error) {
	row, err := c.GetActiveSplitRow(ctx, userID)
	if err != nil || row == nil {
		return nil, err
	}
	s := row.ToSplit()
	return &s, nil
}

func (c *HTTPClient) GetSplit(ctx context.Context, splitID int64, _ int) (*split.Split, error) {
	var resp struct {
		Split *models.SplitRow `json:"split"`
	}
	if err := c.getJSON(ctx, "/api/v1/splits/"+strconv.FormatInt(splitID, 10), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Split == nil {
		return nil, fmt.Errorf("httpclient: split %d: %w", splitID, storage.ErrNotFound)
	}
	s := resp.Split.ToSplit()
	return &s, nil
}

// GetLogsForDate fetches the logs of one UTC calendar day.
func (c *HTTPClient) GetLogsForDate(ctx context.Context, userID int, date time.Time) ([]split.LogEntry, error) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	rows, err := c.QueryWorkoutLogs(ctx, userID, start, start.AddDate(0, 0, 1), 0)
	if err != nil {
		return nil, err
	}
	entries := make([]split.LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.ToLogEntry())
	}
	return entries, nil
}

func (c *HTTPClient) GetPriorities(ctx context.Context, userID int) (map[string]int, error) {
	rows, err := c.ListPriorities(ctx, userID)
	if err != nil {
		return nil, err
	}
	prios := make(map[string]int, len(rows))
	for _, r := range rows {
		prios[r.MuscleName] = r.Priority
	}
	return prios, nil
}

func (c *HTTPClient) ListPriorities(ctx context.Context, _ int) ([]models.MusclePriorityRow, error) {
	var rows []models.MusclePriorityRow
	if err := c.getJSON(ctx, "/api/v1/muscle-priorities", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListMuscles flattens the grouped catalog the server returns.
func (c *HTTPClient) ListMuscles(ctx context.Context) ([]models.MuscleRow, error) {
	var groups []storage.MuscleGroup
	if err := c.getJSON(ctx, "/api/v1/muscles", nil, &groups); err != nil {
		return nil, err
	}
	var muscles []models.MuscleRow
	for _, g := range groups {
		muscles = append(muscles, g.Muscles...)
	}
	return muscles, nil
}

func (c *HTTPClient) QueryWorkoutLogs(ctx context.Context, _ int, start, end time.Time, workoutID int64) ([]models.WorkoutLogRow, error) {
	params := timeParams(start, end)
	if workoutID > 0 {
		params.Set("workout_id", strconv.FormatInt(workoutID, 10))
	}

	var rows []models.WorkoutLogRow
	if err := c.getJSON(ctx, "/api/v1/workouts/logs", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) DailyActivation(ctx context.Context, _ int, start, end time.Time) ([]storage.DayActivation, error) {
	var days []storage.DayActivation
	if err := c.getJSON(ctx, "/api/v1/activation/daily", timeParams(start, end), &days); err != nil {
		return nil, err
	}
	return days, nil
}
