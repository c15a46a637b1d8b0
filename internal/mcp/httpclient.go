package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/replog/internal/models"
)

// HTTPClient implements DataSource by calling the RepLog REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but data lives on
// another device (accessed over Tailscale).
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
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) ListWorkouts(ctx context.Context) ([]models.WorkoutDefinition, error) {
	body, err := c.get(ctx, "/api/v1/workouts", nil)
	if err != nil {
		return nil, err
	}

	var defs []models.WorkoutDefinition
	if err := json.Unmarshal(body, &defs); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return defs, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id string) (*models.WorkoutDefinition, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var def models.WorkoutDefinition
	if err := json.Unmarshal(body, &def); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &def, nil
}

func (c *HTTPClient) QuerySessions(ctx context.Context, start, end time.Time) ([]models.CompletedSession, error) {
	body, err := c.get(ctx, "/api/v1/history", timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var sessions []models.CompletedSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) UnsyncedSessions(ctx context.Context) ([]models.CompletedSession, error) {
	body, err := c.get(ctx, "/api/v1/history/unsynced", nil)
	if err != nil {
		return nil, err
	}

	var sessions []models.CompletedSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode unsynced history: %w", err)
	}
	return sessions, nil
}
