package beeminder

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
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://www.beeminder.com/api/v1/"

// Client talks to the Beeminder API for a single user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	username   string
}

// Option configures a Client.
type Option func(*Client)

// WithUsername scopes the client to a specific user instead of "me".
func WithUsername(username string) Option {
	return func(c *Client) {
		if username != "" {
			c.username = username
		}
	}
}

// WithBaseURL points the client at a different API root. Used by tests to
// target a local mock server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/") + "/"
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a client authenticated with the given token.
func NewClient(authToken string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		authToken:  authToken,
		username:   "me",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DatapointsOptions narrows a datapoint listing. Zero values mean "server
// default".
type DatapointsOptions struct {
	// Sort is the attribute to sort on, descending ("timestamp", "id").
	Sort string
	// Count limits the number of results.
	Count int
}

// Datapoints lists datapoints for a goal.
func (c *Client) Datapoints(ctx context.Context, goal string, opts DatapointsOptions) ([]Datapoint, error) {
	query := url.Values{}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.Count > 0 {
		query.Set("count", strconv.Itoa(opts.Count))
	}
	endpoint := fmt.Sprintf("users/%s/goals/%s/datapoints.json", c.username, goal)

	var points []Datapoint
	if err := c.get(ctx, endpoint, query, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// CreateDatapoint creates a single datapoint and returns the server's copy,
// including the assigned id.
func (c *Client) CreateDatapoint(ctx context.Context, goal string, dp CreateDatapoint) (Datapoint, error) {
	form := url.Values{}
	form.Set("value", formatValue(dp.Value))
	if dp.Timestamp != nil {
		form.Set("timestamp", strconv.FormatInt(dp.Timestamp.Unix(), 10))
	}
	if dp.Comment != "" {
		form.Set("comment", dp.Comment)
	}
	if dp.Daystamp != "" {
		form.Set("daystamp", dp.Daystamp)
	}
	if dp.RequestID != "" {
		form.Set("requestid", dp.RequestID)
	}
	endpoint := fmt.Sprintf("users/%s/goals/%s/datapoints.json", c.username, goal)

	var created Datapoint
	if err := c.send(ctx, http.MethodPost, endpoint, form, &created); err != nil {
		return Datapoint{}, err
	}
	return created, nil
}

// UpdateDatapoint updates an existing datapoint in place.
func (c *Client) UpdateDatapoint(ctx context.Context, goal string, up UpdateDatapoint) (Datapoint, error) {
	form := url.Values{}
	if up.Timestamp != nil {
		form.Set("timestamp", strconv.FormatInt(up.Timestamp.Unix(), 10))
	}
	if up.Value != nil {
		form.Set("value", formatValue(*up.Value))
	}
	if up.Comment != nil {
		form.Set("comment", *up.Comment)
	}
	endpoint := fmt.Sprintf("users/%s/goals/%s/datapoints/%s.json", c.username, goal, up.ID)

	var updated Datapoint
	if err := c.send(ctx, http.MethodPut, endpoint, form, &updated); err != nil {
		return Datapoint{}, err
	}
	return updated, nil
}

// DeleteDatapoint removes a datapoint and returns the deleted record.
func (c *Client) DeleteDatapoint(ctx context.Context, goal, id string) (Datapoint, error) {
	endpoint := fmt.Sprintf("users/%s/goals/%s/datapoints/%s.json", c.username, goal, id)

	var deleted Datapoint
	if err := c.send(ctx, http.MethodDelete, endpoint, nil, &deleted); err != nil {
		return Datapoint{}, err
	}
	return deleted, nil
}

// CreateAllDatapoints creates multiple datapoints in one call. Each item
// should carry its own RequestID so a retried batch does not duplicate rows.
func (c *Client) CreateAllDatapoints(ctx context.Context, goal string, points []CreateDatapoint) (BatchCreateResult, error) {
	payload, err := json.Marshal(points)
	if err != nil {
		return BatchCreateResult{}, fmt.Errorf("encode datapoints: %w", err)
	}
	form := url.Values{}
	form.Set("datapoints", string(payload))
	endpoint := fmt.Sprintf("users/%s/goals/%s/datapoints/create_all.json", c.username, goal)

	var result BatchCreateResult
	if err := c.send(ctx, http.MethodPost, endpoint, form, &result); err != nil {
		return BatchCreateResult{}, err
	}
	return result, nil
}

// Goals lists the user's active goals.
func (c *Client) Goals(ctx context.Context) ([]GoalSummary, error) {
	endpoint := fmt.Sprintf("users/%s/goals.json", c.username)

	var goals []GoalSummary
	if err := c.get(ctx, endpoint, nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// ArchivedGoals lists the user's archived goals.
func (c *Client) ArchivedGoals(ctx context.Context) ([]GoalSummary, error) {
	endpoint := fmt.Sprintf("users/%s/goals/archived.json", c.username)

	var goals []GoalSummary
	if err := c.get(ctx, endpoint, nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// RefreshGraph asks the server to refetch autodata and regenerate the graph.
func (c *Client) RefreshGraph(ctx context.Context, goal string) (bool, error) {
	endpoint := fmt.Sprintf("users/%s/goals/%s/refresh_graph.json", c.username, goal)

	var queued bool
	if err := c.get(ctx, endpoint, nil, &queued); err != nil {
		return false, err
	}
	return queued, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("auth_token", c.authToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, endpoint string, form url.Values, out any) error {
	if form == nil {
		form = url.Values{}
	}
	form.Set("auth_token", c.authToken)

	var body io.Reader
	target := c.baseURL + endpoint
	if method == http.MethodDelete {
		// Deletes carry parameters in the query string, not the body.
		target += "?" + form.Encode()
	} else {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Reason:     http.StatusText(resp.StatusCode),
			Body:       string(data),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// formatValue renders a float the way the API and the text format expect:
// shortest representation that round-trips (8 rather than 8.000000).
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
