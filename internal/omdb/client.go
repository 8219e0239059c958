package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result models the provider's detail payload for a single title. Fields
// arrive as display strings; parsing into typed values happens downstream.
type Result struct {
	Title    string         `json:"Title"`
	Year     string         `json:"Year"`
	Released string         `json:"Released"`
	Type     string         `json:"Type"`
	Rating   string         `json:"imdbRating"`
	Votes    string         `json:"imdbVotes"`
	ID       string         `json:"imdbID"`
	Ratings  []SourceRating `json:"Ratings"`
	Response string         `json:"Response"`
	Error    string         `json:"Error"`
}

// SourceRating is one entry of the provider's per-source ratings array.
type SourceRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// RottenTomatoes returns the Rotten Tomatoes percentage string from the
// ratings array, or "" when absent.
func (r *Result) RottenTomatoes() string {
	for _, rating := range r.Ratings {
		if rating.Source == "Rotten Tomatoes" {
			return rating.Value
		}
	}
	return ""
}

// searchResponse models the provider's paginated free-text search payload.
type searchResponse struct {
	Search       []searchResult `json:"Search"`
	TotalResults string         `json:"totalResults"`
	Response     string         `json:"Response"`
	Error        string         `json:"Error"`
}

type searchResult struct {
	Title string `json:"Title"`
	Year  string `json:"Year"`
	ID    string `json:"imdbID"`
	Type  string `json:"Type"`
}

// Client provides access to an OMDb-style rating provider. All operations
// are single request/response exchanges; not-found is a normal nil result,
// not an error, and no retries happen here. Retry-by-reformulation belongs
// to the resolution engine.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ByTitle performs an exact-title lookup, optionally narrowed by year.
// Returns (nil, nil) when the provider reports no match.
func (c *Client) ByTitle(ctx context.Context, title string, year int) (*Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	params := url.Values{}
	params.Set("t", title)
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	return c.fetchDetail(ctx, params)
}

// ByID performs an authoritative lookup by the provider's canonical id.
// Returns (nil, nil) when the provider reports no match.
func (c *Client) ByID(ctx context.Context, id string) (*Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("id must not be empty")
	}
	params := url.Values{}
	params.Set("i", id)
	return c.fetchDetail(ctx, params)
}

// Search performs a free-text search and resolves the first ranked candidate
// with a detail fetch on its id. Zero candidates or a failed detail fetch are
// both reported as not-found.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("s", query)

	var payload searchResponse
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, err
	}
	if payload.Response != "True" || len(payload.Search) == 0 {
		return nil, nil
	}

	detail, err := c.ByID(ctx, payload.Search[0].ID)
	if err != nil || detail == nil {
		return nil, nil
	}
	return detail, nil
}

func (c *Client) fetchDetail(ctx context.Context, params url.Values) (*Result, error) {
	var payload Result
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, err
	}
	if payload.Response != "True" {
		return nil, nil
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return fmt.Errorf("parse omdb url: %w", err)
	}
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb returned %d (latency=%v)", resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode omdb response: %w", err)
	}
	return nil
}
