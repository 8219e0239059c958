package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"marquee/internal/api"
)

// daemonClient talks to the marqueed HTTP API.
type daemonClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newDaemonClient(addr, token string) *daemonClient {
	return &daemonClient{
		baseURL:    "http://" + addr,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *daemonClient) ResolveBatch(ctx context.Context, items []api.BatchItem) (api.BatchResponse, error) {
	var response api.BatchResponse
	err := c.do(ctx, http.MethodPost, "/api/ratings", items, &response)
	return response, err
}

func (c *daemonClient) Status(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &status)
	return status, err
}

func (c *daemonClient) CacheStats(ctx context.Context) (api.CacheStatsResponse, error) {
	var stats api.CacheStatsResponse
	err := c.do(ctx, http.MethodGet, "/api/cache/stats", nil, &stats)
	return stats, err
}

func (c *daemonClient) CacheList(ctx context.Context, limit int) (api.CacheListResponse, error) {
	path := "/api/cache"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var records api.CacheListResponse
	err := c.do(ctx, http.MethodGet, path, nil, &records)
	return records, err
}

func (c *daemonClient) CacheClear(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/cache/clear", nil, nil)
}

func (c *daemonClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapDialError(err, c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDialError(err error, baseURL string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; start the daemon with `marqueed`", baseURL)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}
