package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/store"
)

func fakeProviderServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("t") == "Edge of Tomorrow" || query.Get("i") == "tt1631867" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"Title":      "Edge of Tomorrow",
				"Year":       "2014",
				"Released":   "06 Jun 2014",
				"Type":       "movie",
				"imdbRating": "7.9",
				"imdbVotes":  "700,123",
				"imdbID":     "tt1631867",
				"Response":   "True",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"Response": "False",
			"Error":    "Movie not found!",
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, providerURL, token string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.CacheDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Paths.APIToken = token
	cfg.OMDB.APIKey = "test-key"
	cfg.OMDB.BaseURL = providerURL
	return &cfg
}

func startDaemon(t *testing.T, cfg *config.Config) *Daemon {
	t.Helper()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	d, err := New(cfg, st, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestRatingsEndToEnd(t *testing.T) {
	provider := fakeProviderServer(t)
	cfg := testConfig(t, provider.URL, "")
	d := startDaemon(t, cfg)

	body, _ := json.Marshal([]api.BatchItem{
		{Key: "tile-1", Title: "Edge of Tomorrow"},
		{Key: "tile-2", Title: "Definitely Not A Real Film"},
	})
	resp, err := http.Post(fmt.Sprintf("http://%s/api/ratings", d.Addr()), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post ratings: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload api.BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Results) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(payload.Results))
	}
	byKey := map[string]api.ResolutionEntry{}
	for _, entry := range payload.Results {
		byKey[entry.Key] = entry
	}
	hit := byKey["tile-1"]
	if hit.Data == nil || hit.Data.ExternalID != "tt1631867" || hit.Source != "api" {
		t.Fatalf("unexpected hit entry: %+v", hit)
	}
	if byKey["tile-2"].Error == "" {
		t.Fatalf("expected error for unknown title, got %+v", byKey["tile-2"])
	}

	// The resolved record must now be persisted and served from cache.
	record, err := d.store.Get(context.Background(), "tile-1")
	if err != nil || record == nil {
		t.Fatalf("expected persisted record, got %+v err=%v", record, err)
	}

	resp2, err := http.Post(fmt.Sprintf("http://%s/api/ratings", d.Addr()), "application/json",
		bytes.NewReader([]byte(`[{"key":"tile-1","title":"Edge of Tomorrow"}]`)))
	if err != nil {
		t.Fatalf("second post: %v", err)
	}
	defer resp2.Body.Close()
	var second api.BatchResponse
	if err := json.NewDecoder(resp2.Body).Decode(&second); err != nil {
		t.Fatalf("decode second response: %v", err)
	}
	if second.Results[0].Source != "cache" {
		t.Fatalf("expected cache hit on second call, got %q", second.Results[0].Source)
	}
}

func TestRatingsRejectsMalformedBody(t *testing.T) {
	provider := fakeProviderServer(t)
	cfg := testConfig(t, provider.URL, "")
	d := startDaemon(t, cfg)

	resp, err := http.Post(fmt.Sprintf("http://%s/api/ratings", d.Addr()), "application/json",
		bytes.NewReader([]byte(`{"not":"an array"}`)))
	if err != nil {
		t.Fatalf("post ratings: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestStatusAndCacheStats(t *testing.T) {
	provider := fakeProviderServer(t)
	cfg := testConfig(t, provider.URL, "")
	d := startDaemon(t, cfg)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/status", d.Addr()))
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.CacheDBPath == "" {
		t.Fatalf("unexpected status: %+v", status)
	}

	resp2, err := http.Get(fmt.Sprintf("http://%s/api/cache/stats", d.Addr()))
	if err != nil {
		t.Fatalf("get cache stats: %v", err)
	}
	defer resp2.Body.Close()
	var stats api.CacheStatsResponse
	if err := json.NewDecoder(resp2.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Stats.TotalRecords != 0 {
		t.Fatalf("expected empty cache, got %+v", stats.Stats)
	}
}

func TestBearerTokenRequired(t *testing.T) {
	provider := fakeProviderServer(t)
	cfg := testConfig(t, provider.URL, "secret")
	d := startDaemon(t, cfg)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/status", d.Addr()))
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("http://%s/api/status", d.Addr()), nil)
	req.Header.Set("Authorization", "Bearer secret")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed status: %v", err)
	}
	authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", authed.StatusCode)
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	provider := fakeProviderServer(t)
	cfg := testConfig(t, provider.URL, "")
	startDaemon(t, cfg)

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open second store: %v", err)
	}
	defer st.Close()
	second, err := New(cfg, st, nil)
	if err != nil {
		t.Fatalf("new second daemon: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected lock conflict for second instance")
	}
}
