package omdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestByTitleReturnsMatch(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		payload := map[string]any{
			"Title":      "Edge of Tomorrow",
			"Year":       "2014",
			"Released":   "06 Jun 2014",
			"Type":       "movie",
			"imdbRating": "7.9",
			"imdbVotes":  "700,123",
			"imdbID":     "tt1631867",
			"Ratings": []map[string]string{
				{"Source": "Internet Movie Database", "Value": "7.9/10"},
				{"Source": "Rotten Tomatoes", "Value": "91%"},
			},
			"Response": "True",
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client, err := New("key", server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := client.ByTitle(context.Background(), "Edge of Tomorrow", 2014)
	if err != nil {
		t.Fatalf("ByTitle returned error: %v", err)
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	if result.ID != "tt1631867" {
		t.Fatalf("expected imdb id tt1631867, got %q", result.ID)
	}
	if result.RottenTomatoes() != "91%" {
		t.Fatalf("expected rotten tomatoes 91%%, got %q", result.RottenTomatoes())
	}

	if captured.Get("t") != "Edge of Tomorrow" {
		t.Fatalf("expected t parameter, got %q", captured.Get("t"))
	}
	if captured.Get("y") != "2014" {
		t.Fatalf("expected y parameter 2014, got %q", captured.Get("y"))
	}
	if captured.Get("apikey") != "key" {
		t.Fatalf("expected apikey parameter, got %q", captured.Get("apikey"))
	}
}

func TestByTitleNotFoundIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"Response": "False",
			"Error":    "Movie not found!",
		})
	}))
	defer server.Close()

	client, err := New("key", server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := client.ByTitle(context.Background(), "Nonexistent", 0)
	if err != nil {
		t.Fatalf("not-found must not be an error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestSearchResolvesTopCandidate(t *testing.T) {
	var paths []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		paths = append(paths, query)
		if query.Get("s") != "" {
			payload := map[string]any{
				"Search": []map[string]string{
					{"Title": "Mission: Impossible", "Year": "1996", "imdbID": "tt0117060", "Type": "movie"},
					{"Title": "Mission: Impossible II", "Year": "2000", "imdbID": "tt0120755", "Type": "movie"},
				},
				"totalResults": "2",
				"Response":     "True",
			}
			_ = json.NewEncoder(w).Encode(payload)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Title":      "Mission: Impossible",
			"Year":       "1996",
			"Released":   "22 May 1996",
			"Type":       "movie",
			"imdbRating": "7.2",
			"imdbVotes":  "470,000",
			"imdbID":     query.Get("i"),
			"Response":   "True",
		})
	}))
	defer server.Close()

	client, err := New("key", server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := client.Search(context.Background(), "Mission: Impossible")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if result == nil || result.ID != "tt0117060" {
		t.Fatalf("expected detail for first candidate, got %+v", result)
	}
	if len(paths) != 2 {
		t.Fatalf("expected search plus detail round trips, got %d", len(paths))
	}
}

func TestSearchEmptyIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"Response": "False",
			"Error":    "Movie not found!",
		})
	}))
	defer server.Close()

	client, err := New("key", server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := client.Search(context.Background(), "zzzz")
	if err != nil || result != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", result, err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", "https://example.com"); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := New("key", " "); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
