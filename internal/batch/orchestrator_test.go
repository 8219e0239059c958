package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marquee/internal/ratings"
	"marquee/internal/resolve"
)

type fakeStore struct {
	mu       sync.Mutex
	records  map[string]ratings.Record
	readErr  error
	writeErr error
	writes   [][]ratings.Record
	reads    [][]string
}

func (f *fakeStore) GetMany(_ context.Context, keys []string) (map[string]ratings.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, keys)
	if f.readErr != nil {
		return nil, f.readErr
	}
	result := make(map[string]ratings.Record, len(keys))
	for _, key := range keys {
		if record, ok := f.records[key]; ok {
			result[key] = record
		}
	}
	return result, nil
}

func (f *fakeStore) UpsertMany(_ context.Context, records []ratings.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, records)
	return f.writeErr
}

type fakeResolver struct {
	mu       sync.Mutex
	calls    []resolve.Request
	outcomes map[string]resolve.Outcome
	errs     map[string]error
}

func (f *fakeResolver) Resolve(_ context.Context, req resolve.Request, cached *ratings.Record) (resolve.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if err, ok := f.errs[req.Key]; ok {
		return resolve.Outcome{}, err
	}
	if outcome, ok := f.outcomes[req.Key]; ok {
		return outcome, nil
	}
	if cached != nil {
		return resolve.Outcome{Record: *cached, Source: resolve.SourceCache}, nil
	}
	return resolve.Outcome{}, resolve.ErrNotFound
}

func apiOutcome(key string) resolve.Outcome {
	return resolve.Outcome{
		Record: ratings.Record{
			Key:       key,
			Title:     "Edge of Tomorrow",
			Rating:    7.9,
			UpdatedAt: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
		},
		Source: resolve.SourceAPI,
	}
}

func TestResolveDeduplicatesAndBroadcasts(t *testing.T) {
	store := &fakeStore{}
	resolver := &fakeResolver{outcomes: map[string]resolve.Outcome{"tile-1": apiOutcome("tile-1")}}
	orch := New(store, resolver, nil)

	results, err := orch.Resolve(context.Background(), []resolve.Request{
		{Key: "tile-1", Title: "Edge of Tomorrow"},
		{Key: "tile-1", Title: "Edge of Tomorrow"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(resolver.calls) != 1 {
		t.Fatalf("duplicate keys must resolve once, saw %d calls", len(resolver.calls))
	}
	if len(results) != 2 {
		t.Fatalf("expected one result per input item, got %d", len(results))
	}
	if results[0].Record != results[1].Record {
		t.Fatal("duplicate entries must carry identical data")
	}
	if len(store.writes) != 1 || len(store.writes[0]) != 1 {
		t.Fatalf("expected one batched write with one record, got %+v", store.writes)
	}
}

func TestResolveCacheHitSkipsWrite(t *testing.T) {
	cached := ratings.Record{Key: "tile-1", Title: "Edge of Tomorrow", Rating: 7.9}
	store := &fakeStore{records: map[string]ratings.Record{"tile-1": cached}}
	resolver := &fakeResolver{}
	orch := New(store, resolver, nil)

	results, err := orch.Resolve(context.Background(), []resolve.Request{{Key: "tile-1"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if results[0].Source != resolve.SourceCache {
		t.Fatalf("expected cache source, got %q", results[0].Source)
	}
	if len(store.writes) != 0 {
		t.Fatal("cache hits must not trigger a store write")
	}
}

func TestResolveWriteFailureKeepsResults(t *testing.T) {
	store := &fakeStore{writeErr: errors.New("disk full")}
	resolver := &fakeResolver{outcomes: map[string]resolve.Outcome{"tile-1": apiOutcome("tile-1")}}
	orch := New(store, resolver, nil)

	results, err := orch.Resolve(context.Background(), []resolve.Request{{Key: "tile-1", Title: "Edge of Tomorrow"}})
	if !errors.Is(err, resolve.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(results) != 1 || results[0].Record.Rating != 7.9 {
		t.Fatalf("computed results must survive a failed write, got %+v", results)
	}
}

func TestResolveReadFailureAbortsBatch(t *testing.T) {
	store := &fakeStore{readErr: errors.New("corrupt db")}
	orch := New(store, &fakeResolver{}, nil)

	results, err := orch.Resolve(context.Background(), []resolve.Request{{Key: "tile-1", Title: "x"}})
	if !errors.Is(err, resolve.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if results != nil {
		t.Fatalf("expected no results without a cache snapshot, got %+v", results)
	}
}

func TestResolveDropsKeylessItems(t *testing.T) {
	store := &fakeStore{}
	resolver := &fakeResolver{outcomes: map[string]resolve.Outcome{"tile-1": apiOutcome("tile-1")}}
	orch := New(store, resolver, nil)

	results, err := orch.Resolve(context.Background(), []resolve.Request{
		{Title: "No Key Here"},
		{Key: "tile-1", Title: "Edge of Tomorrow"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(results) != 1 || results[0].Key != "tile-1" {
		t.Fatalf("keyless items must be dropped, got %+v", results)
	}
}

func TestResolvePerItemErrorsDoNotAbortSiblings(t *testing.T) {
	store := &fakeStore{}
	resolver := &fakeResolver{
		outcomes: map[string]resolve.Outcome{"tile-1": apiOutcome("tile-1")},
		errs:     map[string]error{"tile-2": resolve.ErrNotFound},
	}
	orch := New(store, resolver, nil)

	results, err := orch.Resolve(context.Background(), []resolve.Request{
		{Key: "tile-1", Title: "Edge of Tomorrow"},
		{Key: "tile-2", Title: "No Such Film"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("sibling must succeed, got %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, resolve.ErrNotFound) {
		t.Fatalf("expected per-item not-found, got %v", results[1].Err)
	}
}
