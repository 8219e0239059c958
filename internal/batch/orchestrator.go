package batch

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"marquee/internal/logging"
	"marquee/internal/ratings"
	"marquee/internal/resolve"
)

// RecordStore is the slice of the store the orchestrator needs: one batched
// read at batch start, one batched write at batch end.
type RecordStore interface {
	GetMany(ctx context.Context, keys []string) (map[string]ratings.Record, error)
	UpsertMany(ctx context.Context, records []ratings.Record) error
}

// Resolver resolves a single request against an optional cached record.
type Resolver interface {
	Resolve(ctx context.Context, req resolve.Request, cached *ratings.Record) (resolve.Outcome, error)
}

// Result is one per-item outcome, correlated by key.
type Result struct {
	Key    string
	Record ratings.Record
	Source resolve.Source
	Err    error
}

// Orchestrator coordinates a batch: dedup, one store read, concurrent
// per-item resolution, one store write.
type Orchestrator struct {
	store    RecordStore
	resolver Resolver
	logger   *slog.Logger
}

// New builds an orchestrator.
func New(store RecordStore, resolver Resolver, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:    store,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

type slot struct {
	outcome resolve.Outcome
	err     error
}

// Resolve processes one batch. The returned slice has one entry per usable
// input item in input order; duplicate keys share a single resolution whose
// outcome is broadcast to every entry. A store write failure is returned as
// the error while the computed results are still handed back.
func (o *Orchestrator) Resolve(ctx context.Context, items []resolve.Request) ([]Result, error) {
	logger := o.logger.With(logging.String(logging.FieldBatchID, uuid.NewString()))

	usable := make([]resolve.Request, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Key) == "" {
			logger.Warn("dropping item without key",
				logging.String("title", item.Title))
			continue
		}
		usable = append(usable, item)
	}
	if len(usable) == 0 {
		return nil, nil
	}

	// First occurrence wins; later duplicates reuse its resolution.
	keys := make([]string, 0, len(usable))
	unique := make([]resolve.Request, 0, len(usable))
	firstByKey := make(map[string]int, len(usable))
	for _, item := range usable {
		if _, seen := firstByKey[item.Key]; seen {
			continue
		}
		firstByKey[item.Key] = len(keys)
		keys = append(keys, item.Key)
		unique = append(unique, item)
	}

	snapshot, err := o.store.GetMany(ctx, keys)
	if err != nil {
		return nil, resolve.Wrap(resolve.ErrStore, "batch", "read", "cache snapshot failed", err)
	}

	slots := make([]slot, len(unique))
	var wg sync.WaitGroup
	for idx, req := range unique {
		wg.Add(1)
		go func(idx int, req resolve.Request) {
			defer wg.Done()
			var cached *ratings.Record
			if record, hit := snapshot[req.Key]; hit {
				cached = &record
			}
			outcome, resolveErr := o.resolver.Resolve(ctx, req, cached)
			slots[idx] = slot{outcome: outcome, err: resolveErr}
		}(idx, req)
	}
	wg.Wait()

	var updates []ratings.Record
	for _, s := range slots {
		if s.err == nil && s.outcome.NeedsWrite() {
			updates = append(updates, s.outcome.Record)
		}
	}

	var storeErr error
	if len(updates) > 0 {
		if writeErr := o.store.UpsertMany(ctx, updates); writeErr != nil {
			// Computed results are worth more than the failed write; the
			// caller still gets them alongside the error.
			storeErr = resolve.Wrap(resolve.ErrStore, "batch", "write", "persisting resolved records failed", writeErr)
			logger.Error("batch write failed",
				logging.Int("records", len(updates)),
				logging.Error(writeErr))
		}
	}

	results := make([]Result, len(usable))
	for i, item := range usable {
		s := slots[firstByKey[item.Key]]
		results[i] = Result{Key: item.Key, Err: s.err}
		if s.err == nil {
			results[i].Record = s.outcome.Record
			results[i].Source = s.outcome.Source
		}
	}

	logger.Info("batch resolved",
		logging.Int("items", len(usable)),
		logging.Int("unique_keys", len(keys)),
		logging.Int("writes", len(updates)))
	return results, storeErr
}
