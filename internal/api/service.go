package api

import (
	"context"
	"errors"

	"marquee/internal/batch"
	"marquee/internal/resolve"
)

// Orchestrator is the batch resolution surface the service fronts.
type Orchestrator interface {
	Resolve(ctx context.Context, items []resolve.Request) ([]batch.Result, error)
}

// ResolveService translates transport-level batch items into orchestrated
// resolutions and back.
type ResolveService struct {
	orchestrator Orchestrator
}

// NewResolveService builds a resolve service.
func NewResolveService(orchestrator Orchestrator) *ResolveService {
	return &ResolveService{orchestrator: orchestrator}
}

// ResolveBatch resolves a batch of items. A store write failure does not fail
// the call; it is reported in the response's StoreError while the computed
// results are returned. Any other orchestration failure is returned as an
// error.
func (s *ResolveService) ResolveBatch(ctx context.Context, items []BatchItem) (BatchResponse, error) {
	requests := make([]resolve.Request, len(items))
	for i, item := range items {
		requests[i] = resolve.Request{
			Key:                item.Key,
			Title:              item.Title,
			EntityType:         item.EntityType,
			VerificationRating: item.VerificationRating,
		}
	}

	results, err := s.orchestrator.Resolve(ctx, requests)
	if err != nil && results == nil {
		return BatchResponse{}, err
	}

	response := BatchResponse{Results: make([]ResolutionEntry, len(results))}
	for i, result := range results {
		entry := ResolutionEntry{Key: result.Key}
		if result.Err != nil {
			entry.Error = resolve.Reason(result.Err)
		} else {
			record := result.Record
			entry.Data = &record
			entry.Source = string(result.Source)
		}
		response.Results[i] = entry
	}
	if err != nil && errors.Is(err, resolve.ErrStore) {
		response.StoreError = err.Error()
	}
	return response, nil
}
