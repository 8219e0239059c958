package api

import (
	"marquee/internal/ratings"
	"marquee/internal/store"
)

// BatchItem is one entry of an incoming batch resolution request.
type BatchItem struct {
	Key                string   `json:"key"`
	Title              string   `json:"title,omitempty"`
	EntityType         string   `json:"entityType,omitempty"`
	VerificationRating *float64 `json:"verificationRating,omitempty"`
}

// ResolutionEntry is one per-item outcome in a batch response. Exactly one of
// Data or Error is set; entries are correlated by Key, not by position.
type ResolutionEntry struct {
	Key    string          `json:"key"`
	Data   *ratings.Record `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Source string          `json:"source,omitempty"`
}

// BatchResponse is the full batch resolution response. StoreError is set when
// resolved records could not be persisted; the results are still valid.
type BatchResponse struct {
	Results    []ResolutionEntry `json:"results"`
	StoreError string            `json:"storeError,omitempty"`
}

// DaemonStatus reports daemon runtime information.
type DaemonStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	CacheDBPath  string `json:"cacheDbPath"`
	LockFilePath string `json:"lockFilePath"`
	StartedAt    string `json:"startedAt,omitempty"`
}

// CacheStatsResponse wraps cache-wide counters.
type CacheStatsResponse struct {
	Stats store.Stats `json:"stats"`
}

// CacheListResponse carries stored records for inspection.
type CacheListResponse struct {
	Records []ratings.Record `json:"records"`
}
