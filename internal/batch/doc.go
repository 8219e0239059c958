// Package batch orchestrates multi-title resolution: it deduplicates keys,
// snapshots the cache with one batched read, resolves items concurrently,
// and persists new records with one batched write.
package batch
