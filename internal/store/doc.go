// Package store persists canonical rating records in SQLite, keyed by the
// stable per-title key, with batched multi-key reads and batched idempotent
// upserts.
package store
