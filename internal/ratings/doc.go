// Package ratings defines the canonical rating record, the defensive parsers
// that turn provider display strings into typed fields, the merge rules used
// by id-based refreshes, and the tiered staleness policy that decides when a
// cached record must be revalidated.
package ratings
