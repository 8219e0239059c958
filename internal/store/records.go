package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"marquee/internal/ratings"
)

const recordColumns = "key, external_id, title, year, release_date, rating, secondary_rating, vote_count, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (ratings.Record, error) {
	var (
		record     ratings.Record
		releaseRaw sql.NullString
		updatedRaw sql.NullString
		externalID sql.NullString
		secondary  sql.NullString
		title      sql.NullString
		year       sql.NullInt64
		rating     sql.NullFloat64
		voteCount  sql.NullInt64
	)
	if err := scanner.Scan(
		&record.Key,
		&externalID,
		&title,
		&year,
		&releaseRaw,
		&rating,
		&secondary,
		&voteCount,
		&updatedRaw,
	); err != nil {
		return ratings.Record{}, err
	}
	record.ExternalID = externalID.String
	record.Title = title.String
	record.Year = int(year.Int64)
	record.Rating = rating.Float64
	record.SecondaryRating = secondary.String
	record.VoteCount = voteCount.Int64
	if parsed, err := parseTimeString(releaseRaw.String); err == nil {
		record.ReleaseDate = parsed
	}
	if parsed, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = parsed
	}
	return record, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

// Get returns the record for a single key, or (nil, nil) when the key is not
// stored.
func (s *Store) Get(ctx context.Context, key string) (*ratings.Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM rating_records WHERE key = ?", recordColumns), key)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &record, nil
}

// GetMany returns the stored records for the given keys. Keys absent from the
// store are simply absent from the result.
func (s *Store) GetMany(ctx context.Context, keys []string) (map[string]ratings.Record, error) {
	result := make(map[string]ratings.Record, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	ctx = ensureContext(ctx)

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	query := fmt.Sprintf("SELECT %s FROM rating_records WHERE key IN (%s)",
		recordColumns, makePlaceholders(len(keys)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan record: %w", scanErr)
		}
		result[record.Key] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return result, nil
}

// UpsertMany writes all records in a single transaction. On key conflict
// every column is replaced; the incoming record is the caller's latest
// judgment, never merged field-by-field here.
func (s *Store) UpsertMany(ctx context.Context, records []ratings.Record) error {
	if len(records) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	const query = `
INSERT INTO rating_records (key, external_id, title, year, release_date, rating, secondary_rating, vote_count, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    external_id = excluded.external_id,
    title = excluded.title,
    year = excluded.year,
    release_date = excluded.release_date,
    rating = excluded.rating,
    secondary_rating = excluded.secondary_rating,
    vote_count = excluded.vote_count,
    updated_at = excluded.updated_at`

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin upsert tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, record := range records {
			if _, err := stmt.ExecContext(ctx,
				record.Key,
				record.ExternalID,
				record.Title,
				record.Year,
				formatTime(record.ReleaseDate),
				record.Rating,
				record.SecondaryRating,
				record.VoteCount,
				formatTime(record.UpdatedAt),
			); err != nil {
				return fmt.Errorf("upsert record %q: %w", record.Key, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit upsert: %w", err)
		}
		return nil
	})
}

// List returns stored records ordered by most recent update. limit <= 0
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]ratings.Record, error) {
	ctx = ensureContext(ctx)
	query := fmt.Sprintf("SELECT %s FROM rating_records ORDER BY updated_at DESC", recordColumns)
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []ratings.Record
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan record: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Stats summarizes the cache contents for status reporting.
type Stats struct {
	TotalRecords   int64     `json:"totalRecords"`
	WithExternalID int64     `json:"withExternalId"`
	OldestUpdate   time.Time `json:"oldestUpdate,omitzero"`
	NewestUpdate   time.Time `json:"newestUpdate,omitzero"`
}

// Stats reports cache-wide counters.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var (
		stats     Stats
		oldestRaw sql.NullString
		newestRaw sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(1),
       COALESCE(SUM(CASE WHEN external_id != '' THEN 1 ELSE 0 END), 0),
       MIN(updated_at),
       MAX(updated_at)
FROM rating_records`).Scan(&stats.TotalRecords, &stats.WithExternalID, &oldestRaw, &newestRaw)
	if err != nil {
		return Stats{}, fmt.Errorf("read stats: %w", err)
	}
	if parsed, parseErr := parseTimeString(oldestRaw.String); parseErr == nil {
		stats.OldestUpdate = parsed
	}
	if parsed, parseErr := parseTimeString(newestRaw.String); parseErr == nil {
		stats.NewestUpdate = parsed
	}
	return stats, nil
}

// Clear removes every stored record.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.execWithRetry(ctx, "DELETE FROM rating_records"); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	return nil
}
