package ratings

// Merge combines an existing cached record with a refreshed one fetched by
// external id. The refreshed numeric fields (rating, secondary rating, vote
// count) and the external id always win; title, year, and release date fall
// back to the existing record whenever the provider now reports them unknown.
// UpdatedAt is taken from the incoming record.
func Merge(existing, incoming Record) Record {
	merged := incoming
	merged.Key = existing.Key
	if merged.ExternalID == "" {
		merged.ExternalID = existing.ExternalID
	}
	if merged.Title == "" {
		merged.Title = existing.Title
	}
	if merged.Year == 0 {
		merged.Year = existing.Year
	}
	if merged.ReleaseDate.IsZero() {
		merged.ReleaseDate = existing.ReleaseDate
	}
	return merged
}
