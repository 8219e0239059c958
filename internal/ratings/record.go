package ratings

import "time"

// Record is the canonical rating record for one tracked title. Key is the
// stable identifier of the title's source location and the only identity used
// for storage addressing.
type Record struct {
	Key             string    `json:"key"`
	ExternalID      string    `json:"externalId"`
	Title           string    `json:"title"`
	Year            int       `json:"year"`
	ReleaseDate     time.Time `json:"releaseDate"`
	Rating          float64   `json:"rating"`
	SecondaryRating string    `json:"secondaryRating,omitempty"`
	VoteCount       int64     `json:"voteCount"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasRating reports whether the record carries a usable numeric rating.
func (r Record) HasRating() bool {
	return r.Rating > 0
}
