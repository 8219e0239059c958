package resolve

import (
	"math"
	"strings"
)

// typeMatches reports whether the provider's media type is compatible with the
// requested entity type. Episodes satisfy a series request because providers
// occasionally index a show under its pilot. When either side is unknown the
// check is skipped.
func typeMatches(requested, reported string) bool {
	requested = strings.ToLower(strings.TrimSpace(requested))
	reported = strings.ToLower(strings.TrimSpace(reported))
	if requested == "" || reported == "" {
		return true
	}
	return seriesLike(requested) == seriesLike(reported)
}

func seriesLike(mediaType string) bool {
	switch mediaType {
	case "series", "episode", "show", "tv":
		return true
	}
	return false
}

// mismatches reports whether a caller-observed verification rating disagrees
// with a candidate rating by at least the tolerance. A nil verification
// rating never mismatches.
func mismatches(verification *float64, rating, tolerance float64) bool {
	if verification == nil {
		return false
	}
	return math.Abs(*verification-rating) >= tolerance
}
