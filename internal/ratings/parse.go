package ratings

import (
	"strconv"
	"strings"
	"time"
)

// Provider fields arrive as display strings ("N/A", "1,234,567",
// "2015–2019"); everything here coerces unparsable input to the zero value
// rather than failing.

const notAvailable = "N/A"

// ParseRating parses a provider rating string such as "7.8". Unknown or
// malformed values coerce to 0.
func ParseRating(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, notAvailable) {
		return 0
	}
	rating, err := strconv.ParseFloat(value, 64)
	if err != nil || rating < 0 {
		return 0
	}
	return rating
}

// ParseVotes parses a vote count string, stripping thousands separators.
func ParseVotes(value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, notAvailable) {
		return 0
	}
	value = strings.ReplaceAll(value, ",", "")
	votes, err := strconv.ParseInt(value, 10, 64)
	if err != nil || votes < 0 {
		return 0
	}
	return votes
}

// ParseYear parses a release year. Series year ranges like "2015–2019" or
// "2015-" yield the first year.
func ParseYear(value string) int {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, notAvailable) {
		return 0
	}
	if len(value) > 4 {
		value = value[:4]
	}
	year, err := strconv.Atoi(value)
	if err != nil || year < 0 {
		return 0
	}
	return year
}

// releaseDateLayouts covers the provider's "02 Jan 2006" display format plus
// ISO dates that appear in older cache rows.
var releaseDateLayouts = []string{
	"02 Jan 2006",
	"2006-01-02",
	time.RFC3339,
}

// ParseReleaseDate parses a provider release date. The boolean is false when
// the value is unknown or unparsable.
func ParseReleaseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, notAvailable) {
		return time.Time{}, false
	}
	for _, layout := range releaseDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
