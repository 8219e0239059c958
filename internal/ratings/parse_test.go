package ratings

import (
	"testing"
	"time"
)

func TestParseRating(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"7.8", 7.8},
		{" 9.0 ", 9.0},
		{"N/A", 0},
		{"n/a", 0},
		{"", 0},
		{"garbage", 0},
		{"-1", 0},
	}
	for _, tc := range cases {
		if got := ParseRating(tc.input); got != tc.want {
			t.Errorf("ParseRating(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseVotesStripsSeparators(t *testing.T) {
	if got := ParseVotes("1,234,567"); got != 1234567 {
		t.Fatalf("ParseVotes = %d, want 1234567", got)
	}
	if got := ParseVotes("N/A"); got != 0 {
		t.Fatalf("ParseVotes(N/A) = %d, want 0", got)
	}
}

func TestParseYearHandlesSeriesRanges(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"2015", 2015},
		{"2015–2019", 2015},
		{"2015-", 2015},
		{"N/A", 0},
		{"??", 0},
	}
	for _, tc := range cases {
		if got := ParseYear(tc.input); got != tc.want {
			t.Errorf("ParseYear(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseReleaseDateLayouts(t *testing.T) {
	parsed, ok := ParseReleaseDate("12 Jun 2015")
	if !ok {
		t.Fatal("expected provider layout to parse")
	}
	if parsed.Year() != 2015 || parsed.Month() != time.June || parsed.Day() != 12 {
		t.Fatalf("unexpected date: %v", parsed)
	}

	if _, ok := ParseReleaseDate("2006-05-03"); !ok {
		t.Fatal("expected ISO date to parse")
	}
	if _, ok := ParseReleaseDate("N/A"); ok {
		t.Fatal("expected N/A to be unknown")
	}
}
