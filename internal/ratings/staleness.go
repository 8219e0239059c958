package ratings

import (
	"time"

	"marquee/internal/config"
)

// TTLTier maps an age-since-release window onto a refresh interval.
type TTLTier struct {
	// MaxAgeDays is the inclusive upper bound of the window. Zero or negative
	// marks the open-ended final tier.
	MaxAgeDays int
	TTL        time.Duration
}

// Policy decides when a cached record must be revalidated. Ratings of newly
// released titles move quickly as votes accumulate, so young titles get short
// TTLs; old titles are effectively immutable.
type Policy struct {
	Tiers []TTLTier
}

// DefaultPolicy returns the built-in three-tier policy: one hour within a
// week of release, one day up to two weeks, thirty days after that.
func DefaultPolicy() Policy {
	return Policy{Tiers: []TTLTier{
		{MaxAgeDays: 7, TTL: time.Hour},
		{MaxAgeDays: 14, TTL: 24 * time.Hour},
		{TTL: 30 * 24 * time.Hour},
	}}
}

// PolicyFromConfig builds a Policy from the configured TTL tiers.
func PolicyFromConfig(cfg config.TTL) Policy {
	return Policy{Tiers: []TTLTier{
		{MaxAgeDays: cfg.RecentWindowDays, TTL: time.Duration(cfg.RecentTTLMinutes) * time.Minute},
		{MaxAgeDays: cfg.SettledWindowDays, TTL: time.Duration(cfg.SettledTTLHours) * time.Hour},
		{TTL: time.Duration(cfg.ArchiveTTLDays) * 24 * time.Hour},
	}}
}

// IsStale reports whether a record last written at updatedAt needs a refresh
// as of now. A missing release date fails open toward refresh.
func (p Policy) IsStale(releaseDate, updatedAt, now time.Time) bool {
	if releaseDate.IsZero() || updatedAt.IsZero() {
		return true
	}
	ttl := p.ttlFor(now.Sub(releaseDate))
	return now.Sub(updatedAt) > ttl
}

func (p Policy) ttlFor(sinceRelease time.Duration) time.Duration {
	days := sinceRelease.Hours() / 24
	for _, tier := range p.Tiers {
		if tier.MaxAgeDays > 0 && days <= float64(tier.MaxAgeDays) {
			return tier.TTL
		}
		if tier.MaxAgeDays <= 0 {
			return tier.TTL
		}
	}
	if len(p.Tiers) > 0 {
		return p.Tiers[len(p.Tiers)-1].TTL
	}
	return 0
}
