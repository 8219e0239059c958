package ratings

import (
	"testing"
	"time"

	"marquee/internal/config"
)

func TestIsStaleRecentReleaseBoundary(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	release := now.AddDate(0, 0, -7)

	fresh := now.Add(-59 * time.Minute)
	if policy.IsStale(release, fresh, now) {
		t.Fatal("record updated 59 minutes ago should be fresh in the one-hour tier")
	}

	stale := now.Add(-61 * time.Minute)
	if !policy.IsStale(release, stale, now) {
		t.Fatal("record updated 61 minutes ago should be stale in the one-hour tier")
	}
}

func TestIsStaleTierSwitchAtTwoWeeks(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	updated := now.Add(-48 * time.Hour)

	// 14 days since release: one-day TTL, 48h old update is stale.
	if !policy.IsStale(now.AddDate(0, 0, -14), updated, now) {
		t.Fatal("expected stale under the one-day tier")
	}

	// 15 days since release: thirty-day TTL, same update is fresh.
	if policy.IsStale(now.AddDate(0, 0, -15), updated, now) {
		t.Fatal("expected fresh under the thirty-day tier")
	}
}

func TestIsStaleMissingReleaseDateFailsOpen(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Now().UTC()
	if !policy.IsStale(time.Time{}, now, now) {
		t.Fatal("missing release date must be treated as stale")
	}
	if !policy.IsStale(now, time.Time{}, now) {
		t.Fatal("missing update time must be treated as stale")
	}
}

func TestPolicyFromConfigMatchesTiers(t *testing.T) {
	policy := PolicyFromConfig(config.TTL{
		RecentWindowDays:  2,
		RecentTTLMinutes:  5,
		SettledWindowDays: 4,
		SettledTTLHours:   1,
		ArchiveTTLDays:    10,
	})
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	if got := policy.ttlFor(now.Sub(now.AddDate(0, 0, -1))); got != 5*time.Minute {
		t.Fatalf("day-old release: got ttl %v", got)
	}
	if got := policy.ttlFor(now.Sub(now.AddDate(0, 0, -3))); got != time.Hour {
		t.Fatalf("three-day release: got ttl %v", got)
	}
	if got := policy.ttlFor(now.Sub(now.AddDate(0, 0, -30))); got != 10*24*time.Hour {
		t.Fatalf("month-old release: got ttl %v", got)
	}
}
