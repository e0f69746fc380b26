package dataset

import (
	"fmt"
	"time"

	"epitrend/internal/domain"
)

// Freshness is the verdict of CheckFreshness.
type Freshness int

const (
	Fresh Freshness = iota
	Stale
)

func (f Freshness) String() string {
	if f == Stale {
		return "stale"
	}
	return "fresh"
}

// MaxAgeDays is the largest gap between the reference entity's latest record
// and today that still counts as fresh.
const MaxAgeDays = 1

// FreshnessReport carries the verdict together with the figures it was based on.
type FreshnessReport struct {
	Status     Freshness
	LatestDate time.Time
	AgeDays    int
}

// CheckFreshness decides whether the dataset needs a refetch by looking at the
// most recent record of referenceID. Only one entity is consulted, so an
// entity that reports with a structural lag makes the cache look stale.
func CheckFreshness(ds *Dataset, referenceID string, now time.Time) (FreshnessReport, error) {
	latest, ok := ds.LatestFor(referenceID)
	if !ok {
		return FreshnessReport{}, fmt.Errorf("dataset: reference entity %q not present: %w", referenceID, domain.ErrDataIntegrity)
	}
	age := DaysBetween(latest.Date, now)
	status := Fresh
	if age > MaxAgeDays {
		status = Stale
	}
	return FreshnessReport{Status: status, LatestDate: latest.Date, AgeDays: age}, nil
}

// DaysBetween counts whole calendar days from the date d to the calendar date
// of now in now's location.
func DaysBetween(d, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(day).Hours() / 24)
}
