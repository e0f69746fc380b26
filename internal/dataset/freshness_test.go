package dataset

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"epitrend/internal/domain"
)

func datasetWithUSAt(t *testing.T, d time.Time) *Dataset {
	t.Helper()
	raw := header +
		fmt.Sprintf("%s,0,0,0,100,2,United_States_of_America,US,USA,1\n", d.Format(DateLayout)) +
		fmt.Sprintf("%s,0,0,0,90,1,United_States_of_America,US,USA,1\n", d.AddDate(0, 0, -1).Format(DateLayout))
	ds, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return ds
}

func TestCheckFreshnessStale(t *testing.T) {
	now := time.Date(2021, 3, 10, 15, 30, 0, 0, time.UTC)
	ds := datasetWithUSAt(t, now.AddDate(0, 0, -3))

	report, err := CheckFreshness(ds, "US", now)
	if err != nil {
		t.Fatalf("CheckFreshness error: %v", err)
	}
	if report.Status != Stale {
		t.Fatalf("status = %s, want stale", report.Status)
	}
	if report.AgeDays != 3 {
		t.Fatalf("AgeDays = %d, want 3", report.AgeDays)
	}
}

func TestCheckFreshnessFresh(t *testing.T) {
	now := time.Date(2021, 3, 10, 0, 5, 0, 0, time.UTC)
	for _, lag := range []int{0, 1} {
		ds := datasetWithUSAt(t, now.AddDate(0, 0, -lag))
		report, err := CheckFreshness(ds, "US", now)
		if err != nil {
			t.Fatalf("CheckFreshness error: %v", err)
		}
		if report.Status != Fresh {
			t.Fatalf("lag %d: status = %s, want fresh", lag, report.Status)
		}
	}
}

func TestCheckFreshnessUsesLocalCalendarDay(t *testing.T) {
	taipei := time.FixedZone("CST", 8*3600)
	// 2021-03-12 01:00 in Taipei is still 2021-03-11 in UTC.
	now := time.Date(2021, 3, 12, 1, 0, 0, 0, taipei)
	ds := datasetWithUSAt(t, time.Date(2021, 3, 10, 0, 0, 0, 0, time.UTC))

	report, err := CheckFreshness(ds, "US", now)
	if err != nil {
		t.Fatalf("CheckFreshness error: %v", err)
	}
	if report.AgeDays != 2 || report.Status != Stale {
		t.Fatalf("got %+v, want 2 days stale", report)
	}
}

func TestCheckFreshnessMissingReference(t *testing.T) {
	ds := datasetWithUSAt(t, time.Date(2021, 3, 10, 0, 0, 0, 0, time.UTC))
	if _, err := CheckFreshness(ds, "GB", time.Now()); !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}
