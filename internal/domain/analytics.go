package domain

import "time"

// DailyPoint holds the case and death figures for one calendar day. Depending
// on the producer the values are per-day sums or running totals.
type DailyPoint struct {
	Date   time.Time
	Cases  int64
	Deaths int64
}

// Value returns the figure selected by field.
func (p DailyPoint) Value(field Field) int64 {
	if field == FieldDeaths {
		return p.Deaths
	}
	return p.Cases
}

// Series is an ascending-by-date sequence of daily points.
type Series []DailyPoint

// PeakPoint marks the first date at which a series reaches its maximum.
type PeakPoint struct {
	Field Field
	Date  time.Time
	Value int64
}

// EntityAggregate stores the totals of one entity, or of the whole dataset
// when EntityID is empty.
type EntityAggregate struct {
	EntityID    string
	EntityName  string
	TotalCases  int64
	TotalDeaths int64
}

// CaseFatalityRate returns deaths/cases. ok is false when no cases were
// reported, in which case the rate is undefined.
func (a EntityAggregate) CaseFatalityRate() (rate float64, ok bool) {
	if a.TotalCases == 0 {
		return 0, false
	}
	return float64(a.TotalDeaths) / float64(a.TotalCases), true
}

// FieldSummary describes the distribution of one numeric column.
type FieldSummary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    int64
	Max    int64
}

// Description mirrors a tabular describe() over the daily records.
type Description struct {
	Cases  FieldSummary
	Deaths FieldSummary
}
