// Package aggregate derives totals, daily series and peaks from a Dataset.
// All functions are pure; they rely on the dataset being in ascending date
// order and never re-sort.
package aggregate

import (
	"gonum.org/v1/gonum/stat"

	"epitrend/internal/dataset"
	"epitrend/internal/domain"
)

// GlobalName labels aggregates computed over every entity.
const GlobalName = "Global"

// EntityTotals sums cases and deaths of one entity. Unknown or blank ids yield
// zero totals and an undefined rate.
func EntityTotals(ds *dataset.Dataset, entityID string) domain.EntityAggregate {
	agg := domain.EntityAggregate{EntityID: entityID}
	if name, ok := ds.EntityName(entityID); ok {
		agg.EntityName = name
	}
	for _, r := range ds.Filter(entityID) {
		agg.TotalCases += r.Cases
		agg.TotalDeaths += r.Deaths
	}
	return agg
}

// GlobalTotals sums cases and deaths over the whole dataset.
func GlobalTotals(ds *dataset.Dataset) domain.EntityAggregate {
	agg := domain.EntityAggregate{EntityName: GlobalName}
	for _, r := range ds.Records() {
		agg.TotalCases += r.Cases
		agg.TotalDeaths += r.Deaths
	}
	return agg
}

// GlobalDaily groups the records by date and sums each day across entities.
func GlobalDaily(ds *dataset.Dataset) domain.Series {
	var series domain.Series
	for _, r := range ds.Records() {
		if n := len(series); n > 0 && series[n-1].Date.Equal(r.Date) {
			series[n-1].Cases += r.Cases
			series[n-1].Deaths += r.Deaths
			continue
		}
		series = append(series, domain.DailyPoint{Date: r.Date, Cases: r.Cases, Deaths: r.Deaths})
	}
	return series
}

// EntityDaily returns one entity's records as a daily series.
func EntityDaily(ds *dataset.Dataset, entityID string) domain.Series {
	records := ds.Filter(entityID)
	series := make(domain.Series, 0, len(records))
	for _, r := range records {
		series = append(series, domain.DailyPoint{Date: r.Date, Cases: r.Cases, Deaths: r.Deaths})
	}
	return series
}

// Cumulative returns the running sums of series, scanning left to right.
func Cumulative(series domain.Series) domain.Series {
	out := make(domain.Series, len(series))
	var cases, deaths int64
	for i, p := range series {
		cases += p.Cases
		deaths += p.Deaths
		out[i] = domain.DailyPoint{Date: p.Date, Cases: cases, Deaths: deaths}
	}
	return out
}

// Peak returns the first point at which field reaches its maximum over series.
// ok is false for an empty series.
func Peak(series domain.Series, field domain.Field) (peak domain.PeakPoint, ok bool) {
	for i, p := range series {
		v := p.Value(field)
		if i == 0 || v > peak.Value {
			peak = domain.PeakPoint{Field: field, Date: p.Date, Value: v}
		}
	}
	return peak, len(series) > 0
}

// Describe summarises the per-record cases and deaths columns.
func Describe(ds *dataset.Dataset) domain.Description {
	records := ds.Records()
	cases := make([]float64, len(records))
	deaths := make([]float64, len(records))
	for i, r := range records {
		cases[i] = float64(r.Cases)
		deaths[i] = float64(r.Deaths)
	}
	return domain.Description{
		Cases:  summarize(cases),
		Deaths: summarize(deaths),
	}
}

func summarize(values []float64) domain.FieldSummary {
	s := domain.FieldSummary{Count: len(values)}
	if len(values) == 0 {
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		s.StdDev = 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	s.Min, s.Max = int64(lo), int64(hi)
	return s
}
