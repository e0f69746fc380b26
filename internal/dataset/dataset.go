package dataset

import (
	"time"

	"epitrend/internal/domain"
)

// Dataset is the parsed, chronologically ordered content of the cache file.
// It is never mutated after Parse returns.
type Dataset struct {
	records  []domain.Record
	entities []string
	names    map[string]string
	first    time.Time
	last     time.Time
}

func newDataset(records []domain.Record) *Dataset {
	ds := &Dataset{
		records: records,
		names:   make(map[string]string),
	}
	for i, r := range records {
		if i == 0 || r.Date.Before(ds.first) {
			ds.first = r.Date
		}
		if i == 0 || r.Date.After(ds.last) {
			ds.last = r.Date
		}
		if _, ok := ds.names[r.EntityID]; !ok {
			ds.names[r.EntityID] = r.EntityName
			ds.entities = append(ds.entities, r.EntityID)
		}
	}
	return ds
}

// Records returns the records in ascending date order. The slice must not be
// modified by callers.
func (d *Dataset) Records() []domain.Record {
	if d == nil {
		return nil
	}
	return d.records
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// FirstDate returns the earliest date in the dataset.
func (d *Dataset) FirstDate() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.first
}

// LastDate returns the most recent date in the dataset.
func (d *Dataset) LastDate() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.last
}

// Entities returns the distinct entity ids in order of first appearance.
func (d *Dataset) Entities() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.entities...)
}

// EntityCount returns the number of distinct entities.
func (d *Dataset) EntityCount() int {
	if d == nil {
		return 0
	}
	return len(d.entities)
}

// EntityNames returns the display names of the distinct entities in the
// same order as Entities.
func (d *Dataset) EntityNames() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.entities))
	for _, id := range d.entities {
		out = append(out, d.names[id])
	}
	return out
}

// EntityName resolves the display name of id.
func (d *Dataset) EntityName(id string) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.names[id]
	return name, ok
}

// Filter returns the records of one entity, keeping ascending order.
func (d *Dataset) Filter(entityID string) []domain.Record {
	if d == nil || entityID == "" {
		return nil
	}
	var out []domain.Record
	for _, r := range d.records {
		if r.EntityID == entityID {
			out = append(out, r)
		}
	}
	return out
}

// LatestFor returns the most recent record of entityID.
func (d *Dataset) LatestFor(entityID string) (domain.Record, bool) {
	if d == nil {
		return domain.Record{}, false
	}
	var (
		latest domain.Record
		found  bool
	)
	for _, r := range d.records {
		if r.EntityID != entityID {
			continue
		}
		if !found || !r.Date.Before(latest.Date) {
			latest = r
			found = true
		}
	}
	return latest, found
}
