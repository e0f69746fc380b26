package domain

import "time"

// Record is a single daily report for one country or territory.
type Record struct {
	Date       time.Time
	EntityID   string
	EntityName string
	EntityCode string
	Cases      int64
	Deaths     int64
}

// Field selects a numeric column of a record or daily point.
type Field int

const (
	FieldCases Field = iota
	FieldDeaths
)

func (f Field) String() string {
	switch f {
	case FieldCases:
		return "cases"
	case FieldDeaths:
		return "deaths"
	default:
		return "unknown"
	}
}
