package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"epitrend/internal/domain"
)

// Source column names of the ECDC case distribution CSV.
const (
	ColDate       = "dateRep"
	ColCases      = "cases"
	ColDeaths     = "deaths"
	ColEntityName = "countriesAndTerritories"
	ColEntityID   = "geoId"
	ColEntityCode = "countryterritoryCode"
)

// DateLayout is the day/month/year format of the date column. Single digit
// days and months are accepted.
const DateLayout = "2/1/2006"

var requiredColumns = []string{ColDate, ColCases, ColDeaths, ColEntityName, ColEntityID, ColEntityCode}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse turns raw CSV bytes into a Dataset. The upstream file is published
// newest first, so rows are reversed and then stable-sorted by date.
func Parse(raw []byte) (*Dataset, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset: empty file: %w", domain.ErrDataIntegrity)
		}
		return nil, fmt.Errorf("dataset: read header: %w: %w", domain.ErrParse, err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: %w: %w", domain.ErrParse, err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	slices.Reverse(records)
	slices.SortStableFunc(records, func(a, b domain.Record) int {
		return a.Date.Compare(b.Date)
	})
	return newDataset(records), nil
}

type columns struct {
	date, cases, deaths, name, id, code int
}

func columnIndex(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := pos[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("dataset: missing columns %s: %w", strings.Join(missing, ", "), domain.ErrDataIntegrity)
	}
	return columns{
		date:   pos[ColDate],
		cases:  pos[ColCases],
		deaths: pos[ColDeaths],
		name:   pos[ColEntityName],
		id:     pos[ColEntityID],
		code:   pos[ColEntityCode],
	}, nil
}

func parseRow(row []string, idx columns) (domain.Record, error) {
	field := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := ParseDate(field(idx.date))
	if err != nil {
		return domain.Record{}, err
	}
	cases, err := parseCount(ColCases, field(idx.cases))
	if err != nil {
		return domain.Record{}, err
	}
	deaths, err := parseCount(ColDeaths, field(idx.deaths))
	if err != nil {
		return domain.Record{}, err
	}
	return domain.Record{
		Date:       date,
		EntityID:   field(idx.id),
		EntityName: field(idx.name),
		EntityCode: field(idx.code),
		Cases:      cases,
		Deaths:     deaths,
	}, nil
}

// ParseDate parses a day/month/year string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, domain.ErrParse)
	}
	return t, nil
}

// parseCount reads an integer column. Blank cells mean nothing was reported.
func parseCount(col, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", col, s, domain.ErrParse)
	}
	return n, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
