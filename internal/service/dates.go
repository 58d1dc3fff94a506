package service

import (
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial dates count days since 1899-12-30. Serials outside this
// window, or serials landing outside 1900..2100, are treated as garbage and
// parse to nil instead of failing the row.
const (
	serialDateMin = 1
	serialDateMax = 100000
	yearMin       = 1900
	yearMax       = 2100
)

var serialDateEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"01/02/2006",
}

// ParseFlexibleDate accepts the date shapes announcement spreadsheets carry:
// an ISO or locale date string, or a numeric spreadsheet serial. The serial
// gets half a day added so timezone rounding cannot roll the date back.
// Unparseable or out-of-range values yield nil, never an error.
func ParseFlexibleDate(value interface{}) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return checkedDate(v)
	case float64:
		return parseSerialDate(v)
	case int:
		return parseSerialDate(float64(v))
	case string:
		return parseDateString(v)
	default:
		return nil
	}
}

func parseDateString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return parseSerialDate(serial)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return checkedDate(t)
		}
	}
	return nil
}

func parseSerialDate(serial float64) *time.Time {
	if serial < serialDateMin || serial > serialDateMax {
		return nil
	}
	t := serialDateEpoch.Add(time.Duration((serial + 0.5) * 24 * float64(time.Hour)))
	t = t.Truncate(24 * time.Hour)
	return checkedDate(t)
}

func checkedDate(t time.Time) *time.Time {
	if t.Year() < yearMin || t.Year() > yearMax {
		return nil
	}
	return &t
}
