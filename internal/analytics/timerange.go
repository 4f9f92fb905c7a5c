package analytics

import (
	"errors"
	"time"
)

type TimeRange string

const (
	Range7Days  TimeRange = "7d"
	Range30Days TimeRange = "30d"
	Range90Days TimeRange = "90d"
	Range1Year  TimeRange = "1y"
	RangeAll    TimeRange = "all"
)

var ErrInvalidTimeRange = errors.New("timeRange must be one of 7d, 30d, 90d, 1y, all")

// ParseTimeRange defaults to 30d.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(s); r {
	case "":
		return Range30Days, nil
	case Range7Days, Range30Days, Range90Days, Range1Year, RangeAll:
		return r, nil
	}
	return "", ErrInvalidTimeRange
}

// Bounds returns the inclusive window ending at now. From is nil for all.
func (r TimeRange) Bounds(now time.Time) (from *time.Time, to time.Time) {
	var start time.Time
	switch r {
	case Range7Days:
		start = now.AddDate(0, 0, -7)
	case Range30Days:
		start = now.AddDate(0, 0, -30)
	case Range90Days:
		start = now.AddDate(0, 0, -90)
	case Range1Year:
		start = now.AddDate(-1, 0, 0)
	default:
		return nil, now
	}
	return &start, now
}
