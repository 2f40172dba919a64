package utils

import (
	"strconv"
	"strings"
	"time"
)

// Constants
const (
	ISO_DATE_LAYOUT = "2006-01-02"
)

// DateParts holds the raw day, month and year of a DD/MM/YYYY string
type DateParts struct {
	Day   int
	Month int
	Year  int
}

// SplitManifestDate splits a DD/MM/YYYY string into its three numeric parts.
// It fails when the string does not have exactly three slash separated
// components or when any component is not a number.
func SplitManifestDate(value string) (DateParts, bool) {
	parts := strings.Split(strings.TrimSpace(value), "/")
	if len(parts) != 3 {
		return DateParts{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return DateParts{}, false
		}
		nums[i] = n
	}

	return DateParts{Day: nums[0], Month: nums[1], Year: nums[2]}, true
}

// ParseManifestDate converts DD/MM/YYYY text to a UTC calendar date.
// Out of range days and months roll over the way time.Date normalizes them.
func ParseManifestDate(value string) (time.Time, bool) {
	parts, ok := SplitManifestDate(value)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(parts.Year, time.Month(parts.Month), parts.Day, 0, 0, 0, 0, time.UTC), true
}

// ParseISODate parses YYYY-MM-DD into a UTC calendar date. Empty input yields the zero time.
func ParseISODate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(ISO_DATE_LAYOUT, value)
}

// CalendarDate truncates t to midnight UTC of its own calendar day
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
