// Package parse turns raw spreadsheet exports into typed records. It owns
// the duration/year/status normalizers and the four source-specific
// extractors. Normalizers never fail: malformed input degrades to a safe
// default so a dirty row is ingested rather than rejected.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clockRe       = regexp.MustCompile(`^(\d+):(\d{2})(?::(\d{2}))?$`)
	simpleClockRe = regexp.MustCompile(`^(\d+):(\d+)$`)
	dateTimeRe    = regexp.MustCompile(`(?i)^(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM)$`)
	yearRe        = regexp.MustCompile(`(\d{4})`)
	coursesRe     = regexp.MustCompile(`(?i)\s*Courses\s*$`)
)

// NormalizeDuration converts a raw cell value into decimal hours. It never
// fails; unparseable or empty input yields 0.
//
// Branches, first match wins:
//   - "H:MM[:SS]" clock strings are durations ("39:45" is 39h45m, not a
//     time of day).
//   - "M/D/YYYY H:MM[:SS] AM|PM" with year 1900 is an Excel duration serial
//     rendered as a date-time: (day-1) whole days plus the time component.
//     Any other year is a genuine timestamp and only its time-of-day
//     component is kept, matching the source data's best-effort handling.
//   - Plain decimals in [0, 10) are Excel day-fraction serials and are
//     multiplied by 24; values >= 10 are already decimal hours.
func NormalizeDuration(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}

	if hours, ok := parseClockLike(trimmed); ok {
		return hours
	}

	num, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}

	if num >= 0 && num < 10 {
		return num * 24
	}
	return num
}

func parseClockLike(value string) (float64, bool) {
	if m := clockRe.FindStringSubmatch(value); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds := 0
		if m[3] != "" {
			seconds, _ = strconv.Atoi(m[3])
		}
		return float64(hours) + float64(minutes)/60 + float64(seconds)/3600, true
	}

	if m := dateTimeRe.FindStringSubmatch(value); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second := 0
		if m[6] != "" {
			second, _ = strconv.Atoi(m[6])
		}
		ampm := strings.ToUpper(m[7])

		if ampm == "PM" && hour < 12 {
			hour += 12
		}
		if ampm == "AM" && hour == 12 {
			hour = 0
		}

		// 1900 dates are duration buckets (days + time), not real timestamps.
		if year == 1900 {
			dayBucket := day - 1
			if dayBucket < 0 {
				dayBucket = 0
			}
			return float64(dayBucket)*24 + float64(hour) + float64(minute)/60 + float64(second)/3600, true
		}

		// Genuine timestamp: keep the time-of-day component only when the
		// calendar date is real.
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if int(d.Month()) != month || d.Day() != day {
			return 0, false
		}
		return float64(hour) + float64(minute)/60 + float64(second)/3600, true
	}

	return 0, false
}

// parseSimpleHours handles granular per-entry time cells: "HH:MM" clock
// strings or plain decimal hours. The day-fraction heuristic of
// NormalizeDuration does not apply here - a single log entry under 10
// hours is ordinary, so decimals pass through unchanged.
func parseSimpleHours(raw string) float64 {
	if raw == "" {
		return 0
	}
	if m := simpleClockRe.FindStringSubmatch(raw); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		return float64(hours) + float64(minutes)/60
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return n
}

// NormalizeReportingYear extracts a canonical 4-digit year string from a
// free-text reporting value like "2022 Courses (45)". A malformed value
// degrades to its stripped text rather than being dropped.
func NormalizeReportingYear(raw string) string {
	text := strings.TrimSpace(coursesRe.ReplaceAllString(raw, ""))
	if m := yearRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}
