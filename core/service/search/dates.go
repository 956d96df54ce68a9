// Package search builds store queries from user-level search requests.
package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	canonicalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	lastNDaysRe     = regexp.MustCompile(`^(?:last|past)\s+(\d+)\s+days?$`)
	lastNWeeksRe    = regexp.MustCompile(`^(?:last|past)\s+(\d+)\s+weeks?$`)
	nDaysAgoRe      = regexp.MustCompile(`^(\d+)\s+days?\s+ago$`)
)

// NormalizeDate converts a relative date expression to a canonical
// YYYY-MM-DD string, evaluated against the given reference time.
// Canonical inputs pass through unchanged. Expressions that match no
// known pattern are returned verbatim so the caller can decide; this
// function never fails.
func NormalizeDate(input string, now time.Time) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if canonicalDateRe.MatchString(trimmed) {
		return trimmed
	}

	lower := strings.ToLower(trimmed)
	switch lower {
	case "today":
		return now.Format(dateLayout)
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(dateLayout)
	case "last week", "past week", "this week":
		return now.AddDate(0, 0, -7).Format(dateLayout)
	case "last month", "past month", "this month":
		return now.AddDate(0, 0, -30).Format(dateLayout)
	}

	if m := lastNDaysRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return now.AddDate(0, 0, -n).Format(dateLayout)
		}
	}
	if m := nDaysAgoRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return now.AddDate(0, 0, -n).Format(dateLayout)
		}
	}
	if m := lastNWeeksRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return now.AddDate(0, 0, -7*n).Format(dateLayout)
		}
	}

	// Unrecognized expression: hand back the original, not the lowered copy.
	return trimmed
}
