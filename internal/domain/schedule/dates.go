package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts tried in priority order. The council site has rendered dates in
// every one of these shapes at some point.
var dateLayouts = []string{
	"2/1/2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02",
}

var (
	shortYearRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
	embeddedDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// ParseLocalDate parses heterogeneous date text into midnight of that
// calendar date in loc. Accepted, in priority order: D/M/YYYY, D/M/YY,
// D Mon YYYY (abbreviated or full month name), YYYY-MM-DD, and finally a
// D/M/YYYY substring embedded anywhere in the text. Returns false on total
// failure; callers skip the row rather than treating it as fatal.
func ParseLocalDate(text string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	// Two-digit years are pinned to a fixed pivot: 00-69 are 2000s,
	// 70-99 are 1900s.
	if m := shortYearRe.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[3])
		year := 1900 + yy
		if yy < 70 {
			year = 2000 + yy
		}
		return makeDate(m[1], m[2], year, loc)
	}
	if m := embeddedDateRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[3])
		return makeDate(m[1], m[2], year, loc)
	}
	return time.Time{}, false
}

// makeDate builds the date and rejects impossible day/month combinations
// (time.Date would silently normalize 31/2 into March).
func makeDate(dayStr, monthStr string, year int, loc *time.Location) (time.Time, bool) {
	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}
