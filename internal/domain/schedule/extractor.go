package schedule

import (
	"regexp"
	"strings"
	"time"

	"bin_collection_notifier/internal/domain/browser"
)

// resultsTableID is the identifier the form gives its collection-date table
// when it renders the layout we know about.
const resultsTableID = "collection-results"

var looseDateRe = regexp.MustCompile(
	`\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}|\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4}`)

// Extract turns the rendered results into a normalized Schedule. Primary
// path: the known results table, else the first table yielding rows with at
// least two meaningful cells. If that produces nothing, a line-scan of the
// page text is used as a coarse fallback so an unexpected rendering still
// yields something rather than a silent miss.
func Extract(tables []browser.Table, pageText string, loc *time.Location) Schedule {
	if sched, ok := extractFromTables(tables, loc); ok {
		return sched
	}
	return extractFromText(pageText, loc)
}

func extractFromTables(tables []browser.Table, loc *time.Location) (Schedule, bool) {
	if t, ok := pickTable(tables); ok {
		if sched, ok := tableSchedule(t, loc); ok {
			return sched, true
		}
	}
	// The known table may exist but be empty while another table carries
	// the data; try the rest before giving up.
	for _, t := range tables {
		if sched, ok := tableSchedule(t, loc); ok {
			return sched, true
		}
	}
	return Schedule{}, false
}

func pickTable(tables []browser.Table) (browser.Table, bool) {
	for _, t := range tables {
		if t.ID == resultsTableID {
			return t, true
		}
	}
	for _, t := range tables {
		for _, row := range t.Rows {
			if meaningfulCells(row) >= 2 {
				return t, true
			}
		}
	}
	return browser.Table{}, false
}

func tableSchedule(t browser.Table, loc *time.Location) (Schedule, bool) {
	merger := newEntryMerger()
	for _, row := range t.Rows {
		if len(row) < 2 {
			continue
		}
		dateText := strings.TrimSpace(spaceRe.ReplaceAllString(row[0], " "))
		binText := strings.TrimSpace(spaceRe.ReplaceAllString(row[1], " "))
		if dateText == "" || binText == "" {
			continue
		}
		if isHeaderRow(dateText, binText) {
			continue
		}
		date, ok := ParseLocalDate(dateText, loc)
		if !ok {
			continue
		}
		merger.add(date, binText)
	}
	entries := merger.entries()
	if len(entries) == 0 {
		return Schedule{}, false
	}
	return Schedule{Entries: entries, TableHTML: t.HTML}, true
}

// isHeaderRow detects the header pair heuristically: both cells read like
// column labels rather than data.
func isHeaderRow(first, second string) bool {
	f := strings.ToLower(first)
	s := strings.ToLower(second)
	return strings.Contains(f, "date") &&
		(strings.Contains(s, "collection") || strings.Contains(s, "bin") || strings.Contains(s, "service"))
}

// extractFromText is the fallback path: scan line by line for anything that
// looks like a date, and use the previous, matching and next lines as a
// pseudo bin-description. Coarser than the table path, but only ever fires
// when the table path found nothing.
func extractFromText(pageText string, loc *time.Location) Schedule {
	lines := strings.Split(pageText, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(lines[i], " "))
	}
	merger := newEntryMerger()
	for i, line := range lines {
		if line == "" || !looseDateRe.MatchString(line) {
			continue
		}
		date, ok := ParseLocalDate(looseDateRe.FindString(line), loc)
		if !ok {
			continue
		}
		var window []string
		for j := i - 1; j <= i+1; j++ {
			if j >= 0 && j < len(lines) && lines[j] != "" {
				window = append(window, lines[j])
			}
		}
		merger.add(date, strings.Join(window, " / "))
	}
	return Schedule{Entries: merger.entries()}
}

func meaningfulCells(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

// entryMerger folds rows into entries keyed by calendar date, keeping
// first-appearance order of both dates and bin strings.
type entryMerger struct {
	order []string
	byDay map[string]*CollectionEntry
	seen  map[string]map[string]bool
}

func newEntryMerger() *entryMerger {
	return &entryMerger{
		byDay: make(map[string]*CollectionEntry),
		seen:  make(map[string]map[string]bool),
	}
}

func (m *entryMerger) add(date time.Time, binText string) {
	key := date.Format("2006-01-02")
	entry, ok := m.byDay[key]
	if !ok {
		entry = &CollectionEntry{LocalDate: date}
		m.byDay[key] = entry
		m.seen[key] = make(map[string]bool)
		m.order = append(m.order, key)
	}
	if !m.seen[key][binText] {
		m.seen[key][binText] = true
		entry.Bins = append(entry.Bins, binText)
	}
}

func (m *entryMerger) entries() []CollectionEntry {
	var entries []CollectionEntry
	for _, key := range m.order {
		entries = append(entries, *m.byDay[key])
	}
	return entries
}
