// Package schedule holds the normalized collection schedule for one address
// and the logic that produces it from scraped page content.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// CollectionEntry is a single pickup: a calendar date (midnight in the
// configured zone, no time-of-day) and the bin types collected on it.
// Immutable once produced by Extract.
type CollectionEntry struct {
	LocalDate time.Time
	Bins      []string
}

// Schedule is the ordered list of upcoming collections for one address.
// TableHTML is the raw markup of the table the entries came from, kept only
// so outgoing messages can embed it; it plays no part in decisions.
type Schedule struct {
	Entries   []CollectionEntry
	TableHTML string
}

// EntryOn returns the entry whose date equals the given calendar date.
func (s Schedule) EntryOn(date time.Time) (CollectionEntry, bool) {
	for _, e := range s.Entries {
		if sameDay(e.LocalDate, date) {
			return e, true
		}
	}
	return CollectionEntry{}, false
}

// AllBins returns the union of bin types across the whole schedule,
// first-seen order, no duplicates.
func (s Schedule) AllBins() []string {
	var bins []string
	seen := make(map[string]bool)
	for _, e := range s.Entries {
		for _, b := range e.Bins {
			if !seen[b] {
				seen[b] = true
				bins = append(bins, b)
			}
		}
	}
	return bins
}

// Summary renders the schedule as one line per entry, for the bounded
// snapshot stored alongside notification state.
func (s Schedule) Summary() string {
	var sb strings.Builder
	for _, e := range s.Entries {
		fmt.Fprintf(&sb, "%s: %s\n", e.LocalDate.Format("2006-01-02"), strings.Join(e.Bins, ", "))
	}
	return sb.String()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
