package notification

import (
	"time"

	"bin_collection_notifier/internal/domain/schedule"
)

// RunContext carries the time frame of one run. Immutable once built.
type RunContext struct {
	NowLocal   time.Time // now in the configured zone
	TargetDate time.Time // the date the run normally notifies about
	Force      bool      // bypass the tomorrow-only and already-notified gates
}

// NewRunContext builds the context for a run starting now: the target date
// is tomorrow in loc.
func NewRunContext(now time.Time, loc *time.Location, force bool) RunContext {
	local := now.In(loc)
	tomorrow := startOfDay(local, loc).AddDate(0, 0, 1)
	return RunContext{NowLocal: local, TargetDate: tomorrow, Force: force}
}

// Decision is the gate's verdict for one address.
type Decision struct {
	Announce     bool
	AnnounceDate time.Time
	IsTarget     bool // announce date equals the run's target date
	Bins         []string
	Reason       string // populated when Announce is false
}

// Decide applies the notification gate. Pure: the same schedule, context and
// stored state always produce the same decision. Persisting state after a
// successful send is the caller's job, and only on the non-forced
// target-date path, so a crash or send failure never advances state.
func Decide(sched schedule.Schedule, rc RunContext, prior *State) Decision {
	_, hasTarget := sched.EntryOn(rc.TargetDate)

	if !rc.Force {
		if !hasTarget {
			return Decision{Reason: "no collection on target date"}
		}
		if prior != nil && sameDay(prior.LastNotified, rc.TargetDate) {
			return Decision{Reason: "already notified for target date"}
		}
	}

	announceDate := rc.TargetDate
	if !hasTarget {
		// Only reachable in force mode: fall forward to the earliest
		// upcoming entry.
		next, ok := earliestOnOrAfter(sched, startOfDay(rc.NowLocal, rc.NowLocal.Location()))
		if !ok {
			return Decision{Reason: "no upcoming collections"}
		}
		announceDate = next
	}

	bins := binsFor(sched, announceDate)
	return Decision{
		Announce:     true,
		AnnounceDate: announceDate,
		IsTarget:     sameDay(announceDate, rc.TargetDate),
		Bins:         bins,
	}
}

// binsFor returns the bins for the announce date, falling back to the union
// across the whole schedule if no entry matches exactly.
func binsFor(sched schedule.Schedule, date time.Time) []string {
	if entry, ok := sched.EntryOn(date); ok {
		return entry.Bins
	}
	return sched.AllBins()
}

func earliestOnOrAfter(sched schedule.Schedule, from time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, e := range sched.Entries {
		if e.LocalDate.Before(from) {
			continue
		}
		if !found || e.LocalDate.Before(best) {
			best = e.LocalDate
			found = true
		}
	}
	return best, found
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
