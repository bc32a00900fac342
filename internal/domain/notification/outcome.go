package notification

import (
	"fmt"
	"strings"
	"time"
)

// OutcomeStatus classifies what happened for one address during a run.
type OutcomeStatus string

const (
	OutcomeSent    OutcomeStatus = "SENT"
	OutcomeSkipped OutcomeStatus = "SKIPPED"
	OutcomeFailed  OutcomeStatus = "FAILED"
)

// Outcome records the per-address result. Failures are collected here, not
// raised: one address must never abort the run.
type Outcome struct {
	Label        string
	Status       OutcomeStatus
	Reason       string // why skipped
	Err          error  // why failed
	AnnounceDate time.Time
	Recipients   int // recipients attempted
	Delivered    int // recipients that accepted the message
}

// RunSummary is the structured result of one complete run.
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Force      bool
	Outcomes   []Outcome
}

// Reporter delivers a run summary to an operational channel. Best effort;
// callers log and ignore its errors.
type Reporter interface {
	ReportSummary(summary *RunSummary) error
}

func (s *RunSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s (force=%v, %s)\n",
		s.StartedAt.Format("2006-01-02 15:04"), s.Force, s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	for _, o := range s.Outcomes {
		switch o.Status {
		case OutcomeSent:
			fmt.Fprintf(&sb, "  %s: sent %d/%d for %s\n",
				o.Label, o.Delivered, o.Recipients, o.AnnounceDate.Format("2006-01-02"))
		case OutcomeSkipped:
			fmt.Fprintf(&sb, "  %s: skipped (%s)\n", o.Label, o.Reason)
		case OutcomeFailed:
			fmt.Fprintf(&sb, "  %s: failed (%v)\n", o.Label, o.Err)
		}
	}
	return sb.String()
}
