package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunSummary_String(t *testing.T) {
	started := time.Date(2025, time.September, 10, 19, 0, 0, 0, time.UTC)
	summary := &RunSummary{
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Force:      false,
		Outcomes: []Outcome{
			{
				Label:        "12 High Street",
				Status:       OutcomeSent,
				AnnounceDate: time.Date(2025, time.September, 11, 0, 0, 0, 0, time.UTC),
				Recipients:   2,
				Delivered:    1,
			},
			{Label: "3 Mill Lane", Status: OutcomeSkipped, Reason: "already notified for target date"},
			{Label: "1 Broken Way", Status: OutcomeFailed, Err: errors.New("browser crashed")},
		},
	}

	out := summary.String()
	assert.Contains(t, out, "Run 2025-09-10 19:00 (force=false, 1m30s)")
	assert.Contains(t, out, "12 High Street: sent 1/2 for 2025-09-11")
	assert.Contains(t, out, "3 Mill Lane: skipped (already notified for target date)")
	assert.Contains(t, out, "1 Broken Way: failed (browser crashed)")
}
