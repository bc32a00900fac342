package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1: "st", 2: "nd", 3: "rd", 4: "th",
		11: "th", 12: "th", 13: "th",
		21: "st", 22: "nd", 23: "rd", 31: "st",
	}
	for day, want := range cases {
		assert.Equal(t, want, Ordinal(day), "day %d", day)
	}
}

func TestFormatLongDate(t *testing.T) {
	d := time.Date(2025, time.September, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "11th September 2025", FormatLongDate(d))
	assert.Equal(t, "1st March 2026", FormatLongDate(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCompose(t *testing.T) {
	date := time.Date(2025, time.September, 11, 0, 0, 0, 0, time.UTC)

	t.Run("Should embed bins and the long date in the subject", func(t *testing.T) {
		msg := Compose(date, true, "12 High Street", []string{"General Waste"}, "", "", "")
		assert.Contains(t, msg.Subject, "General Waste")
		assert.Contains(t, msg.Subject, "11th September 2025")
		assert.Contains(t, msg.Subject, "tomorrow")
	})

	t.Run("Should mark non-target announcements as upcoming, not tomorrow", func(t *testing.T) {
		msg := Compose(date, false, "12 High Street", []string{"Recycling"}, "", "", "")
		assert.NotContains(t, msg.Subject, "tomorrow")
		assert.Contains(t, msg.Subject, "Upcoming")
	})

	t.Run("Should separate summary, suffix and aside with blank lines", func(t *testing.T) {
		msg := Compose(date, true, "12 High Street", []string{"General Waste", "Recycling"},
			"Remember to rinse the recycling.", "", "Why did the bin cross the road?")
		assert.Equal(t,
			"Collection for 12 High Street on 11th September 2025: General Waste, Recycling.\n\n"+
				"Remember to rinse the recycling.\n\n"+
				"Why did the bin cross the road?",
			msg.PlainText)
	})

	t.Run("Should prefer retained table markup in the HTML body", func(t *testing.T) {
		table := "<table><tr><td>11/9/2025</td><td>General Waste</td></tr></table>"
		msg := Compose(date, true, "12 High Street", []string{"General Waste"}, "", table, "")
		assert.Contains(t, msg.HTMLBody, table)
	})

	t.Run("Should escape free text in the HTML body", func(t *testing.T) {
		msg := Compose(date, true, "12 <High> Street", []string{"General Waste"}, "", "", "a < b")
		assert.NotContains(t, msg.HTMLBody, "<High>")
		assert.Contains(t, msg.HTMLBody, "&lt;High&gt;")
		assert.Contains(t, msg.HTMLBody, "a &lt; b")
	})
}
