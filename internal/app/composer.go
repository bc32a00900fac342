package app

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Message is the composed notification content for one address.
type Message struct {
	Subject   string
	PlainText string
	HTMLBody  string
}

// Compose builds the outgoing message for an announce date. Pure function:
// no clock, no I/O. tableHTML, suffix and aside are all optional.
func Compose(announceDate time.Time, isTarget bool, label string, bins []string, suffix, tableHTML, aside string) Message {
	date := FormatLongDate(announceDate)
	binList := strings.Join(bins, ", ")

	var subject string
	if isTarget {
		subject = fmt.Sprintf("Bin collection tomorrow: %s (%s)", binList, date)
	} else {
		subject = fmt.Sprintf("Upcoming bin collection: %s (%s)", binList, date)
	}

	summary := fmt.Sprintf("Collection for %s on %s: %s.", label, date, binList)
	parts := []string{summary}
	if suffix != "" {
		parts = append(parts, suffix)
	}
	if aside != "" {
		parts = append(parts, aside)
	}
	plain := strings.Join(parts, "\n\n")

	var htmlBody strings.Builder
	htmlBody.WriteString("<p>" + html.EscapeString(summary) + "</p>")
	if tableHTML != "" {
		// Retained verbatim: this is the site's own rendering of the
		// schedule. Everything else stays escaped.
		htmlBody.WriteString(tableHTML)
	}
	if suffix != "" {
		htmlBody.WriteString("<p>" + html.EscapeString(suffix) + "</p>")
	}
	if aside != "" {
		htmlBody.WriteString("<p><em>" + html.EscapeString(aside) + "</em></p>")
	}

	return Message{Subject: subject, PlainText: plain, HTMLBody: htmlBody.String()}
}

// FormatLongDate renders a calendar date as e.g. "11th September 2025".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d%s %s %d", t.Day(), Ordinal(t.Day()), t.Month(), t.Year())
}

// Ordinal returns the English ordinal suffix for a day of month.
func Ordinal(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
