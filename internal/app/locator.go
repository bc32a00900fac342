package app

import (
	"sort"
	"strings"

	"bin_collection_notifier/internal/domain/browser"
)

// Attribute tokens that suggest a control is the address-entry field.
var addressTokens = map[string]int{
	"address":  4,
	"postcode": 3,
	"lookup":   2,
	"find":     2,
	"search":   2,
}

// Input types that mark a control as something else entirely.
var dateLikeTypes = map[string]bool{
	"date":           true,
	"time":           true,
	"datetime-local": true,
	"month":          true,
	"week":           true,
}

// RankAddressInputs scores the visible input-like controls and returns them
// best-first. Pure function of the snapshot: no DOM access, so it can be
// exercised directly against synthetic fixtures.
func RankAddressInputs(controls []browser.Control) []browser.Control {
	type scored struct {
		ctrl  browser.Control
		score int
		pos   int
	}
	var ranked []scored
	for i, c := range controls {
		if !c.Visible {
			continue
		}
		ranked = append(ranked, scored{ctrl: c, score: scoreControl(c), pos: i})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})
	out := make([]browser.Control, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.ctrl)
	}
	return out
}

func scoreControl(c browser.Control) int {
	attrs := strings.ToLower(strings.Join([]string{c.Name, c.ID, c.Placeholder, c.Class}, " "))
	score := 0
	for token, weight := range addressTokens {
		if strings.Contains(attrs, token) {
			score += weight
		}
	}
	context := strings.ToLower(c.ContextText)
	if strings.Contains(context, "address") || strings.Contains(context, "postcode") {
		score += 2
	}
	typ := strings.ToLower(strings.TrimSpace(c.Type))
	if dateLikeTypes[typ] {
		score -= 5
	}
	if typ == "" || typ == "text" || typ == "search" {
		score++
	}
	return score
}
