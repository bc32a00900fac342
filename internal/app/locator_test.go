package app

import (
	"testing"

	"bin_collection_notifier/internal/domain/browser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankAddressInputs(t *testing.T) {
	t.Run("Should rank an address-named input above a generic one", func(t *testing.T) {
		controls := []browser.Control{
			{Selector: "#q", Name: "q", Type: "text", Visible: true},
			{Selector: "#addr", Name: "address_lookup", Type: "text", Visible: true},
		}
		ranked := RankAddressInputs(controls)
		require.Len(t, ranked, 2)
		assert.Equal(t, "#addr", ranked[0].Selector)
	})

	t.Run("Should credit surrounding container text", func(t *testing.T) {
		controls := []browser.Control{
			{Selector: "#a", Type: "text", Visible: true},
			{Selector: "#b", Type: "text", ContextText: "Enter your address or postcode", Visible: true},
		}
		ranked := RankAddressInputs(controls)
		assert.Equal(t, "#b", ranked[0].Selector)
	})

	t.Run("Should penalize date-like input types", func(t *testing.T) {
		controls := []browser.Control{
			{Selector: "#when", Name: "address_date", Type: "date", Visible: true},
			{Selector: "#where", Name: "address", Type: "text", Visible: true},
		}
		ranked := RankAddressInputs(controls)
		assert.Equal(t, "#where", ranked[0].Selector)
	})

	t.Run("Should exclude invisible controls entirely", func(t *testing.T) {
		controls := []browser.Control{
			{Selector: "#hidden", Name: "address", Type: "text", Visible: false},
			{Selector: "#shown", Type: "text", Visible: true},
		}
		ranked := RankAddressInputs(controls)
		require.Len(t, ranked, 1)
		assert.Equal(t, "#shown", ranked[0].Selector)
	})

	t.Run("Should keep document order between equal scores", func(t *testing.T) {
		controls := []browser.Control{
			{Selector: "#first", Type: "text", Visible: true},
			{Selector: "#second", Type: "text", Visible: true},
		}
		ranked := RankAddressInputs(controls)
		assert.Equal(t, "#first", ranked[0].Selector)
	})

	t.Run("Should return nothing for an empty snapshot", func(t *testing.T) {
		assert.Empty(t, RankAddressInputs(nil))
	})
}
