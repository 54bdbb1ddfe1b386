package aggregator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parch0n/Isaura/internal/entity"
)

func TestSummarizeFoldsDustIntoOthers(t *testing.T) {
	tokens := []entity.AggregatedToken{
		{Symbol: "ETH", TotalUSD: 950, Networks: []string{"Ethereum"}},
		{Symbol: "USDC", TotalUSD: 45, Networks: []string{"Ethereum", "Polygon"}},
		{Symbol: "DUST", TotalUSD: 5, Networks: []string{"Polygon"}},
	}

	summary := Summarize(tokens)

	assert.InDelta(t, 1000, summary.TotalValueUSD, 1e-9)
	assert.Equal(t, 3, summary.TokenCount)
	assert.Equal(t, 2, summary.NetworkCount)

	// DUST holds 0.5% of total, so it lands in Others.
	require.Len(t, summary.Segments, 3)
	assert.Equal(t, "ETH", summary.Segments[0].Label)
	assert.Equal(t, "USDC", summary.Segments[1].Label)
	assert.Equal(t, OthersLabel, summary.Segments[2].Label)
	assert.InDelta(t, 5, summary.Segments[2].ValueUSD, 1e-9)
}

func TestSummarizeDominantTokenPlusDust(t *testing.T) {
	tokens := []entity.AggregatedToken{
		{Symbol: "ETH", TotalUSD: 9910},
	}
	for i := 0; i < 9; i++ {
		tokens = append(tokens, entity.AggregatedToken{
			Symbol:   fmt.Sprintf("D%d", i),
			TotalUSD: 10,
		})
	}

	summary := Summarize(tokens)

	require.Len(t, summary.Segments, 2)
	assert.Equal(t, "ETH", summary.Segments[0].Label)
	assert.Equal(t, OthersLabel, summary.Segments[1].Label)
	assert.InDelta(t, 90, summary.Segments[1].ValueUSD, 1e-9)
}

func TestSummarizeCapsStandaloneSegments(t *testing.T) {
	var tokens []entity.AggregatedToken
	for i := 0; i < 12; i++ {
		tokens = append(tokens, entity.AggregatedToken{
			Symbol:   fmt.Sprintf("T%02d", i),
			TotalUSD: float64(120 - i), // all above 1% of total
			Networks: []string{"Ethereum"},
		})
	}

	summary := Summarize(tokens)

	require.Len(t, summary.Segments, 9)
	assert.Equal(t, OthersLabel, summary.Segments[8].Label)

	var total float64
	for _, s := range summary.Segments {
		total += s.ValueUSD
	}
	assert.InDelta(t, summary.TotalValueUSD, total, 1e-9)
}

func TestSummarizeColorIndicesCyclePalette(t *testing.T) {
	var tokens []entity.AggregatedToken
	for i := 0; i < 8; i++ {
		tokens = append(tokens, entity.AggregatedToken{
			Symbol:   fmt.Sprintf("T%d", i),
			TotalUSD: float64(100 - i),
		})
	}

	summary := Summarize(tokens)
	for i, seg := range summary.Segments {
		assert.Equal(t, i%paletteSize, seg.ColorIndex)
	}
}

func TestSummarizeZeroTotalHasNoSegments(t *testing.T) {
	summary := Summarize([]entity.AggregatedToken{
		{Symbol: "RUG", TotalUSD: 0},
	})

	assert.Zero(t, summary.TotalValueUSD)
	assert.Equal(t, 1, summary.TokenCount)
	assert.Empty(t, summary.Segments)
}

func TestSummarizeEmptyInput(t *testing.T) {
	summary := Summarize(nil)
	assert.Zero(t, summary.TotalValueUSD)
	assert.Zero(t, summary.TokenCount)
	assert.Zero(t, summary.NetworkCount)
	assert.Empty(t, summary.Segments)
}
