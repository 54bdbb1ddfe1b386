package aggregator

import (
	"sort"

	"github.com/parch0n/Isaura/internal/entity"
)

const (
	// maxStandaloneSegments caps how many tokens get their own slice before
	// the remainder is folded into "Others".
	maxStandaloneSegments = 8
	// othersShareThreshold folds any segment holding less than this share of
	// total value into "Others".
	othersShareThreshold = 0.01
	// paletteSize is the number of colors in the presentation palette;
	// segments cycle through it by index.
	paletteSize = 9
)

// OthersLabel names the synthetic remainder segment.
const OthersLabel = "Others"

// Summarize derives totals, counts and the allocation breakdown for one
// aggregation scope. A zero or negative total yields no segments.
func Summarize(tokens []entity.AggregatedToken) entity.AllocationSummary {
	summary := entity.AllocationSummary{
		TokenCount: len(tokens),
		Segments:   []entity.AllocationSegment{},
	}

	networks := make(map[string]struct{})
	for _, t := range tokens {
		summary.TotalValueUSD += t.TotalUSD
		for _, n := range t.Networks {
			networks[n] = struct{}{}
		}
	}
	summary.NetworkCount = len(networks)

	if summary.TotalValueUSD <= 0 {
		return summary
	}

	sorted := make([]entity.AggregatedToken, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalUSD != sorted[j].TotalUSD {
			return sorted[i].TotalUSD > sorted[j].TotalUSD
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	candidates := sorted
	if len(candidates) > maxStandaloneSegments {
		candidates = sorted[:maxStandaloneSegments]
	}

	var others float64
	for _, t := range sorted[len(candidates):] {
		others += t.TotalUSD
	}

	for _, t := range candidates {
		if t.TotalUSD/summary.TotalValueUSD < othersShareThreshold {
			others += t.TotalUSD
			continue
		}
		summary.Segments = append(summary.Segments, entity.AllocationSegment{
			Label:    t.Symbol,
			ValueUSD: t.TotalUSD,
		})
	}

	// The remainder keeps its slice even below the threshold; folding it
	// anywhere else would drop value from the breakdown.
	if others > 0 {
		summary.Segments = append(summary.Segments, entity.AllocationSegment{
			Label:    OthersLabel,
			ValueUSD: others,
		})
	}

	for i := range summary.Segments {
		summary.Segments[i].ColorIndex = i % paletteSize
	}
	return summary
}
