package entity

// AggregatedToken is one symbol's cross-network aggregate within a scope
// (combined across wallets, or a single wallet).
type AggregatedToken struct {
	Symbol   string   `json:"symbol"`
	Total    float64  `json:"total"`
	TotalUSD float64  `json:"totalUSD"`
	Networks []string `json:"networks"`
	LogoURI  string   `json:"logoURI,omitempty"`
}

// PortfolioResponse is the snapshot returned to the presentation layer.
// FailedWallets distinguishes a degraded snapshot from an empty portfolio.
type PortfolioResponse struct {
	Success       bool                         `json:"success"`
	WalletsCount  int                          `json:"walletsCount"`
	Addresses     []string                     `json:"addresses"`
	Tokens        []AggregatedToken            `json:"tokens"`
	ByWallet      map[string][]AggregatedToken `json:"byWallet,omitempty"`
	FailedWallets []string                     `json:"failedWallets,omitempty"`
}

// AllocationSegment is one slice of the allocation breakdown.
type AllocationSegment struct {
	Label      string  `json:"label"`
	ValueUSD   float64 `json:"valueUSD"`
	ColorIndex int     `json:"colorIndex"`
}

// AllocationSummary is the presentation-derived breakdown for one scope.
type AllocationSummary struct {
	TotalValueUSD float64             `json:"totalValueUSD"`
	TokenCount    int                 `json:"tokenCount"`
	NetworkCount  int                 `json:"networkCount"`
	Segments      []AllocationSegment `json:"segments"`
}
