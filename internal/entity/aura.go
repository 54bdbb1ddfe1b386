package entity

import "encoding/json"

// ZeroAddress represents the Ethereum zero address, used by the provider for native coins.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// NativePlaceholderAddress is the all-e placeholder some providers use for native coins.
const NativePlaceholderAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// AuraToken is one token row inside a provider balances response.
// Missing balance fields decode as zero.
type AuraToken struct {
	Symbol     string  `json:"symbol"`
	Balance    float64 `json:"balance"`
	BalanceUSD float64 `json:"balanceUSD"`
	Address    string  `json:"address"`
}

// AuraNetwork identifies the network a portfolio entry belongs to.
type AuraNetwork struct {
	Name        string `json:"name"`
	ChainID     string `json:"chainId"`
	PlatformID  string `json:"platformId"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// AuraPortfolioEntry is one (network, tokens) pair from the provider.
type AuraPortfolioEntry struct {
	Network *AuraNetwork `json:"network"`
	Tokens  []AuraToken  `json:"tokens"`
}

// AuraBalancesResponse is the provider's per-wallet balances payload.
type AuraBalancesResponse struct {
	Address   string               `json:"address"`
	Portfolio []AuraPortfolioEntry `json:"portfolio"`
	Cached    bool                 `json:"cached"`
	Version   string               `json:"version"`
}

// AuraStrategyGroup wraps one batch of strategy suggestions. Strategy bodies
// are kept as raw JSON so they can be passed through unmodified.
type AuraStrategyGroup struct {
	Response []json.RawMessage `json:"response"`
}

// AuraStrategiesResponse is the provider's per-wallet strategies payload.
type AuraStrategiesResponse struct {
	Strategies []AuraStrategyGroup `json:"strategies"`
}

// WalletBalances pairs a wallet address with its successfully fetched
// balances response. Failed fetches never produce a WalletBalances.
type WalletBalances struct {
	Wallet   string
	Response *AuraBalancesResponse
}
