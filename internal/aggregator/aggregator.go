// Package aggregator merges per-wallet provider balance responses into
// deduplicated cross-wallet and per-wallet token aggregates.
package aggregator

import (
	"sort"
	"strings"

	"github.com/parch0n/Isaura/internal/entity"
)

// Aggregation holds both aggregation scopes produced in one pass.
type Aggregation struct {
	Combined []entity.AggregatedToken
	ByWallet map[string][]entity.AggregatedToken
}

// tokenAccum accumulates one symbol within one scope.
type tokenAccum struct {
	displaySymbol      string
	total              float64
	totalUSD           float64
	networks           map[string]struct{}
	addressesByChainID map[string]string
}

// Aggregate consumes successful per-wallet responses and produces the
// combined and per-wallet aggregates. Aggregation is an order-independent
// upsert keyed by upper-cased trimmed symbol; the first-seen original casing
// is kept for display. Malformed entries are skipped, never fatal.
func Aggregate(results []entity.WalletBalances) Aggregation {
	combined := make(map[string]*tokenAccum)
	perWallet := make(map[string]map[string]*tokenAccum)

	for _, res := range results {
		if res.Response == nil {
			continue
		}
		walletMap, ok := perWallet[res.Wallet]
		if !ok {
			walletMap = make(map[string]*tokenAccum)
			perWallet[res.Wallet] = walletMap
		}
		for _, pe := range res.Response.Portfolio {
			if pe.Network == nil {
				continue
			}
			networkName := pe.Network.Name
			if networkName == "" {
				networkName = pe.Network.PlatformID
			}
			if networkName == "" {
				networkName = "unknown"
			}
			chainID := pe.Network.ChainID

			for _, tok := range pe.Tokens {
				symbol := strings.TrimSpace(tok.Symbol)
				if symbol == "" {
					continue
				}
				if excludeAsMaskedNative(chainID, symbol, tok.Address) {
					continue
				}
				upsert(combined, symbol, networkName, chainID, tok)
				upsert(walletMap, symbol, networkName, chainID, tok)
			}
		}
	}

	agg := Aggregation{
		Combined: toSortedTokens(combined),
		ByWallet: make(map[string][]entity.AggregatedToken, len(perWallet)),
	}
	for wallet, m := range perWallet {
		agg.ByWallet[wallet] = toSortedTokens(m)
	}
	return agg
}

// excludeAsMaskedNative reports whether the entry is a wrapped or bridged
// token masquerading under the chain's native symbol: the native balance
// itself carries the zero address or the all-e placeholder, anything else
// under the gas symbol is not the native coin.
func excludeAsMaskedNative(chainID, symbol, address string) bool {
	if !isNativeSymbol(chainID, symbol) {
		return false
	}
	if address == "" {
		return false
	}
	return !isNativePlaceholder(address)
}

func isNativeSymbol(chainID, symbol string) bool {
	upper := strings.ToUpper(symbol)
	switch chainID {
	case "137":
		return upper == "MATIC" || upper == "POL"
	case "56":
		return upper == "BNB"
	case "43114":
		return upper == "AVAX"
	case "250":
		return upper == "FTM"
	case "100":
		return upper == "XDAI"
	case "42220":
		return upper == "CELO"
	case "25":
		return upper == "CRO"
	default:
		// Ethereum and its L2s, and any chain we don't know about: the
		// provider reports ETH-symbol entries with contract addresses on
		// unknown chains too, and those are never the native balance.
		return upper == "ETH"
	}
}

func isNativePlaceholder(address string) bool {
	lower := strings.ToLower(address)
	return lower == entity.ZeroAddress || lower == entity.NativePlaceholderAddress
}

func upsert(m map[string]*tokenAccum, symbol, networkName, chainID string, tok entity.AuraToken) {
	key := strings.ToUpper(symbol)
	cur, ok := m[key]
	if !ok {
		cur = &tokenAccum{
			displaySymbol:      symbol,
			networks:           make(map[string]struct{}),
			addressesByChainID: make(map[string]string),
		}
		m[key] = cur
	}
	cur.total += tok.Balance
	cur.totalUSD += tok.BalanceUSD
	cur.networks[networkName] = struct{}{}
	if chainID != "" && tok.Address != "" {
		if _, seen := cur.addressesByChainID[chainID]; !seen {
			cur.addressesByChainID[chainID] = tok.Address
		}
	}
}

func toSortedTokens(m map[string]*tokenAccum) []entity.AggregatedToken {
	tokens := make([]entity.AggregatedToken, 0, len(m))
	for _, acc := range m {
		networks := make([]string, 0, len(acc.networks))
		for n := range acc.networks {
			networks = append(networks, n)
		}
		sort.Strings(networks)

		tokens = append(tokens, entity.AggregatedToken{
			Symbol:   acc.displaySymbol,
			Total:    acc.total,
			TotalUSD: acc.totalUSD,
			Networks: networks,
			LogoURI:  ResolveLogo(acc.addressesByChainID),
		})
	}
	// Descending by USD value; ties broken by symbol so permuting the input
	// wallets cannot reorder the output.
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].TotalUSD != tokens[j].TotalUSD {
			return tokens[i].TotalUSD > tokens[j].TotalUSD
		}
		return tokens[i].Symbol < tokens[j].Symbol
	})
	return tokens
}
