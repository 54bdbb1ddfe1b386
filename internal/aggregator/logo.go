package aggregator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parch0n/Isaura/internal/entity"
)

// chainIDToSlug maps common EVM chain ids to TrustWallet asset-repository slugs.
var chainIDToSlug = map[string]string{
	"1":     "ethereum",
	"137":   "polygon",
	"42161": "arbitrum",
	"10":    "optimism",
	"8453":  "base",
	"56":    "smartchain",
	"43114": "avalanche",
	"250":   "fantom",
	"100":   "gnosis",
	"42220": "celo",
	"25":    "cronos",
}

// preferredChains is the priority order for picking a representative logo.
var preferredChains = []string{"1", "137", "42161", "10", "8453", "56", "43114"}

const assetRepoBase = "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains"

// ResolveLogo picks a best-effort icon URI for an aggregated token from its
// first-seen contract address per chain. This is a visual hint only, never a
// token-identity guarantee; an empty result means the caller renders a
// placeholder.
func ResolveLogo(addressesByChainID map[string]string) string {
	for _, cid := range preferredChains {
		if addr, ok := addressesByChainID[cid]; ok {
			if uri := buildLogoURI(cid, addr); uri != "" {
				return uri
			}
		}
	}

	// No preferred chain matched; fall back to any mapped chain. Iterate in
	// sorted key order so the pick is stable across calls.
	cids := make([]string, 0, len(addressesByChainID))
	for cid := range addressesByChainID {
		cids = append(cids, cid)
	}
	sort.Strings(cids)
	for _, cid := range cids {
		if uri := buildLogoURI(cid, addressesByChainID[cid]); uri != "" {
			return uri
		}
	}
	return ""
}

func buildLogoURI(chainID, address string) string {
	slug, ok := chainIDToSlug[chainID]
	if !ok || address == "" {
		return ""
	}

	lower := strings.ToLower(address)
	if lower == entity.ZeroAddress || lower == entity.NativePlaceholderAddress {
		return fmt.Sprintf("%s/%s/info/logo.png", assetRepoBase, slug)
	}
	return fmt.Sprintf("%s/%s/assets/%s/logo.png", assetRepoBase, slug, address)
}
