package entity

import "encoding/json"

// StrategiesResponse groups yield strategies per wallet plus the combined,
// de-duplicated list. Strategy bodies are opaque provider JSON.
type StrategiesResponse struct {
	ByWallet map[string][]json.RawMessage `json:"byWallet"`
	Combined []json.RawMessage            `json:"combined"`
}
