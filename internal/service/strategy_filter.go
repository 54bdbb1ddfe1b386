package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// StrategyFilter removes redundant strategies from a multi-wallet collection.
type StrategyFilter interface {
	Filter(ctx context.Context, byWallet map[string][]json.RawMessage) ([]json.RawMessage, error)
}

// geminiStrategyFilter asks a hosted model which strategies to keep. The
// model only ever returns indices; kept strategies are re-emitted from the
// original raw JSON so their structure survives byte-exact.
type geminiStrategyFilter struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiStrategyFilter creates a Gemini-backed StrategyFilter.
func NewGeminiStrategyFilter(client *genai.Client, model string, logger *zap.Logger) StrategyFilter {
	return &geminiStrategyFilter{
		client: client,
		model:  model,
		logger: logger.Named("StrategyFilter"),
	}
}

type keepResponse struct {
	Keep []int `json:"keep"`
}

func (f *geminiStrategyFilter) Filter(ctx context.Context, byWallet map[string][]json.RawMessage) ([]json.RawMessage, error) {
	wallets := make([]string, 0, len(byWallet))
	for w := range byWallet {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)

	var (
		flat   []json.RawMessage
		prompt strings.Builder
	)
	prompt.WriteString("You are a DeFi portfolio strategy analyzer. The numbered list below contains yield strategies collected from multiple wallets of the same user.\n\n")
	prompt.WriteString("TASK: identify redundant or obsolete strategies across wallets (e.g. a deposit suggestion for an asset another wallet already holds, or a \"top up wallet\" suggestion when other wallets have funds) and keep only the most relevant, non-redundant ones. When several strategies are similar, keep the most comprehensive one.\n\n")
	prompt.WriteString("STRATEGIES:\n")
	for _, w := range wallets {
		label := shortWallet(w)
		for _, raw := range byWallet[w] {
			fmt.Fprintf(&prompt, "%d) [wallet %s] %s\n", len(flat), label, string(raw))
			flat = append(flat, raw)
		}
	}
	prompt.WriteString("\nRespond with JSON only, no additional text, in the form {\"keep\": [indices of strategies to keep]}.\n")

	if len(flat) == 0 {
		return []json.RawMessage{}, nil
	}

	resp, err := f.client.Models.GenerateContent(ctx, f.model, genai.Text(prompt.String()), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("strategy filter model call failed: %w", err)
	}

	var parsed keepResponse
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		return nil, fmt.Errorf("strategy filter returned unparseable response: %w", err)
	}

	kept := selectKept(flat, parsed.Keep)
	f.logger.Info("Strategy filter applied",
		zap.Int("input", len(flat)),
		zap.Int("kept", len(kept)))
	return kept, nil
}

// selectKept maps model-returned indices back onto the original raw
// strategies, dropping out-of-range indices and duplicates.
func selectKept(flat []json.RawMessage, indices []int) []json.RawMessage {
	kept := make([]json.RawMessage, 0, len(indices))
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(flat) {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		kept = append(kept, flat[idx])
	}
	return kept
}

func shortWallet(w string) string {
	if len(w) <= 10 {
		return w
	}
	return w[:6] + "..." + w[len(w)-4:]
}
