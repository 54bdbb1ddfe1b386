package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parch0n/Isaura/internal/client"
	"github.com/parch0n/Isaura/internal/config"
	"github.com/parch0n/Isaura/internal/entity"
	"github.com/parch0n/Isaura/pkg/metrics"
)

// StrategyService collects per-wallet yield strategies and a de-duplicated
// combined list.
type StrategyService interface {
	GetStrategies(ctx context.Context, userID string, wallets []string) (*entity.StrategiesResponse, error)
}

// strategyServiceImpl is the implementation of StrategyService.
type strategyServiceImpl struct {
	aura          client.AuraClient
	filter        StrategyFilter // nil when no model is configured
	results       *cache.Cache
	fetchTimeout  time.Duration
	maxConcurrent int
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewStrategyService creates a new instance of StrategyService. filter may
// be nil; the combined list then degrades to plain concatenation.
func NewStrategyService(aura client.AuraClient, filter StrategyFilter, results *cache.Cache, cfg *config.Config, logger *zap.Logger) StrategyService {
	return &strategyServiceImpl{
		aura:          aura,
		filter:        filter,
		results:       results,
		fetchTimeout:  time.Duration(cfg.Aura.RequestTimeoutMillis) * time.Millisecond,
		maxConcurrent: cfg.Portfolio.MaxConcurrentRequests,
		cacheTTL:      time.Duration(cfg.Strategies.CacheTTLMinutes) * time.Minute,
		logger:        logger.Named("StrategyService"),
	}
}

// GetStrategies fans out one provider call per wallet; a failed wallet
// contributes an empty list. The combined list is AI-filtered when more than
// one wallet is involved, falling back to the unfiltered concatenation on
// any filter error.
func (s *strategyServiceImpl) GetStrategies(ctx context.Context, userID string, wallets []string) (*entity.StrategiesResponse, error) {
	if len(wallets) == 0 {
		return &entity.StrategiesResponse{
			ByWallet: map[string][]json.RawMessage{},
			Combined: []json.RawMessage{},
		}, nil
	}

	sorted := make([]string, len(wallets))
	copy(sorted, wallets)
	sort.Strings(sorted)
	cacheKey := fmt.Sprintf("strategies:%s:%s", userID, strings.Join(sorted, ","))

	if cached, found := s.results.Get(cacheKey); found {
		if result, ok := cached.(*entity.StrategiesResponse); ok {
			metrics.CacheEvents.WithLabelValues("strategies", "hit").Inc()
			return result, nil
		}
	}
	metrics.CacheEvents.WithLabelValues("strategies", "miss").Inc()

	s.logger.Info("Fetching strategies",
		zap.String("userID", userID),
		zap.Int("walletCount", len(sorted)))

	byWallet := make(map[string][]json.RawMessage, len(sorted))
	var mu sync.Mutex

	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrent)

	for _, wallet := range sorted {
		addr := wallet
		eg.Go(func() error {
			callCtx, cancel := context.WithTimeout(childCtx, s.fetchTimeout)
			defer cancel()

			strategies, err := s.aura.GetStrategies(callCtx, addr)
			if err != nil {
				s.logger.Warn("Strategy fetch failed for wallet",
					zap.String("wallet", addr),
					zap.Error(err))
				strategies = []json.RawMessage{}
			}
			mu.Lock()
			byWallet[addr] = strategies
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		s.logger.Error("Error awaiting strategy fan-out", zap.Error(err))
	}

	result := &entity.StrategiesResponse{
		ByWallet: byWallet,
		Combined: s.combine(ctx, byWallet, sorted),
	}

	s.results.Set(cacheKey, result, s.cacheTTL)
	return result, nil
}

func (s *strategyServiceImpl) combine(ctx context.Context, byWallet map[string][]json.RawMessage, sortedWallets []string) []json.RawMessage {
	if len(sortedWallets) > 1 && s.filter != nil {
		combined, err := s.filter.Filter(ctx, byWallet)
		if err == nil {
			return combined
		}
		s.logger.Warn("Strategy filter failed, returning unfiltered strategies", zap.Error(err))
	}

	all := make([]json.RawMessage, 0)
	for _, w := range sortedWallets {
		all = append(all, byWallet[w]...)
	}
	return all
}
