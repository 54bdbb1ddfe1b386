package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parch0n/Isaura/internal/aggregator"
	"github.com/parch0n/Isaura/internal/client"
	"github.com/parch0n/Isaura/internal/config"
	"github.com/parch0n/Isaura/internal/entity"
	"github.com/parch0n/Isaura/pkg/metrics"
)

// PortfolioService aggregates token balances across a user's wallets.
type PortfolioService interface {
	GetPortfolio(ctx context.Context, userID string, wallets []string) (*entity.PortfolioResponse, error)
	GetAllocation(ctx context.Context, userID string, wallets []string) (*entity.AllocationSummary, error)
}

// portfolioServiceImpl is the implementation of PortfolioService.
type portfolioServiceImpl struct {
	aura          client.AuraClient
	snapshots     *cache.Cache
	fetchTimeout  time.Duration
	maxConcurrent int
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewPortfolioService creates a new instance of PortfolioService. The
// snapshot cache is owned by the caller and shared with nothing else.
func NewPortfolioService(aura client.AuraClient, snapshots *cache.Cache, cfg *config.Config, logger *zap.Logger) PortfolioService {
	return &portfolioServiceImpl{
		aura:          aura,
		snapshots:     snapshots,
		fetchTimeout:  time.Duration(cfg.Aura.RequestTimeoutMillis) * time.Millisecond,
		maxConcurrent: cfg.Portfolio.MaxConcurrentRequests,
		cacheTTL:      time.Duration(cfg.Portfolio.CacheTTLMinutes) * time.Minute,
		logger:        logger.Named("PortfolioService"),
	}
}

// GetPortfolio returns the aggregated snapshot for a user's wallets, served
// from cache inside the TTL. A wallet whose provider call fails contributes
// nothing and is reported in failedWallets; the batch never aborts.
func (s *portfolioServiceImpl) GetPortfolio(ctx context.Context, userID string, wallets []string) (*entity.PortfolioResponse, error) {
	if len(wallets) == 0 {
		return &entity.PortfolioResponse{
			Success:      true,
			WalletsCount: 0,
			Addresses:    []string{},
			Tokens:       []entity.AggregatedToken{},
		}, nil
	}

	sorted := make([]string, len(wallets))
	copy(sorted, wallets)
	sort.Strings(sorted)
	cacheKey := fmt.Sprintf("portfolio:%s:%s", userID, strings.Join(sorted, ","))

	if cached, found := s.snapshots.Get(cacheKey); found {
		if snapshot, ok := cached.(*entity.PortfolioResponse); ok {
			metrics.CacheEvents.WithLabelValues("portfolio", "hit").Inc()
			s.logger.Debug("Serving portfolio snapshot from cache", zap.String("userID", userID))
			return snapshot, nil
		}
	}
	metrics.CacheEvents.WithLabelValues("portfolio", "miss").Inc()

	s.logger.Info("Fetching portfolio",
		zap.String("userID", userID),
		zap.Int("walletCount", len(sorted)))

	var (
		mu        sync.Mutex
		succeeded []entity.WalletBalances
		failed    []string
	)

	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrent)

	for _, wallet := range sorted {
		addr := wallet
		eg.Go(func() error {
			callCtx, cancel := context.WithTimeout(childCtx, s.fetchTimeout)
			defer cancel()

			resp, err := s.aura.GetBalances(callCtx, addr)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Degraded, not fatal: the wallet simply contributes nothing.
				s.logger.Warn("Balance fetch failed for wallet",
					zap.String("wallet", addr),
					zap.Error(err))
				failed = append(failed, addr)
				return nil
			}
			succeeded = append(succeeded, entity.WalletBalances{Wallet: addr, Response: resp})
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		// Goroutines always return nil; this fires only on context errors.
		s.logger.Error("Error awaiting balance fan-out", zap.Error(err))
	}

	agg := aggregator.Aggregate(succeeded)
	sort.Strings(failed)

	response := &entity.PortfolioResponse{
		Success:       true,
		WalletsCount:  len(sorted),
		Addresses:     sorted,
		Tokens:        agg.Combined,
		ByWallet:      agg.ByWallet,
		FailedWallets: failed,
	}

	s.snapshots.Set(cacheKey, response, s.cacheTTL)
	s.logger.Info("Portfolio fetching complete",
		zap.String("userID", userID),
		zap.Int("tokenCount", len(response.Tokens)),
		zap.Int("failedWallets", len(failed)))
	return response, nil
}

// GetAllocation derives the allocation breakdown from the combined snapshot.
func (s *portfolioServiceImpl) GetAllocation(ctx context.Context, userID string, wallets []string) (*entity.AllocationSummary, error) {
	snapshot, err := s.GetPortfolio(ctx, userID, wallets)
	if err != nil {
		return nil, err
	}
	summary := aggregator.Summarize(snapshot.Tokens)
	return &summary, nil
}
