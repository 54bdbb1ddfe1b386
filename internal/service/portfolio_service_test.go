package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parch0n/Isaura/internal/config"
	"github.com/parch0n/Isaura/internal/entity"
)

// fakeAuraClient serves canned responses and counts calls.
type fakeAuraClient struct {
	mu         sync.Mutex
	balances   map[string]*entity.AuraBalancesResponse
	strategies map[string][]json.RawMessage
	failing    map[string]bool
	calls      int
}

func (f *fakeAuraClient) GetBalances(_ context.Context, address string) (*entity.AuraBalancesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing[address] {
		return nil, errors.New("provider unavailable")
	}
	resp, ok := f.balances[address]
	if !ok {
		return &entity.AuraBalancesResponse{Address: address}, nil
	}
	return resp, nil
}

func (f *fakeAuraClient) GetStrategies(_ context.Context, address string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing[address] {
		return nil, errors.New("provider unavailable")
	}
	return f.strategies[address], nil
}

func (f *fakeAuraClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() *config.Config {
	return &config.Config{
		Aura:       config.AuraConfig{RequestTimeoutMillis: 5000},
		Portfolio:  config.PortfolioConfig{MaxConcurrentRequests: 4, CacheTTLMinutes: 5},
		Strategies: config.StrategiesConfig{CacheTTLMinutes: 60},
	}
}

func singleTokenBalances(symbol string, usd float64) *entity.AuraBalancesResponse {
	return &entity.AuraBalancesResponse{
		Portfolio: []entity.AuraPortfolioEntry{
			{
				Network: &entity.AuraNetwork{Name: "Ethereum", ChainID: "1"},
				Tokens: []entity.AuraToken{
					{Symbol: symbol, Balance: 1, BalanceUSD: usd, Address: entity.ZeroAddress},
				},
			},
		},
	}
}

func TestGetPortfolioEmptyWalletListSkipsProvider(t *testing.T) {
	fake := &fakeAuraClient{}
	svc := NewPortfolioService(fake, cache.New(time.Minute, time.Minute), testConfig(), zap.NewNop())

	resp, err := svc.GetPortfolio(context.Background(), "user-1", nil)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Zero(t, resp.WalletsCount)
	assert.Empty(t, resp.Tokens)
	assert.Zero(t, fake.callCount())
}

func TestGetPortfolioAggregatesAndSortsAddresses(t *testing.T) {
	fake := &fakeAuraClient{
		balances: map[string]*entity.AuraBalancesResponse{
			"0xbbb": singleTokenBalances("USDC", 100),
			"0xaaa": singleTokenBalances("USDC", 50),
		},
	}
	svc := NewPortfolioService(fake, cache.New(time.Minute, time.Minute), testConfig(), zap.NewNop())

	resp, err := svc.GetPortfolio(context.Background(), "user-1", []string{"0xbbb", "0xaaa"})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.WalletsCount)
	assert.Equal(t, []string{"0xaaa", "0xbbb"}, resp.Addresses)
	require.Len(t, resp.Tokens, 1)
	assert.InDelta(t, 150, resp.Tokens[0].TotalUSD, 1e-9)
	assert.Empty(t, resp.FailedWallets)
}

func TestGetPortfolioReportsFailedWallets(t *testing.T) {
	fake := &fakeAuraClient{
		balances: map[string]*entity.AuraBalancesResponse{
			"0xaaa": singleTokenBalances("ETH", 3500),
		},
		failing: map[string]bool{"0xbad": true},
	}
	svc := NewPortfolioService(fake, cache.New(time.Minute, time.Minute), testConfig(), zap.NewNop())

	resp, err := svc.GetPortfolio(context.Background(), "user-1", []string{"0xbad", "0xaaa"})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"0xbad"}, resp.FailedWallets)
	require.Len(t, resp.Tokens, 1)
	assert.Equal(t, "ETH", resp.Tokens[0].Symbol)
}

func TestGetPortfolioServesSecondCallFromCache(t *testing.T) {
	fake := &fakeAuraClient{
		balances: map[string]*entity.AuraBalancesResponse{
			"0xaaa": singleTokenBalances("ETH", 3500),
		},
	}
	svc := NewPortfolioService(fake, cache.New(time.Minute, time.Minute), testConfig(), zap.NewNop())

	first, err := svc.GetPortfolio(context.Background(), "user-1", []string{"0xaaa"})
	require.NoError(t, err)
	callsAfterFirst := fake.callCount()

	second, err := svc.GetPortfolio(context.Background(), "user-1", []string{"0xaaa"})
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, fake.callCount())
	assert.Same(t, first, second)
}

func TestGetPortfolioRefetchesAfterTTL(t *testing.T) {
	fake := &fakeAuraClient{
		balances: map[string]*entity.AuraBalancesResponse{
			"0xaaa": singleTokenBalances("ETH", 3500),
		},
	}
	svc := &portfolioServiceImpl{
		aura:          fake,
		snapshots:     cache.New(time.Minute, time.Minute),
		fetchTimeout:  time.Second,
		maxConcurrent: 4,
		cacheTTL:      10 * time.Millisecond,
		logger:        zap.NewNop(),
	}

	_, err := svc.GetPortfolio(context.Background(), "user-1", []string{"0xaaa"})
	require.NoError(t, err)
	callsAfterFirst := fake.callCount()

	time.Sleep(20 * time.Millisecond)

	_, err = svc.GetPortfolio(context.Background(), "user-1", []string{"0xaaa"})
	require.NoError(t, err)
	assert.Greater(t, fake.callCount(), callsAfterFirst)
}

func TestGetPortfolioCacheKeyIgnoresWalletOrder(t *testing.T) {
	fake := &fakeAuraClient{
		balances: map[string]*entity.AuraBalancesResponse{
			"0xaaa": singleTokenBalances("ETH", 10),
			"0xbbb": singleTokenBalances("ETH", 20),
		},
	}
	svc := NewPortfolioService(fake, cache.New(time.Minute, time.Minute), testConfig(), zap.NewNop())

	_, err := svc.GetPortfolio(context.Background(), "user-1", []string{"0xaaa", "0xbbb"})
	require.NoError(t, err)
	callsAfterFirst := fake.callCount()

	_, err = svc.GetPortfolio(context.Background(), "user-1", []string{"0xbbb", "0xaaa"})
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, fake.callCount())
}

func TestGetPortfolioCacheIsPerUser(t *testing.T) {
	fake := &fakeAuraClient{
		balances: map[string]*entity.AuraBalancesResponse{
			"0xaaa": singleTokenBalances("ETH", 10),
		},
	}
	svc := NewPortfolioService(fake, cache.New(time.Minute, time.Minute), testConfig(), zap.NewNop())

	_, err := svc.GetPortfolio(context.Background(), "user-1", []string{"0xaaa"})
	require.NoError(t, err)
	callsAfterFirst := fake.callCount()

	_, err = svc.GetPortfolio(context.Background(), "user-2", []string{"0xaaa"})
	require.NoError(t, err)
	assert.Greater(t, fake.callCount(), callsAfterFirst)
}

func TestGetAllocationDerivesFromSnapshot(t *testing.T) {
	fake := &fakeAuraClient{
		balances: map[string]*entity.AuraBalancesResponse{
			"0xaaa": singleTokenBalances("ETH", 900),
			"0xbbb": singleTokenBalances("USDC", 100),
		},
	}
	svc := NewPortfolioService(fake, cache.New(time.Minute, time.Minute), testConfig(), zap.NewNop())

	summary, err := svc.GetAllocation(context.Background(), "user-1", []string{"0xaaa", "0xbbb"})

	require.NoError(t, err)
	assert.InDelta(t, 1000, summary.TotalValueUSD, 1e-9)
	require.Len(t, summary.Segments, 2)
	assert.Equal(t, "ETH", summary.Segments[0].Label)
}
