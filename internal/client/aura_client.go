package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/parch0n/Isaura/internal/entity"
	"github.com/parch0n/Isaura/pkg/metrics"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// AuraClient defines the interface for the Aura portfolio data provider.
type AuraClient interface {
	GetBalances(ctx context.Context, address string) (*entity.AuraBalancesResponse, error)
	GetStrategies(ctx context.Context, address string) ([]json.RawMessage, error)
}

// auraClientImpl is the implementation of AuraClient.
type auraClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewAuraClient creates a new instance of auraClientImpl.
func NewAuraClient(baseURL, apiKey string, timeout time.Duration, rateLimit, burstLimit int, logger *zap.Logger) AuraClient {
	return &auraClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), burstLimit),
		logger:  logger.Named("AuraClient"),
	}
}

// GetBalances implements the AuraClient interface. A non-2xx status or a
// malformed body is returned as an error; the caller decides whether that
// degrades or aborts.
func (c *auraClientImpl) GetBalances(ctx context.Context, address string) (*entity.AuraBalancesResponse, error) {
	body, err := c.doGet(ctx, "balances", address)
	if err != nil {
		return nil, err
	}

	var resp entity.AuraBalancesResponse
	if err := jsonCodec.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to unmarshal Aura balances response",
			zap.String("address", address),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal Aura balances response for %s: %w", address, err)
	}
	c.logger.Debug("Fetched balances from Aura",
		zap.String("address", address),
		zap.Int("entryCount", len(resp.Portfolio)),
		zap.Bool("cached", resp.Cached))
	return &resp, nil
}

// GetStrategies implements the AuraClient interface. Strategy bodies are kept
// as raw JSON so downstream consumers can pass them through unmodified.
func (c *auraClientImpl) GetStrategies(ctx context.Context, address string) ([]json.RawMessage, error) {
	body, err := c.doGet(ctx, "strategies", address)
	if err != nil {
		return nil, err
	}

	var resp entity.AuraStrategiesResponse
	if err := jsonCodec.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to unmarshal Aura strategies response",
			zap.String("address", address),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal Aura strategies response for %s: %w", address, err)
	}
	if len(resp.Strategies) == 0 {
		return []json.RawMessage{}, nil
	}
	strategies := resp.Strategies[0].Response
	if strategies == nil {
		strategies = []json.RawMessage{}
	}
	c.logger.Debug("Fetched strategies from Aura",
		zap.String("address", address),
		zap.Int("strategyCount", len(strategies)))
	return strategies, nil
}

func (c *auraClientImpl) doGet(ctx context.Context, endpoint, address string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for Aura %s: %w", endpoint, err)
	}

	requestURL := fmt.Sprintf("%s/api/portfolio/%s?address=%s&apiKey=%s",
		c.baseURL, endpoint, url.QueryEscape(address), url.QueryEscape(c.apiKey))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	metrics.ProviderRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.logger.Error("Failed to execute request to Aura",
			zap.String("endpoint", endpoint),
			zap.String("address", address),
			zap.Error(err))
		return nil, fmt.Errorf("failed to execute Aura %s request for %s: %w", endpoint, address, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.logger.Error("Aura API request failed",
			zap.String("endpoint", endpoint),
			zap.String("address", address),
			zap.Int("statusCode", resp.StatusCode()))
		return nil, fmt.Errorf("Aura %s request for %s failed with status %d", endpoint, address, resp.StatusCode())
	}

	metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "ok").Inc()

	// resp.Body() is reused after release, copy it out.
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
