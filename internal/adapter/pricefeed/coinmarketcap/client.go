// Package coinmarketcap fetches the latest listings from the CoinMarketCap
// Pro API and converts them into domain price quotes.
package coinmarketcap

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
	"github.com/simaogato/wealthflow-allocator/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL = "https://pro-api.coinmarketcap.com"
	DefaultLimit   = 1000
	listingsPath   = "/v1/cryptocurrency/listings/latest"
	apiKeyHeader   = "X-CMC_PRO_API_KEY"
	quoteCurrency  = "USD"
)

// Config holds the client settings
type Config struct {
	BaseURL string
	Limit   int
	Timeout time.Duration
	// RateLimit is the number of requests per second; 0 disables limiting
	RateLimit float64
	Burst     int
}

// Client implements domain.PriceProvider
type Client struct {
	client  *fasthttp.Client
	baseURL string
	limit   int
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying fasthttp client
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a new CoinMarketCap client
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	c := &Client{
		client:  &fasthttp.Client{Name: "wealthflow-allocator"},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limit:   cfg.Limit,
		timeout: cfg.Timeout,
		limiter: limiter,
		logger:  logger.Named("CoinMarketCapClient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLatest implements domain.PriceProvider. Listings without a USD quote
// are skipped.
func (c *Client) FetchLatest(ctx context.Context, apiKey string) ([]domain.PriceQuote, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: CoinMarketCap API key is not set", domain.ErrConfiguration)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.fail(domain.UpstreamTransport, 0, fmt.Errorf("rate limiter: %w", err))
	}

	requestURL := fmt.Sprintf("%s%s?limit=%d", c.baseURL, listingsPath, c.limit)
	c.logger.Debug("Requesting listings from CoinMarketCap", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(apiKeyHeader, apiKey)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute request to CoinMarketCap", zap.String("url", requestURL), zap.Error(err))
		return nil, c.fail(domain.UpstreamTransport, 0, fmt.Errorf("failed to contact CoinMarketCap: %w", err))
	}

	body := resp.Body()
	code := resp.StatusCode()
	if code < 200 || code > 299 {
		c.logger.Error("CoinMarketCap request failed",
			zap.Int("statusCode", code),
			zap.ByteString("responseBody", body))
		return nil, c.fail(domain.UpstreamStatus, code, fmt.Errorf("CoinMarketCap returned an error status: %s", statusMessage(body)))
	}

	var parsed listingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("Failed to unmarshal CoinMarketCap response", zap.Error(err))
		return nil, c.fail(domain.UpstreamDecode, code, fmt.Errorf("failed to parse CoinMarketCap response: %w", err))
	}
	if parsed.Status.ErrorCode != 0 {
		return nil, c.fail(domain.UpstreamStatus, code, fmt.Errorf("CoinMarketCap error %d: %s", parsed.Status.ErrorCode, statusMessage(body)))
	}

	quotes := make([]domain.PriceQuote, 0, len(parsed.Data))
	for _, l := range parsed.Data {
		usd, ok := l.Quote[quoteCurrency]
		if !ok {
			c.logger.Debug("Listing has no USD quote", zap.String("symbol", l.Symbol))
			continue
		}
		quotes = append(quotes, domain.PriceQuote{
			Symbol:            l.Symbol,
			Price:             usd.Price,
			Volume24h:         usd.Volume24h,
			PercentChange24h:  usd.PercentChange24h,
			PercentChange7d:   usd.PercentChange7d,
			MarketCap:         usd.MarketCap,
			FullyDilutedValue: usd.FullyDilutedMarketCap,
		})
	}

	c.logger.Debug("Fetched CoinMarketCap listings",
		zap.Int("count", len(quotes)),
		zap.Int("creditCount", parsed.Status.CreditCount))

	return quotes, nil
}

func (c *Client) fail(kind domain.UpstreamKind, code int, err error) error {
	metrics.UpstreamFailures.WithLabelValues(string(kind)).Inc()
	return &domain.UpstreamError{Kind: kind, StatusCode: code, Err: err}
}

// statusMessage extracts status.error_message from an error body, falling
// back to the raw body.
func statusMessage(body []byte) string {
	var parsed listingsResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Status.ErrorMessage != nil {
		return *parsed.Status.ErrorMessage
	}
	if len(body) == 0 {
		return "empty body"
	}
	return string(body)
}
