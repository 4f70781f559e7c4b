package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"SqueezeScan/internal/domain/models"
	drepo "SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/service/ratelimit"
	"SqueezeScan/pkg/cache"
	phttp "SqueezeScan/pkg/http"
	"SqueezeScan/pkg/logger"
)

// Client fetches daily OHLCV bars from a chart-API compatible endpoint.
// Responses are cached so repeated scans over the same universe do not
// hammer the upstream provider.
type Client struct {
	baseURL      string
	symbolSuffix string
	http         *phttp.Client
	limiter      *ratelimit.Limiter
	cache        cache.Service
	log          *logger.Logger

	requestsPerSec float64
	burst          float64
	shortTTL       time.Duration
	longTTL        time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithCache enables response caching.
func WithCache(c cache.Service, shortTTL, longTTL time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.shortTTL = shortTTL
		cl.longTTL = longTTL
	}
}

// WithRateLimit sets the upstream request budget.
func WithRateLimit(requestsPerSec, burst float64) Option {
	return func(cl *Client) {
		cl.requestsPerSec = requestsPerSec
		cl.burst = burst
	}
}

// WithSymbolSuffix appends an exchange suffix to every symbol.
func WithSymbolSuffix(suffix string) Option {
	return func(cl *Client) { cl.symbolSuffix = suffix }
}

// New creates a daily bar client.
func New(baseURL string, timeout time.Duration, log *logger.Logger, opts ...Option) drepo.BarSource {
	c := &Client{
		baseURL:        baseURL,
		http:           phttp.NewClient(phttp.WithTimeout(timeout)),
		limiter:        ratelimit.New(),
		log:            log,
		requestsPerSec: 2,
		burst:          5,
		shortTTL:       time.Hour,
		longTTL:        24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars returns daily bars for symbol covering the period,
// oldest first. Cached responses are served when fresh.
func (c *Client) FetchDailyBars(ctx context.Context, symbol string, period drepo.Period) ([]models.Bar, error) {
	ticker := symbol + c.symbolSuffix
	key := cache.GenerateKeyWithParams("bars", ticker, string(period))

	if c.cache != nil {
		var cached []models.Bar
		if err := c.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	if err := c.waitForToken(ctx); err != nil {
		return nil, err
	}

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, ticker),
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (compatible; squeezescan/1.0)",
		},
		QueryParams: map[string][]string{
			"range":    {string(period)},
			"interval": {"1d"},
			"events":   {"div,splits"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	bars, err := parseChart(symbol, &resp)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ticker, err)
	}

	if c.cache != nil && len(bars) > 0 {
		if err := c.cache.Set(ctx, key, bars, c.ttlFor(period)); err != nil {
			c.log.Warn("bar cache set failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	return bars, nil
}

func (c *Client) waitForToken(ctx context.Context) error {
	for !c.limiter.Allow("marketdata", c.burst, c.requestsPerSec) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}

func (c *Client) ttlFor(period drepo.Period) time.Duration {
	switch period {
	case drepo.Period6M, drepo.Period1Y:
		return c.shortTTL
	default:
		return c.longTTL
	}
}

func parseChart(symbol string, resp *chartResponse) ([]models.Bar, error) {
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, errors.New("empty chart result")
	}
	res := resp.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, errors.New("missing quote data")
	}
	q := res.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		// Providers leave holes (halts, partial sessions) as nulls.
		if i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) || i >= len(q.Close) {
			continue
		}
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue
		}
		var vol float64
		if i < len(q.Volume) && q.Volume[i] != nil {
			vol = *q.Volume[i]
		}
		bars = append(bars, models.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Symbol:    symbol,
			Open:      *q.Open[i],
			High:      *q.High[i],
			Low:       *q.Low[i],
			Close:     *q.Close[i],
			Volume:    vol,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}
