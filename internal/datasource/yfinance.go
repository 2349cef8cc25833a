package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/seenimoa/neuroquant/internal/infra"
	"github.com/seenimoa/neuroquant/pkg/models"
	"github.com/seenimoa/neuroquant/pkg/utils"
)

// DefaultYahooBaseURL is the Yahoo Finance v8 chart endpoint.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YFinanceOptions configures the Yahoo Finance source.
type YFinanceOptions struct {
	BaseURL   string
	CacheTTL  time.Duration
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// YFinance implements MarketData using the Yahoo Finance chart API.
type YFinance struct {
	client  *resty.Client
	baseURL string
	cache   *infra.Cache[[]models.OHLCV]
	limiter *rate.Limiter
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(opts YFinanceOptions) *YFinance {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultYahooBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := infra.NewRESTClient(opts.Timeout)
	client.SetHeader("Accept", "application/json")
	return &YFinance{
		client:  client,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		cache:   infra.NewCache[[]models.OHLCV](opts.CacheTTL),
		limiter: infra.NewLimiter(opts.RateLimit, 2),
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetHistory returns daily (or other interval) candles for the period.
func (y *YFinance) GetHistory(ctx context.Context, ticker, period string, tf models.Timeframe) ([]models.OHLCV, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidTicker(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrTickerNotFound, ticker)
	}

	cacheKey := fmt.Sprintf("hist:%s:%s:%s", symbol, period, tf)
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached, nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var out yfChartResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"range":    period,
			"interval": yfInterval(tf),
		}).
		SetResult(&out).
		SetError(&out).
		Get(y.baseURL + "/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}

	if out.Chart.Error != nil {
		if resp.StatusCode() == http.StatusNotFound || out.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrTickerNotFound, symbol, out.Chart.Error.Description)
		}
		return nil, fmt.Errorf("yfinance chart error: %s", out.Chart.Error.Description)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, &ErrHTTP{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       truncateBody(resp.Body()),
		})
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	candles := parseYFCandles(out.Chart.Result[0])
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	y.cache.Set(cacheKey, candles)
	return candles, nil
}

// --- Helpers ---

// parseYFCandles converts the columnar chart payload into candles, dropping
// bars whose close is missing.
func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}

func yfInterval(tf models.Timeframe) string {
	switch tf {
	case models.Timeframe1Hour:
		return "1h"
	case models.Timeframe1Week:
		return "1wk"
	case models.Timeframe1Month:
		return "1mo"
	default:
		return "1d"
	}
}
