// Package datasource fetches the engine's external inputs: daily price
// history from Yahoo Finance and headlines from the Google News RSS feed.
package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// MarketData returns price history for a ticker.
type MarketData interface {
	Name() string
	// GetHistory returns candles oldest first over period (e.g. "1y") at
	// the given bar interval. Bars without a close are dropped.
	GetHistory(ctx context.Context, ticker, period string, tf models.Timeframe) ([]models.OHLCV, error)
}

// NewsSource returns recent headlines for a ticker.
type NewsSource interface {
	Name() string
	// GetNews returns at most limit items, newest first.
	GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrNoData is returned when a source answers without usable rows.
var ErrNoData = errors.New("no data returned")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

func truncateBody(b []byte) string {
	const max = 1024
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
