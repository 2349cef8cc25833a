package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// ── Yahoo Finance ──

const chartJSON = `{"chart":{"result":[{"meta":{"symbol":"NVDA","currency":"USD","regularMarketPrice":130.5},
"timestamp":[1700000000,1700086400,1700172800],
"indicators":{"quote":[{"open":[100.0,101.0,null],"high":[105.0,106.0,null],"low":[98.0,99.0,null],
"close":[103.0,104.5,null],"volume":[1000,2000,null]}]}}],"error":null}}`

func TestYFinanceGetHistory(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/NVDA" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("range") != "1y" || r.URL.Query().Get("interval") != "1d" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	y := NewYFinance(YFinanceOptions{BaseURL: srv.URL, CacheTTL: time.Minute})
	candles, err := y.GetHistory(context.Background(), "nvda", "1y", models.Timeframe1Day)
	if err != nil {
		t.Fatalf("GetHistory error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles (null close dropped), got %d", len(candles))
	}
	if candles[1].Close != 104.5 || candles[1].Volume != 2000 {
		t.Errorf("candle[1] = %+v", candles[1])
	}

	// second call is served from cache
	if _, err := y.GetHistory(context.Background(), "NVDA", "1y", models.Timeframe1Day); err != nil {
		t.Fatalf("cached GetHistory error: %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits)
	}
}

func TestYFinanceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	y := NewYFinance(YFinanceOptions{BaseURL: srv.URL})
	_, err := y.GetHistory(context.Background(), "ZZZZ", "1y", models.Timeframe1Day)
	if !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("got %v, want ErrTickerNotFound", err)
	}
}

func TestYFinanceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	y := NewYFinance(YFinanceOptions{BaseURL: srv.URL})
	_, err := y.GetHistory(context.Background(), "NVDA", "1y", models.Timeframe1Day)
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("got %v, want ErrHTTP 502", err)
	}
}

func TestYFinanceRejectsBadTicker(t *testing.T) {
	y := NewYFinance(YFinanceOptions{BaseURL: "http://127.0.0.1:1"})
	if _, err := y.GetHistory(context.Background(), "NV DA", "1y", models.Timeframe1Day); !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("got %v, want ErrTickerNotFound", err)
	}
}

func TestParseYFCandlesEmpty(t *testing.T) {
	if candles := parseYFCandles(yfChartResult{}); candles != nil {
		t.Fatalf("expected nil candles for empty result, got %d", len(candles))
	}
}

func TestYfInterval(t *testing.T) {
	tests := []struct {
		tf   models.Timeframe
		want string
	}{
		{models.Timeframe1Hour, "1h"},
		{models.Timeframe1Day, "1d"},
		{models.Timeframe1Week, "1wk"},
		{models.Timeframe1Month, "1mo"},
		{models.Timeframe("unknown"), "1d"},
	}
	for _, tt := range tests {
		if got := yfInterval(tt.tf); got != tt.want {
			t.Errorf("yfInterval(%q) = %q, want %q", tt.tf, got, tt.want)
		}
	}
}

// ── Google News ──

const newsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>NVDA stock news - Google News</title>
<item><title>Nvidia shares slide on export curbs - Reuters</title><link>https://example.com/a</link>
<pubDate>Tue, 03 Mar 2026 14:30:00 GMT</pubDate><source url="https://www.reuters.com">Reuters</source></item>
<item><title>Nvidia beats estimates &amp; raises guidance - CNBC</title><link>https://example.com/b</link>
<pubDate>Wed, 04 Mar 2026 09:15:00 GMT</pubDate></item>
<item><title>Older Nvidia story</title><link>https://example.com/c</link>
<pubDate>Mon, 02 Mar 2026 08:00:00 GMT</pubDate></item>
<item><title>Undated Nvidia story</title><link>https://example.com/d</link></item>
</channel></rss>`

func newsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "NVDA stock news" || q.Get("hl") != "en-US" || q.Get("gl") != "US" || q.Get("ceid") != "US:en" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(newsRSS))
	}))
}

func TestGoogleNewsGetNews(t *testing.T) {
	srv := newsServer(t)
	defer srv.Close()

	n := NewGoogleNews(GoogleNewsOptions{BaseURL: srv.URL})
	n.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	items, err := n.GetNews(context.Background(), "nvda", 10)
	if err != nil {
		t.Fatalf("GetNews error: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}

	// newest first
	if !strings.HasPrefix(items[0].Title, "Nvidia beats estimates & raises") {
		t.Errorf("items[0].Title = %q", items[0].Title)
	}
	if items[0].Source != "CNBC" {
		t.Errorf("title-suffix source: got %q, want CNBC", items[0].Source)
	}
	if items[0].Published != "2026-03-04 09:15" {
		t.Errorf("Published: got %q", items[0].Published)
	}
	if items[1].Source != "Reuters" {
		t.Errorf("<source> element: got %q, want Reuters", items[1].Source)
	}
	if items[2].Source != "Unknown" {
		t.Errorf("fallback source: got %q, want Unknown", items[2].Source)
	}
	last := items[3]
	if last.Published != "No date" || !last.PublishedAt.Equal(n.now()) {
		t.Errorf("undated item: %+v", last)
	}
}

func TestGoogleNewsLimitAndCopies(t *testing.T) {
	srv := newsServer(t)
	defer srv.Close()

	n := NewGoogleNews(GoogleNewsOptions{BaseURL: srv.URL, CacheTTL: time.Minute})
	items, err := n.GetNews(context.Background(), "NVDA", 2)
	if err != nil {
		t.Fatalf("GetNews error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	items[0].SentimentScore = -1
	again, _ := n.GetNews(context.Background(), "NVDA", 2)
	if again[0].SentimentScore != 0 {
		t.Error("cached items must not share annotations with earlier callers")
	}
}

func TestGoogleNewsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewGoogleNews(GoogleNewsOptions{BaseURL: srv.URL})
	_, err := n.GetNews(context.Background(), "NVDA", 10)
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("got %v, want ErrHTTP 429", err)
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  plain  ", "plain"},
		{"<b>Bold</b> move", "Bold move"},
		{"AT&amp;T earnings", "AT&T earnings"},
	}
	for _, tt := range tests {
		if got := cleanHTML(tt.in); got != tt.want {
			t.Errorf("cleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestErrHTTPError(t *testing.T) {
	e := &ErrHTTP{StatusCode: 503, Status: "Service Unavailable", Body: "down"}
	if e.Error() != "HTTP 503 Service Unavailable: down" {
		t.Errorf("Error() = %q", e.Error())
	}
}
