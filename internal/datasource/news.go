package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/time/rate"

	"github.com/seenimoa/neuroquant/internal/infra"
	"github.com/seenimoa/neuroquant/pkg/models"
	"github.com/seenimoa/neuroquant/pkg/utils"
)

// DefaultGoogleNewsURL is the Google News RSS search endpoint.
const DefaultGoogleNewsURL = "https://news.google.com/rss/search"

// PublishedLayout is the display format of NewsItem.Published.
const PublishedLayout = "2006-01-02 15:04"

// GoogleNewsOptions configures the Google News source.
type GoogleNewsOptions struct {
	BaseURL   string
	Language  string // e.g., "en-US"
	Country   string // e.g., "US"
	CacheTTL  time.Duration
	RateLimit float64
	Timeout   time.Duration
}

// GoogleNews implements NewsSource using the Google News RSS search feed.
type GoogleNews struct {
	client   *resty.Client
	baseURL  string
	language string
	country  string
	cache    *infra.Cache[[]models.NewsItem]
	limiter  *rate.Limiter
	parser   *rss.Parser
	now      func() time.Time
}

// NewGoogleNews creates a new news source.
func NewGoogleNews(opts GoogleNewsOptions) *GoogleNews {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGoogleNewsURL
	}
	if opts.Language == "" {
		opts.Language = "en-US"
	}
	if opts.Country == "" {
		opts.Country = "US"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &GoogleNews{
		client:   infra.NewRESTClient(opts.Timeout),
		baseURL:  opts.BaseURL,
		language: opts.Language,
		country:  opts.Country,
		cache:    infra.NewCache[[]models.NewsItem](opts.CacheTTL),
		limiter:  infra.NewLimiter(opts.RateLimit, 2),
		parser:   &rss.Parser{},
		now:      time.Now,
	}
}

// Name returns the data source name.
func (n *GoogleNews) Name() string { return "Google News" }

// GetNews searches for "<ticker> stock news" and returns the newest items.
// Each call returns fresh copies, so callers may annotate them freely.
func (n *GoogleNews) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	symbol := utils.NormalizeTicker(ticker)
	cacheKey := fmt.Sprintf("news:stock:%s:%d", symbol, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cloneItems(cached), nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	lang := n.language
	if i := strings.Index(lang, "-"); i > 0 {
		lang = lang[:i]
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":    symbol + " stock news",
			"hl":   n.language,
			"gl":   n.country,
			"ceid": n.country + ":" + lang,
		}).
		Get(n.baseURL)
	if err != nil {
		return nil, fmt.Errorf("google news %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("google news %s: %w", symbol, &ErrHTTP{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       truncateBody(resp.Body()),
		})
	}

	feed, err := n.parser.Parse(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse google news RSS: %w", err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil || strings.TrimSpace(it.Title) == "" {
			continue
		}
		items = append(items, n.toItem(it))
	}
	sortItemsByDate(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	n.cache.Set(cacheKey, items)
	return cloneItems(items), nil
}

func (n *GoogleNews) toItem(it *rss.Item) models.NewsItem {
	title := cleanHTML(it.Title)
	item := models.NewsItem{
		Title:  title,
		Link:   strings.TrimSpace(it.Link),
		Source: sourceName(it, title),
	}
	if it.PubDateParsed != nil {
		item.PublishedAt = *it.PubDateParsed
		item.Published = it.PubDateParsed.UTC().Format(PublishedLayout)
	} else {
		// Undated items sort as if just published.
		item.PublishedAt = n.now()
		item.Published = "No date"
	}
	return item
}

// sourceName prefers the RSS <source> element and falls back to the
// " - Publisher" suffix Google appends to titles.
func sourceName(it *rss.Item, title string) string {
	if it.Source != nil && strings.TrimSpace(it.Source.Title) != "" {
		return strings.TrimSpace(it.Source.Title)
	}
	if i := strings.LastIndex(title, " - "); i > 0 && i+3 < len(title) {
		return strings.TrimSpace(title[i+3:])
	}
	return "Unknown"
}

// cleanHTML strips HTML tags and entities from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

// sortItemsByDate sorts items by published time, newest first.
func sortItemsByDate(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

func cloneItems(items []models.NewsItem) []models.NewsItem {
	out := make([]models.NewsItem, len(items))
	copy(out, items)
	return out
}
