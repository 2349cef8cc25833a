// Package engine runs one analysis request end to end: it fetches price
// history and headlines, computes indicators, forecasts the next trading
// days, scores the news, and asks the rule chain for a verdict.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/neuroquant/internal/analysis/sentiment"
	"github.com/seenimoa/neuroquant/internal/analysis/technical"
	"github.com/seenimoa/neuroquant/internal/config"
	"github.com/seenimoa/neuroquant/internal/datasource"
	"github.com/seenimoa/neuroquant/internal/decision"
	"github.com/seenimoa/neuroquant/internal/forecast"
	"github.com/seenimoa/neuroquant/internal/llm"
	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/pkg/models"
	"github.com/seenimoa/neuroquant/pkg/utils"
)

// OrchestratorConfig holds everything needed to build an Orchestrator.
type OrchestratorConfig struct {
	Handles    *Handles
	Market     datasource.MarketData
	News       datasource.NewsSource
	Forecast   forecast.Params
	Sentiment  sentiment.AggregatorConfig
	Thresholds decision.Thresholds
	Period     string // history range, e.g. "1y"
	Timeframe  models.Timeframe
	RSIPeriod  int
	MaxNews    int
}

// Orchestrator is stateless across requests and safe for concurrent use.
type Orchestrator struct {
	handles    *Handles
	market     datasource.MarketData
	news       datasource.NewsSource
	normalizer *forecast.Normalizer
	sentiment  sentiment.AggregatorConfig
	synth      *decision.Synthesizer
	period     string
	timeframe  models.Timeframe
	rsiPeriod  int
	maxNews    int
	now        func() time.Time
}

// NewOrchestrator validates the forecast parameters and assembles the
// pipeline. Missing handles are reported per request by Analyze.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	var scaler forecast.Scaler
	if cfg.Handles != nil {
		scaler = cfg.Handles.Scaler
	}
	norm, err := forecast.NewNormalizer(cfg.Forecast, scaler)
	if err != nil {
		return nil, err
	}
	if cfg.Period == "" {
		cfg.Period = "1y"
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = models.Timeframe1Day
	}
	if cfg.MaxNews <= 0 {
		cfg.MaxNews = 10
	}
	return &Orchestrator{
		handles:    cfg.Handles,
		market:     cfg.Market,
		news:       cfg.News,
		normalizer: norm,
		sentiment:  cfg.Sentiment,
		synth:      decision.New(cfg.Thresholds),
		period:     cfg.Period,
		timeframe:  cfg.Timeframe,
		rsiPeriod:  cfg.RSIPeriod,
		maxNews:    cfg.MaxNews,
		now:        time.Now,
	}, nil
}

// New builds an Orchestrator from application config over the Yahoo
// Finance and Google News sources.
func New(cfg *config.Config, h *Handles) (*Orchestrator, error) {
	market := datasource.NewYFinance(datasource.YFinanceOptions{
		CacheTTL:  time.Duration(cfg.Market.CacheTTL) * time.Second,
		RateLimit: cfg.Market.RateLimit,
	})
	news := datasource.NewGoogleNews(datasource.GoogleNewsOptions{
		Language:  cfg.News.Language,
		Country:   cfg.News.Country,
		CacheTTL:  time.Duration(cfg.News.CacheTTL) * time.Second,
		RateLimit: cfg.Market.RateLimit,
	})
	return NewOrchestrator(OrchestratorConfig{
		Handles:    h,
		Market:     market,
		News:       news,
		Forecast:   ForecastParams(cfg.Forecast),
		Sentiment:  AggregatorConfig(cfg.Sentiment),
		Thresholds: Thresholds(cfg.Decision),
		Period:     cfg.Market.Period,
		Timeframe:  models.Timeframe(cfg.Market.Interval),
		RSIPeriod:  cfg.Market.RSIPeriod,
		MaxNews:    cfg.News.MaxResults,
	})
}

// Params returns the forecast parameters in use.
func (o *Orchestrator) Params() forecast.Params { return o.normalizer.Params() }

// Handles returns the shared collaborators.
func (o *Orchestrator) Handles() *Handles { return o.handles }

// Market returns the price history source.
func (o *Orchestrator) Market() datasource.MarketData { return o.market }

// Normalizer returns the forecast post-processor.
func (o *Orchestrator) Normalizer() *forecast.Normalizer { return o.normalizer }

// History returns the candles Analyze works from for ticker. Sources that
// cache make a History call after Analyze free.
func (o *Orchestrator) History(ctx context.Context, ticker string) ([]models.OHLCV, error) {
	if o.market == nil {
		return nil, fmt.Errorf("market data source: %w", models.ErrCollaboratorUnavailable)
	}
	return o.market.GetHistory(ctx, utils.NormalizeTicker(ticker), o.period, o.timeframe)
}

// Analyze runs the full pipeline for ticker. A market data failure fails
// the request; a news failure degrades to neutral sentiment.
func (o *Orchestrator) Analyze(ctx context.Context, ticker string) (*models.AnalysisReport, error) {
	start := o.now()
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidTicker(symbol) {
		return nil, fmt.Errorf("%w: invalid ticker %q", models.ErrPrecondition, ticker)
	}
	if err := o.handles.Validate(); err != nil {
		return nil, err
	}
	if o.market == nil {
		return nil, fmt.Errorf("%w: market data source", models.ErrCollaboratorUnavailable)
	}

	op := logger.StartOperation(ctx, "engine.analyze", attribute.String("ticker", symbol))
	ctx = op.Context()

	candles, news, err := o.fetch(ctx, symbol)
	if err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("market data %s: %w", symbol, err)
	}

	indicators := technical.ComputeAll(candles, o.rsiPeriod)

	path, err := o.normalizer.Forecast(ctx, candles, o.handles.Model)
	if err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("forecast %s: %w", symbol, err)
	}

	summary := sentiment.NewAggregator(o.sentiment, o.handles.Classifier).Aggregate(ctx, news)
	// Headlines dropped by an expired deadline are not a neutral reading.
	if err := ctx.Err(); err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("sentiment %s: %w", symbol, err)
	}

	dec, err := o.synth.Decide(decision.Input{
		Path:      path,
		Sentiment: summary.AverageScore,
		Riskiest:  summary.Riskiest,
		RSI:       indicators.RSI,
	})
	if err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("decide %s: %w", symbol, err)
	}

	last := candles[len(candles)-1]
	report := &models.AnalysisReport{
		ID:            uuid.NewString(),
		Ticker:        symbol,
		CurrentPrice:  last.Close,
		Volume:        last.Volume,
		Indicators:    indicators,
		Forecast:      path,
		ForecastDates: forecast.TradingDays(candles, len(path), utils.IsCrypto(symbol)),
		Degenerate:    len(candles) < o.normalizer.Params().Window,
		Sentiment:     summary,
		News:          news,
		Decision:      dec,
	}
	report.Commentary = llm.CommentOrApology(ctx, o.handles.Commentator, brief(report))
	report.Timestamp = o.now()
	report.Duration = report.Timestamp.Sub(start)

	op.End("verdict", dec.Verdict, "rule", dec.Rule, "change_pct", path.ChangePct())
	return report, nil
}

// fetch loads history and news concurrently.
func (o *Orchestrator) fetch(ctx context.Context, symbol string) ([]models.OHLCV, []models.NewsItem, error) {
	var (
		candles []models.OHLCV
		news    []models.NewsItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := o.market.GetHistory(gctx, symbol, o.period, o.timeframe)
		if err != nil {
			return err
		}
		if len(c) == 0 {
			return datasource.ErrNoData
		}
		candles = c
		return nil
	})
	if o.news != nil {
		g.Go(func() error {
			items, err := o.news.GetNews(gctx, symbol, o.maxNews)
			if err != nil {
				logger.Warn(gctx, "news unavailable, continuing with neutral sentiment",
					"source", o.news.Name(), "ticker", symbol, "error", err)
				return nil
			}
			news = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return candles, news, nil
}

func brief(r *models.AnalysisReport) llm.Brief {
	titles := make([]string, 0, llm.MaxPromptHeadlines)
	for _, n := range r.News {
		if len(titles) == llm.MaxPromptHeadlines {
			break
		}
		titles = append(titles, n.Title)
	}
	return llm.Brief{
		Ticker:     r.Ticker,
		Price:      r.CurrentPrice,
		RSI:        r.Indicators.RSI,
		MACDSignal: technical.MACDState(r.Indicators.MACD),
		Verdict:    r.Decision.Verdict.Display(),
		Sentiment:  r.Sentiment.AverageScore,
		Headlines:  titles,
	}
}
