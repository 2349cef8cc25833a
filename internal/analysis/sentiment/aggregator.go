package sentiment

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/pkg/models"
)

// AggregatorConfig holds the scoring thresholds.
type AggregatorConfig struct {
	RiskThreshold     float64 // an item is riskiest only if strictly below this
	PositiveThreshold float64
	NegativeThreshold float64
	MaxTitleLen       int // in characters
	Workers           int
}

// DefaultAggregatorConfig returns a -0.20 risk threshold, ±0.15 label
// thresholds, 512-character titles and four workers.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		RiskThreshold:     -0.20,
		PositiveThreshold: 0.15,
		NegativeThreshold: -0.15,
		MaxTitleLen:       512,
		Workers:           4,
	}
}

// Aggregator scores headlines with a Classifier and summarizes them.
type Aggregator struct {
	cfg        AggregatorConfig
	classifier Classifier
}

// NewAggregator returns an aggregator. Non-positive worker or title limits
// fall back to the defaults.
func NewAggregator(cfg AggregatorConfig, classifier Classifier) *Aggregator {
	def := DefaultAggregatorConfig()
	if cfg.Workers < 1 {
		cfg.Workers = def.Workers
	}
	if cfg.MaxTitleLen < 1 {
		cfg.MaxTitleLen = def.MaxTitleLen
	}
	return &Aggregator{cfg: cfg, classifier: classifier}
}

type result struct {
	score float64
	label models.SentimentLabel
	err   error
}

// Aggregate scores every item, annotates it in place, and returns the mean
// score, its label, and the riskiest headline if one is below the risk
// threshold. Items the classifier fails on are skipped and counted.
// An empty slice yields a neutral summary without calling the classifier.
func (a *Aggregator) Aggregate(ctx context.Context, items []models.NewsItem) models.SentimentSummary {
	if len(items) == 0 {
		return models.NeutralSentiment()
	}

	op := logger.StartOperation(ctx, "sentiment.aggregate",
		attribute.Int("items", len(items)),
		attribute.String("classifier", a.classifier.Name()))
	ctx = op.Context()

	results := a.classifyAll(ctx, items)

	summary := models.NeutralSentiment()
	minScore := math.Inf(1)
	var sum float64

	for i := range items {
		r := results[i]
		if r.err != nil {
			summary.Failed++
			logger.Warn(ctx, "classifier failed on headline, skipping",
				"title", items[i].Title, "error", r.err)
			continue
		}

		items[i].SentimentScore = r.score
		items[i].SentimentLabel = r.label
		items[i].Scored = true
		sum += r.score
		summary.Scored++

		if r.score < minScore {
			minScore = r.score
			if r.score < a.cfg.RiskThreshold {
				summary.Riskiest = &items[i]
			}
		}
	}

	if summary.Scored > 0 {
		summary.AverageScore = sum / float64(summary.Scored)
		summary.Label = a.label(summary.AverageScore)
	}
	if summary.Failed > 0 {
		logger.Warn(ctx, "some headlines could not be scored",
			"failed", summary.Failed, "scored", summary.Scored)
	}

	op.End("average", summary.AverageScore, "label", summary.Label)
	return summary
}

// classifyAll runs the classifier over a bounded worker pool. Results are
// written by index so input order is preserved.
func (a *Aggregator) classifyAll(ctx context.Context, items []models.NewsItem) []result {
	results := make([]result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i := range items {
		text := truncate(items[i].Title, a.cfg.MaxTitleLen)
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = result{err: fmt.Errorf("classifier panic: %v", r)}
				}
			}()
			pred, err := a.classifier.Classify(gctx, text)
			if err != nil {
				results[i] = result{err: err}
				return nil
			}
			results[i] = result{score: pred.Score(), label: pred.Label}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Aggregator) label(avg float64) models.SentimentLabel {
	switch {
	case avg > a.cfg.PositiveThreshold:
		return models.SentimentPositive
	case avg < a.cfg.NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
