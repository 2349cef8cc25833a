// Package report renders an analysis for people: a styled terminal view,
// a standalone HTML page with an SVG forecast chart, and evaluation
// summaries.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/neuroquant/pkg/models"
	"github.com/seenimoa/neuroquant/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Palette
// ════════════════════════════════════════════════════════════════════

// Severity colours.
const (
	ColorGreen  = "#2ecc71"
	ColorBlue   = "#3498db"
	ColorGray   = "#95a5a6"
	ColorOrange = "#f39c12"
	ColorRed    = "#e74c3c"
)

// SeverityColor maps a decision severity to its hex colour.
func SeverityColor(s models.Severity) string {
	switch s {
	case models.SeverityGreen:
		return ColorGreen
	case models.SeverityBlue:
		return ColorBlue
	case models.SeverityOrange:
		return ColorOrange
	case models.SeverityRed:
		return ColorRed
	default:
		return ColorGray
	}
}

// LabelColor maps a sentiment label to its hex colour.
func LabelColor(l models.SentimentLabel) string {
	switch l {
	case models.SentimentPositive:
		return ColorGreen
	case models.SentimentNegative:
		return ColorRed
	default:
		return ColorGray
	}
}

// ════════════════════════════════════════════════════════════════════
// View: flattened report data shared by every renderer
// ════════════════════════════════════════════════════════════════════

// ForecastRow is one forecast step for display.
type ForecastRow struct {
	Day       int
	Date      string
	Price     string
	ChangePct string // vs current price
	Up        bool
}

// NewsCard is one scored headline for display.
type NewsCard struct {
	Title     string
	Source    string
	Published string
	Link      string
	Score     string
	Label     string
	Color     string
	Scored    bool
}

// View is the display model of an AnalysisReport.
type View struct {
	Title       string
	Ticker      string
	Price       string
	Volume      string
	GeneratedAt string
	Duration    string

	Verdict       string
	Rationale     string
	Rule          string
	SeverityColor string

	RSI   string
	MACD  string
	SMA20 string
	Trend string // forecast change first to last step
	Flat  bool

	Sentiment      string
	SentimentLabel string
	SentimentColor string
	Scored         int
	Failed         int

	Veto     string // riskiest headline title, empty when none
	VetoNote string

	Forecast   []ForecastRow
	News       []NewsCard
	Commentary string
}

// BuildView flattens r for rendering.
func BuildView(r *models.AnalysisReport) View {
	v := View{
		Title:         fmt.Sprintf("NeuroQuant Analysis: %s", r.Ticker),
		Ticker:        r.Ticker,
		Price:         FormatPrice(r.CurrentPrice),
		Volume:        utils.FormatVolume(r.Volume),
		GeneratedAt:   r.Timestamp.Format("02 Jan 2006 15:04 MST"),
		Duration:      FormatDuration(r.Duration),
		Verdict:       r.Decision.Verdict.Display(),
		Rationale:     r.Decision.Rationale,
		Rule:          r.Decision.Rule,
		SeverityColor: SeverityColor(r.Decision.Severity),
		RSI:           fmt.Sprintf("%.2f", r.Indicators.RSI),
		MACD:          fmt.Sprintf("%.3f / %.3f", r.Indicators.MACD.MACD, r.Indicators.MACD.Signal),
		SMA20:         FormatPrice(r.Indicators.SMA20),
		Trend:         utils.FormatPct(r.Forecast.ChangePct()),
		Flat:          r.Degenerate,

		Sentiment:      fmt.Sprintf("%+.2f", r.Sentiment.AverageScore),
		SentimentLabel: string(r.Sentiment.Label),
		SentimentColor: LabelColor(r.Sentiment.Label),
		Scored:         r.Sentiment.Scored,
		Failed:         r.Sentiment.Failed,
		Commentary:     r.Commentary,
	}
	if r.Sentiment.Riskiest != nil {
		v.Veto = r.Sentiment.Riskiest.Title
		v.VetoNote = fmt.Sprintf("Score %+.2f. The AI flagged this headline as a risk; the decision was reviewed against it.",
			r.Sentiment.Riskiest.SentimentScore)
	}

	for i, p := range r.Forecast {
		row := ForecastRow{
			Day:   i + 1,
			Price: FormatPrice(p),
			Up:    p >= r.CurrentPrice,
		}
		if r.CurrentPrice > 0 {
			row.ChangePct = utils.FormatPct((p - r.CurrentPrice) / r.CurrentPrice * 100)
		}
		if i < len(r.ForecastDates) {
			row.Date = r.ForecastDates[i].Format("2006-01-02 Mon")
		}
		v.Forecast = append(v.Forecast, row)
	}

	for _, n := range r.News {
		card := NewsCard{
			Title:     n.Title,
			Source:    n.Source,
			Published: n.Published,
			Link:      n.Link,
			Scored:    n.Scored,
			Label:     "unscored",
			Score:     "n/a",
			Color:     ColorGray,
		}
		if n.Scored {
			card.Score = fmt.Sprintf("%+.2f", n.SentimentScore)
			card.Label = string(n.SentimentLabel)
			card.Color = LabelColor(n.SentimentLabel)
		}
		v.News = append(v.News, card)
	}
	return v
}

// ════════════════════════════════════════════════════════════════════
// Formatting
// ════════════════════════════════════════════════════════════════════

// FormatPrice renders a price with two decimals and a dollar sign.
func FormatPrice(p float64) string {
	return "$" + decimal.NewFromFloat(p).StringFixed(2)
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}
