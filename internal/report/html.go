package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// ChartLookback is how many historical closes the HTML chart shows.
const ChartLookback = 60

var page = template.Must(template.New("report").Parse(pageTemplate))

type htmlPage struct {
	View
	ForecastChart  template.HTML
	SentimentGauge template.HTML
}

// GenerateHTML renders r as a standalone HTML page. history supplies the
// closes drawn before the forecast and may be empty.
func GenerateHTML(r *models.AnalysisReport, history []models.OHLCV) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report: nil analysis: %w", models.ErrPrecondition)
	}
	data := htmlPage{
		View: BuildView(r),
		// Charts are built from escaped strings and numbers only.
		ForecastChart:  template.HTML(ForecastChart(history, r, ChartLookback, ChartConfig{})),
		SentimentGauge: template.HTML(SentimentGauge(r.Sentiment.AverageScore, string(r.Sentiment.Label), 0)),
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("report: render html: %w", err)
	}
	return buf.String(), nil
}
