package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/neuroquant/pkg/models"
	"github.com/seenimoa/neuroquant/pkg/utils"
)

const termWidth = 72

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#1F2937")).
		Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBlue)).
		MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorGray))

	vetoStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(ColorRed)).
		Padding(0, 1).
		Width(termWidth)

	cardStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		PaddingLeft(1).
		Width(termWidth - 2)

	commentaryStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#8B5CF6")).
		Padding(0, 1).
		Width(termWidth - 2)
)

// decisionStyle is the verdict box, bordered in the severity colour.
func decisionStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Foreground(lipgloss.Color(color)).
		Padding(0, 2).
		Width(termWidth - 2)
}

// Terminal renders r for a colour terminal.
func Terminal(r *models.AnalysisReport) string {
	v := BuildView(r)
	var sections []string

	sections = append(sections,
		titleStyle.Render(v.Title),
		mutedStyle.Render(fmt.Sprintf("Generated %s in %s", v.GeneratedAt, v.Duration)))

	if v.Veto != "" {
		sections = append(sections, "", vetoStyle.Render("RISK WARNING: "+v.Veto), mutedStyle.Render(v.VetoNote))
	}

	verdict := lipgloss.NewStyle().Bold(true).Render(v.Verdict)
	sections = append(sections, "", decisionStyle(v.SeverityColor).Render(verdict+"\n"+v.Rationale))

	sections = append(sections, sectionStyle.Render("Market"))
	sections = append(sections, keyValues([][2]string{
		{"Price", v.Price},
		{"Volume", v.Volume},
		{"RSI (14)", v.RSI},
		{"MACD / Signal", v.MACD},
		{"SMA (20)", v.SMA20},
		{"Forecast trend", v.Trend},
	}))

	sections = append(sections, sectionStyle.Render("Forecast"))
	if v.Flat {
		sections = append(sections, mutedStyle.Render("Not enough history for the model; showing the last close."))
	}
	sections = append(sections, forecastTable(v.Forecast))

	sentiment := lipgloss.NewStyle().Foreground(lipgloss.Color(v.SentimentColor)).
		Render(fmt.Sprintf("%s (%s)", v.Sentiment, v.SentimentLabel))
	sections = append(sections, sectionStyle.Render("News Sentiment"),
		fmt.Sprintf("%s  %s", sentiment, mutedStyle.Render(fmt.Sprintf("%d scored, %d failed", v.Scored, v.Failed))))
	if len(v.News) == 0 {
		sections = append(sections, mutedStyle.Render("No recent headlines."))
	}
	for _, n := range v.News {
		sections = append(sections, newsCard(n))
	}

	if v.Commentary != "" {
		sections = append(sections, sectionStyle.Render("AI Analyst"), commentaryStyle.Render(v.Commentary))
	}

	sections = append(sections, "", mutedStyle.Render("Educational output only. Not investment advice."))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func keyValues(rows [][2]string) string {
	var sb strings.Builder
	for i, kv := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "  %-16s %s", kv[0], kv[1])
	}
	return sb.String()
}

func forecastTable(rows []ForecastRow) string {
	var sb strings.Builder
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %-4s %-16s %12s %10s", "Day", "Date", "Price", "Change")))
	for _, r := range rows {
		color := ColorRed
		if r.Up {
			color = ColorGreen
		}
		change := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(fmt.Sprintf("%10s", r.ChangePct))
		fmt.Fprintf(&sb, "\n  %-4d %-16s %12s %s", r.Day, r.Date, r.Price, change)
	}
	return sb.String()
}

func newsCard(n NewsCard) string {
	score := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color)).
		Render(fmt.Sprintf("AI score %s (%s)", n.Score, n.Label))
	meta := mutedStyle.Render(fmt.Sprintf("%s | %s", n.Source, n.Published))
	return cardStyle.BorderForeground(lipgloss.Color(n.Color)).
		Render(n.Title + "\n" + meta + "  " + score)
}

// Evaluation renders a walk-forward evaluation summary.
func Evaluation(r *models.EvaluationResult) string {
	excess := r.ExcessReturn()
	color := ColorGreen
	if excess < 0 {
		color = ColorRed
	}
	sections := []string{
		titleStyle.Render(fmt.Sprintf("Forecast Evaluation: %s (%s)", r.Ticker, r.Model)),
		mutedStyle.Render(fmt.Sprintf("%s to %s, %d predictions",
			r.From.Format("2006-01-02"), r.To.Format("2006-01-02"), r.Samples)),
		"",
		keyValues([][2]string{
			{"Direction hit", fmt.Sprintf("%.2f%% (%d/%d)", r.DirectionalAccuracy, r.Hits, r.Samples)},
			{"Strategy", utils.FormatPct(r.StrategyReturn)},
			{"Buy and hold", utils.FormatPct(r.BuyHoldReturn)},
			{"Days long", fmt.Sprintf("%d", r.LongDays)},
			{"Max drawdown", fmt.Sprintf("%.2f pts", r.MaxDrawdownPct)},
			{"Sharpe", fmt.Sprintf("%.2f", r.SharpeRatio)},
			{"Hit streak", fmt.Sprintf("%d", r.LongestHitStreak)},
			{"Miss streak", fmt.Sprintf("%d", r.LongestMissStreak)},
		}),
		"",
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).
			Render(fmt.Sprintf("Excess over buy and hold: %s", utils.FormatPct(excess))),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// Summary is a one-line verdict for logs and the watch loop.
func Summary(r *models.AnalysisReport) string {
	line := fmt.Sprintf("%-8s %10s  %-24s trend %s  sentiment %+.2f",
		r.Ticker, FormatPrice(r.CurrentPrice), r.Decision.Verdict.Display(),
		utils.FormatPct(r.Forecast.ChangePct()), r.Sentiment.AverageScore)
	if r.Sentiment.Riskiest != nil {
		line += "  [risk headline]"
	}
	return line
}
