package llm

import (
	"fmt"
	"strings"
)

// MaxPromptHeadlines caps the headlines included in the prompt.
const MaxPromptHeadlines = 3

const noHeadlines = "No recent headlines."

// BuildPrompt renders the hybrid technical + news prompt for b.
func BuildPrompt(b Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a professional financial strategist. Combine the data below into an analysis of %s.\n\n", b.Ticker)

	sb.WriteString("A) TECHNICAL INDICATORS:\n")
	fmt.Fprintf(&sb, "- Price: %.2f\n", b.Price)
	fmt.Fprintf(&sb, "- RSI: %.2f (below 30 oversold, above 70 overbought)\n", b.RSI)
	fmt.Fprintf(&sb, "- MACD state: %s\n", b.MACDSignal)
	fmt.Fprintf(&sb, "- Algorithm verdict: %s\n\n", b.Verdict)

	sb.WriteString("B) NEWS AND SENTIMENT:\n")
	fmt.Fprintf(&sb, "- Market sentiment score: %.2f (-1 negative, +1 positive)\n", b.Sentiment)
	sb.WriteString("- Latest headlines:\n")
	sb.WriteString(headlineList(b.Headlines))
	sb.WriteString("\n\n")

	sb.WriteString("TASK:\n")
	sb.WriteString("Compare the technical picture with the news flow. If the technicals say BUY while the news is bad, is it a trap? ")
	sb.WriteString("Or do they support each other? Without giving investment advice, describe the risks and opportunities in 3-4 fluent sentences.")
	return sb.String()
}

func headlineList(titles []string) string {
	lines := make([]string, 0, MaxPromptHeadlines)
	for _, t := range titles {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		lines = append(lines, "  - "+t)
		if len(lines) == MaxPromptHeadlines {
			break
		}
	}
	if len(lines) == 0 {
		return "  " + noHeadlines
	}
	return strings.Join(lines, "\n")
}
