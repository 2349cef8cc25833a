package utils

import (
	"regexp"
	"strings"
)

// Common ticker aliases. Crypto pairs are quoted in USD on Yahoo.
var tickerAliases = map[string]string{
	"BTC":       "BTC-USD",
	"BITCOIN":   "BTC-USD",
	"ETH":       "ETH-USD",
	"ETHEREUM":  "ETH-USD",
	"SOL":       "SOL-USD",
	"NVIDIA":    "NVDA",
	"TESLA":     "TSLA",
	"APPLE":     "AAPL",
	"AMAZON":    "AMZN",
	"GOOGLE":    "GOOGL",
	"MICROSOFT": "MSFT",
}

// DefaultWatchlist holds the quick-access tickers.
var DefaultWatchlist = []string{"NVDA", "TSLA", "AAPL", "AMD", "AMZN", "BTC-USD"}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,19}$`)

// NormalizeTicker normalizes a user-input ticker to its canonical Yahoo form.
// It handles aliases, uppercasing, and whitespace.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ValidTicker reports whether a normalized ticker looks like a Yahoo symbol.
func ValidTicker(ticker string) bool {
	return tickerPattern.MatchString(ticker)
}

// IsCrypto reports whether the ticker is a USD-quoted crypto pair.
func IsCrypto(ticker string) bool {
	return strings.HasSuffix(NormalizeTicker(ticker), "-USD")
}
