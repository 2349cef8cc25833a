// Package technical computes the indicator readings that feed the decision
// rules and the commentary prompt. All functions operate on []models.OHLCV
// candle slices ordered oldest first.
package technical

import (
	talib "github.com/markcheno/go-talib"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// Default indicator periods.
const (
	DefaultRSIPeriod = 14
	DefaultMACDFast  = 12
	DefaultMACDSlow  = 26
	DefaultMACDSig   = 9
	DefaultSMAPeriod = 20
)

// MACD state labels.
const (
	MACDBullish = "bullish"
	MACDBearish = "bearish"
	MACDUnknown = "n/a"
)

// Closes extracts the close column.
func Closes(candles []models.OHLCV) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// RSI returns the Wilder RSI series for period, with zeros during the
// warm-up bars. Returns nil when there are not enough closes.
func RSI(candles []models.OHLCV, period int) []float64 {
	if period < 2 {
		period = DefaultRSIPeriod
	}
	if len(candles) <= period {
		return nil
	}
	return talib.Rsi(Closes(candles), period)
}

// RSILatest returns only the most recent RSI value, or 0 when unavailable.
func RSILatest(candles []models.OHLCV, period int) float64 {
	vals := RSI(candles, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// MACDLatest returns the most recent MACD line, signal line and histogram.
// A zero value is returned when the series is shorter than the warm-up.
func MACDLatest(candles []models.OHLCV, fast, slow, signal int) models.MACDData {
	if fast <= 0 {
		fast = DefaultMACDFast
	}
	if slow <= 0 {
		slow = DefaultMACDSlow
	}
	if signal <= 0 {
		signal = DefaultMACDSig
	}
	if fast >= slow || len(candles) < slow+signal-1 {
		return models.MACDData{}
	}

	macd, sig, hist := talib.Macd(Closes(candles), fast, slow, signal)
	last := len(macd) - 1
	return models.MACDData{
		MACD:      macd[last],
		Signal:    sig[last],
		Histogram: hist[last],
	}
}

// SMALatest returns the simple moving average of the last period closes.
func SMALatest(candles []models.OHLCV, period int) float64 {
	if period <= 0 {
		period = DefaultSMAPeriod
	}
	if len(candles) < period {
		return 0
	}
	vals := talib.Sma(Closes(candles), period)
	return vals[len(vals)-1]
}

// ComputeAll returns the latest RSI, MACD(12,26,9) and SMA(20) readings.
// rsiPeriod <= 0 selects the default.
func ComputeAll(candles []models.OHLCV, rsiPeriod int) models.TechnicalIndicators {
	return models.TechnicalIndicators{
		RSI:   RSILatest(candles, rsiPeriod),
		MACD:  MACDLatest(candles, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSig),
		SMA20: SMALatest(candles, DefaultSMAPeriod),
	}
}

// MACDState describes the MACD line relative to its signal line.
func MACDState(m models.MACDData) string {
	switch {
	case m == (models.MACDData{}):
		return MACDUnknown
	case m.MACD > m.Signal:
		return MACDBullish
	default:
		return MACDBearish
	}
}
