package technical

import (
	"math/rand"
	"testing"
	"time"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// benchCandles creates a random walk of n daily candles.
func benchCandles(n int) []models.OHLCV {
	candles := make([]models.OHLCV, n)
	rng := rand.New(rand.NewSource(42))
	price := 150.0
	t := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := range candles {
		change := (rng.Float64() - 0.48) * 4 // slight upward bias
		open := price
		close := price + change
		candles[i] = models.OHLCV{
			Timestamp: t,
			Open:      open,
			High:      max(open, close) + rng.Float64(),
			Low:       min(open, close) - rng.Float64(),
			Close:     close,
			Volume:    int64(rng.Intn(50_000_000) + 1_000_000),
		}
		price = close
		t = t.Add(24 * time.Hour)
	}
	return candles
}

func BenchmarkRSI14_252(b *testing.B) {
	candles := benchCandles(252)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RSI(candles, 14)
	}
}

func BenchmarkMACDLatest_252(b *testing.B) {
	candles := benchCandles(252)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MACDLatest(candles, 12, 26, 9)
	}
}

func BenchmarkComputeAll_252(b *testing.B) {
	candles := benchCandles(252)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeAll(candles, 14)
	}
}

func BenchmarkComputeAll_1260(b *testing.B) {
	candles := benchCandles(1260)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeAll(candles, 14)
	}
}
