// Package models defines the core data structures used throughout NeuroQuant.
package models

import "time"

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Timeframe represents chart timeframe for OHLCV data.
type Timeframe string

const (
	Timeframe1Hour  Timeframe = "1h"
	Timeframe1Day   Timeframe = "1d"
	Timeframe1Week  Timeframe = "1wk"
	Timeframe1Month Timeframe = "1mo"
)

// MACDData holds the latest MACD line, signal line and histogram.
type MACDData struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// TechnicalIndicators holds the latest indicator readings for a series.
type TechnicalIndicators struct {
	RSI   float64  `json:"rsi"`
	MACD  MACDData `json:"macd"`
	SMA20 float64  `json:"sma_20"`
}
