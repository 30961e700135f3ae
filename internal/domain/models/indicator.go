package models

import "time"

// Signal values used across trend and oscillator readings.
const (
	SignalBullish    = "bullish"
	SignalBearish    = "bearish"
	SignalNeutral    = "neutral"
	SignalOverbought = "overbought"
	SignalOversold   = "oversold"
)

// IndicatorSnapshot holds the raw indicator values for one evaluation.
// Computed fresh per request, never cached across requests.
type IndicatorSnapshot struct {
	Price      float64
	SMA20      float64
	SMA50      float64
	EMA12      float64
	EMA26      float64
	MACD       float64
	MACDSignal float64
	MACDHist   [3]float64 // oldest to newest
	RSI        float64
	BBUpper    float64
	BBMiddle   float64
	BBLower    float64
}

// TrendSignals groups the trend-following readings.
type TrendSignals struct {
	SMA           string
	MACD          string
	MACDHistogram string
}

// OscillatorSignals groups the bounded oscillator readings.
type OscillatorSignals struct {
	RSI       string
	Bollinger string
}

// OverallSignal is the weighted vote across all readings.
type OverallSignal struct {
	Direction    string
	Strength     float64 // [0,1]
	BullishVotes float64
	BearishVotes float64
}

// SignalVerdict is the technical-analysis verdict for one symbol.
type SignalVerdict struct {
	Symbol      string
	Timestamp   time.Time
	Trend       TrendSignals
	Oscillators OscillatorSignals
	Support     float64
	Resistance  float64
	Overall     OverallSignal
	Snapshot    IndicatorSnapshot
}
