package indicators

import (
	"math"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
)

func series(n int, price func(i int) float64) []models.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, n)
	for i := 0; i < n; i++ {
		pts[i] = models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Hour), Price: price(i)}
	}
	return pts
}

func TestComputeInsufficientData(t *testing.T) {
	pts := series(49, func(i int) float64 { return 100 })
	if v := Compute("BTC", pts); v != nil {
		t.Fatalf("expected nil verdict for %d points", len(pts))
	}
}

func TestComputeAscendingSeries(t *testing.T) {
	pts := series(60, func(i int) float64 { return 100 + float64(i) })
	v := Compute("BTC", pts)
	if v == nil {
		t.Fatalf("expected verdict")
	}

	if got, want := v.Snapshot.SMA20, 149.5; math.Abs(got-want) > 1e-9 {
		t.Fatalf("SMA20 = %v, want %v", got, want)
	}
	if got, want := v.Snapshot.SMA50, 134.5; math.Abs(got-want) > 1e-9 {
		t.Fatalf("SMA50 = %v, want %v", got, want)
	}
	if v.Trend.SMA != models.SignalBullish {
		t.Fatalf("SMA trend = %s", v.Trend.SMA)
	}
	if v.Trend.MACD != models.SignalBullish {
		t.Fatalf("MACD signal = %s", v.Trend.MACD)
	}
	// Strictly ascending means zero losses; RSI falls back to neutral 50
	// instead of dividing by zero.
	if v.Snapshot.RSI != 50 {
		t.Fatalf("RSI = %v, want neutral fallback 50", v.Snapshot.RSI)
	}
	if v.Oscillators.Bollinger != models.SignalOverbought {
		t.Fatalf("bollinger = %s, want overbought", v.Oscillators.Bollinger)
	}
	if v.Support != v.Snapshot.BBLower || v.Resistance != v.Snapshot.BBUpper {
		t.Fatalf("support/resistance not taken from bands")
	}
}

func TestComputeDescendingSeries(t *testing.T) {
	pts := series(60, func(i int) float64 { return 200 - float64(i) })
	v := Compute("BTC", pts)
	if v == nil {
		t.Fatalf("expected verdict")
	}
	if v.Snapshot.RSI != 0 {
		t.Fatalf("RSI = %v, want 0 for all-loss series", v.Snapshot.RSI)
	}
	if v.Oscillators.RSI != models.SignalOversold {
		t.Fatalf("RSI signal = %s", v.Oscillators.RSI)
	}
	if v.Trend.SMA != models.SignalBearish {
		t.Fatalf("SMA trend = %s", v.Trend.SMA)
	}
	if v.Trend.MACD != models.SignalBearish {
		t.Fatalf("MACD signal = %s", v.Trend.MACD)
	}
}

func TestComputeFlatSeries(t *testing.T) {
	pts := series(60, func(i int) float64 { return 100 })
	v := Compute("BTC", pts)
	if v == nil {
		t.Fatalf("expected verdict")
	}
	// Zero band width must not divide by zero and reads as neutral.
	if v.Oscillators.Bollinger != models.SignalNeutral {
		t.Fatalf("bollinger = %s, want neutral", v.Oscillators.Bollinger)
	}
	if v.Snapshot.RSI != 50 {
		t.Fatalf("RSI = %v, want 50", v.Snapshot.RSI)
	}
	if v.Snapshot.BBUpper != v.Snapshot.BBLower {
		t.Fatalf("flat series should have zero band width")
	}
}

func TestComputeDeterministic(t *testing.T) {
	pts := series(60, func(i int) float64 {
		return 50000 + 500*math.Sin(float64(i)/5) + 10*float64(i)
	})
	a := Compute("BTC", pts)
	b := Compute("BTC", pts)
	if a == nil || b == nil {
		t.Fatalf("expected verdicts")
	}
	if a.Snapshot != b.Snapshot {
		t.Fatalf("snapshots differ across runs:\n%+v\n%+v", a.Snapshot, b.Snapshot)
	}
	if a.Overall != b.Overall {
		t.Fatalf("overall differs across runs")
	}
}

func TestHistogramDirection(t *testing.T) {
	cases := []struct {
		hist [3]float64
		want string
	}{
		{[3]float64{1, 2, 3}, models.SignalBullish},
		{[3]float64{3, 2, 1}, models.SignalBearish},
		{[3]float64{1, 3, 2}, models.SignalNeutral},
		{[3]float64{1, 1, 1}, models.SignalNeutral},
	}
	for _, c := range cases {
		if got := histogramDirection(c.hist); got != c.want {
			t.Fatalf("histogramDirection(%v) = %s, want %s", c.hist, got, c.want)
		}
	}
}

func TestVotingTieIsNeutral(t *testing.T) {
	snap := models.IndicatorSnapshot{
		Price: 100, SMA20: 101, SMA50: 100, // bullish
		MACD: -1, MACDSignal: 0, // bearish
		MACDHist: [3]float64{0, 0, 0}, // neutral
		RSI:      50,
		BBUpper:  110, BBMiddle: 100, BBLower: 90, // price at 0.5, neutral
	}
	v := verdict("BTC", snap)
	if v.Overall.Direction != models.SignalNeutral {
		t.Fatalf("overall = %s, want neutral on tie", v.Overall.Direction)
	}
	if v.Overall.Strength != 0.5 {
		t.Fatalf("strength = %v, want 0.5", v.Overall.Strength)
	}
}
