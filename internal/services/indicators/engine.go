package indicators

import (
	"math"
	"sort"
	"time"

	"CoinSight/internal/domain/models"
)

// MinPoints is the minimum history length for a meaningful verdict.
const MinPoints = 50

// Threshold constants for oscillator readings.
const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0
	bbOverbought  = 0.8
	bbOversold    = 0.2
)

// Compute derives the full technical verdict for an ascending price series.
// It returns nil when fewer than MinPoints points are available; that is the
// "insufficient data" outcome, not an error.
func Compute(symbol string, points []models.PricePoint) *models.SignalVerdict {
	if len(points) < MinPoints {
		return nil
	}

	pts := make([]models.PricePoint, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Timestamp.Before(pts[j].Timestamp) })

	prices := make([]float64, len(pts))
	for i, p := range pts {
		prices[i] = p.Price
	}

	snap := snapshot(prices)
	return verdict(symbol, snap)
}

// snapshot computes raw indicator values from the closing price series.
func snapshot(prices []float64) models.IndicatorSnapshot {
	ema12 := ema(prices, 12)
	ema26 := ema(prices, 26)

	macd := make([]float64, len(prices))
	for i := range prices {
		macd[i] = ema12[i] - ema26[i]
	}
	signal := ema(macd, 9)

	hist := make([]float64, len(prices))
	for i := range prices {
		hist[i] = macd[i] - signal[i]
	}

	n := len(prices)
	snap := models.IndicatorSnapshot{
		Price:      prices[n-1],
		SMA20:      sma(prices, 20),
		SMA50:      sma(prices, 50),
		EMA12:      ema12[n-1],
		EMA26:      ema26[n-1],
		MACD:       macd[n-1],
		MACDSignal: signal[n-1],
		MACDHist:   [3]float64{hist[n-3], hist[n-2], hist[n-1]},
		RSI:        rsi(prices, 14),
	}
	snap.BBMiddle, snap.BBUpper, snap.BBLower = bollinger(prices, 20, 2)
	return snap
}

// verdict turns a snapshot into trend/oscillator signals and a weighted vote.
func verdict(symbol string, snap models.IndicatorSnapshot) *models.SignalVerdict {
	v := &models.SignalVerdict{
		Symbol:     symbol,
		Timestamp:  time.Now().UTC(),
		Support:    snap.BBLower,
		Resistance: snap.BBUpper,
		Snapshot:   snap,
	}

	if snap.SMA20 > snap.SMA50 {
		v.Trend.SMA = models.SignalBullish
	} else {
		v.Trend.SMA = models.SignalBearish
	}

	if snap.MACD > snap.MACDSignal {
		v.Trend.MACD = models.SignalBullish
	} else {
		v.Trend.MACD = models.SignalBearish
	}

	v.Trend.MACDHistogram = histogramDirection(snap.MACDHist)

	switch {
	case snap.RSI > rsiOverbought:
		v.Oscillators.RSI = models.SignalOverbought
	case snap.RSI < rsiOversold:
		v.Oscillators.RSI = models.SignalOversold
	default:
		v.Oscillators.RSI = models.SignalNeutral
	}

	v.Oscillators.Bollinger = bollingerSignal(snap.Price, snap.BBUpper, snap.BBLower)

	var bullish, bearish float64
	if v.Trend.SMA == models.SignalBullish {
		bullish++
	} else {
		bearish++
	}
	if v.Trend.MACD == models.SignalBullish {
		bullish++
	} else {
		bearish++
	}
	switch v.Trend.MACDHistogram {
	case models.SignalBullish:
		bullish += 0.5
	case models.SignalBearish:
		bearish += 0.5
	}
	switch v.Oscillators.RSI {
	case models.SignalOversold:
		bullish++
	case models.SignalOverbought:
		bearish++
	}
	switch v.Oscillators.Bollinger {
	case models.SignalOversold:
		bullish++
	case models.SignalOverbought:
		bearish++
	}

	v.Overall.BullishVotes = bullish
	v.Overall.BearishVotes = bearish
	switch {
	case bullish > bearish:
		v.Overall.Direction = models.SignalBullish
		v.Overall.Strength = bullish / (bullish + bearish)
	case bearish > bullish:
		v.Overall.Direction = models.SignalBearish
		v.Overall.Strength = bearish / (bullish + bearish)
	default:
		v.Overall.Direction = models.SignalNeutral
		v.Overall.Strength = 0.5
	}
	return v
}

// sma is the arithmetic mean of the last window prices.
func sma(prices []float64, window int) float64 {
	n := len(prices)
	if window > n {
		window = n
	}
	sum := 0.0
	for _, p := range prices[n-window:] {
		sum += p
	}
	return sum / float64(window)
}

// ema computes the exponential moving average series with smoothing
// alpha = 2/(span+1), seeded by the first value.
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// rsi computes the relative strength index over the last window differences.
// A zero average loss would divide by zero; that case reads as neutral 50.
func rsi(prices []float64, window int) float64 {
	n := len(prices)
	if n < window+1 {
		return 50
	}
	var gain, loss float64
	for i := n - window; i < n; i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(window)
	avgLoss := loss / float64(window)
	if avgLoss == 0 {
		return 50
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// bollinger returns middle/upper/lower bands over the last window prices.
func bollinger(prices []float64, window int, k float64) (middle, upper, lower float64) {
	n := len(prices)
	if window > n {
		window = n
	}
	middle = sma(prices, window)
	var sq float64
	for _, p := range prices[n-window:] {
		d := p - middle
		sq += d * d
	}
	// sample standard deviation, matching rolling std with ddof=1
	std := 0.0
	if window > 1 {
		std = math.Sqrt(sq / float64(window-1))
	}
	return middle, middle + k*std, middle - k*std
}

// bollingerSignal positions price within the bands, clamped to [0,1].
// Zero band width (flat series) reads as neutral.
func bollingerSignal(price, upper, lower float64) string {
	width := upper - lower
	if width == 0 {
		return models.SignalNeutral
	}
	pos := (price - lower) / width
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	switch {
	case pos > bbOverbought:
		return models.SignalOverbought
	case pos < bbOversold:
		return models.SignalOversold
	default:
		return models.SignalNeutral
	}
}

// histogramDirection looks at the last three histogram values: strictly
// increasing is bullish, strictly decreasing is bearish.
func histogramDirection(hist [3]float64) string {
	switch {
	case hist[2] > hist[1] && hist[1] > hist[0]:
		return models.SignalBullish
	case hist[2] < hist[1] && hist[1] < hist[0]:
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}
