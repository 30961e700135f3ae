package sentiment

import (
	"math"
	"time"

	"CoinSight/internal/domain/models"
)

const (
	// RecentWindow bounds the fresh sentiment slice used at full weight.
	RecentWindow = 24 * time.Hour

	// HistoricalWindow bounds how far back significant events are considered.
	HistoricalWindow = 7 * 24 * time.Hour

	// Thresholds above which a historical record counts as a significant event.
	significantLexical = 0.6
	significantModel   = 6.0

	// Each significant event shifts 10% of the blend toward history, capped at 40%.
	historicalWeightStep = 0.1
	historicalWeightCap  = 0.4
)

// Fuse blends the last 24h of sentiment with significant events from the
// preceding week into a single signal. Records outside both windows are
// ignored. Model scores are optional per record and the blend degrades
// gracefully when the scoring upstream produced none.
func Fuse(records []models.SentimentRecord, now time.Time) models.FusedSentiment {
	recentCut := now.Add(-RecentWindow)
	historyCut := now.Add(-HistoricalWindow)

	var (
		recentLex, recentModel   accumulator
		historyLex, historyModel accumulator
		significant              int
	)

	for i := range records {
		r := &records[i]
		switch {
		case !r.Timestamp.Before(recentCut):
			recentLex.add(r.LexicalScore)
			if r.ModelScore != nil {
				recentModel.add(*r.ModelScore)
			}
		case !r.Timestamp.Before(historyCut):
			if !isSignificant(r) {
				continue
			}
			significant++
			historyLex.add(r.LexicalScore)
			if r.ModelScore != nil {
				historyModel.add(*r.ModelScore)
			}
		}
	}

	histWeight := math.Min(historicalWeightCap, historicalWeightStep*float64(significant))
	recWeight := 1 - histWeight

	fused := models.FusedSentiment{
		RecentLexical:     recentLex.mean(),
		HistoricalLexical: historyLex.mean(),
		RecentWeight:      recWeight,
		HistoricalWeight:  histWeight,
		SignificantEvents: significant,
	}
	fused.BlendedLexical = fused.RecentLexical*recWeight + fused.HistoricalLexical*histWeight

	switch {
	case recentModel.n > 0 && historyModel.n > 0:
		blended := recentModel.mean()*recWeight + historyModel.mean()*histWeight
		fused.BlendedModel = &blended
	case recentModel.n > 0:
		m := recentModel.mean()
		fused.BlendedModel = &m
	case historyModel.n > 0:
		m := historyModel.mean()
		fused.BlendedModel = &m
	}

	return fused
}

func isSignificant(r *models.SentimentRecord) bool {
	if math.Abs(r.LexicalScore) > significantLexical {
		return true
	}
	return r.ModelScore != nil && math.Abs(*r.ModelScore) > significantModel
}

type accumulator struct {
	sum float64
	n   int
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.n++
}

func (a *accumulator) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}
