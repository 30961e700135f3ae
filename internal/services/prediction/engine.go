package prediction

import (
	"time"

	"CoinSight/internal/domain/models"
)

// Per-unit adjustment factors. Model sentiment gets a stronger factor than
// the lexical fallback, and every adjustment scales linearly with the
// horizon as days/10.
const (
	modelSentimentFactor   = 0.15
	lexicalSentimentFactor = 0.10
	technicalFactor        = 0.05
)

// Evaluate produces one forecast per horizon from the fused sentiment and
// the optional technical verdict. A nil verdict means insufficient price
// history and yields a sentiment-only forecast, never an error. The result
// depends only on the arguments.
func Evaluate(symbol string, currentPrice float64, verdict *models.SignalVerdict, sent models.FusedSentiment, horizons []int, now time.Time) *models.PredictionSet {
	set := &models.PredictionSet{
		Symbol:       symbol,
		CurrentPrice: currentPrice,
		GeneratedAt:  now,
		Predictions:  make(map[int]*Prediction, len(horizons)),
		Verdict:      verdict,
		Sentiment:    sent,
	}
	for _, days := range horizons {
		set.Predictions[days] = forHorizon(symbol, currentPrice, days, verdict, sent, now)
	}
	return set
}

// Prediction aliases the domain type so callers of this package read
// naturally.
type Prediction = models.Prediction

func forHorizon(symbol string, currentPrice float64, days int, verdict *models.SignalVerdict, sent models.FusedSentiment, now time.Time) *Prediction {
	scale := float64(days) / 10

	var sentAdj float64
	usedModel := sent.BlendedModel != nil
	if usedModel {
		// Model scores live on [-10,10]; normalize before applying.
		sentAdj = (*sent.BlendedModel / 10) * modelSentimentFactor * scale
	} else {
		sentAdj = sent.BlendedLexical * lexicalSentimentFactor * scale
	}

	var techAdj float64
	if verdict != nil {
		switch verdict.Overall.Direction {
		case models.SignalBullish:
			techAdj = technicalFactor * verdict.Overall.Strength * scale
		case models.SignalBearish:
			techAdj = -technicalFactor * verdict.Overall.Strength * scale
		}
	}

	predicted := currentPrice * (1 + sentAdj + techAdj)

	direction := models.DirectionDown
	if predicted > currentPrice {
		direction = models.DirectionUp
	}

	return &Prediction{
		Symbol:                symbol,
		HorizonDays:           days,
		CurrentPrice:          currentPrice,
		PredictedPrice:        predicted,
		Direction:             direction,
		Confidence:            confidence(sentAdj, techAdj, direction, verdict != nil),
		SentimentContribution: sentAdj,
		TechnicalContribution: techAdj,
		UsedModelSentiment:    usedModel,
		UsedTechnical:         verdict != nil,
		PredictedAt:           now,
		TargetDate:            now.AddDate(0, 0, days),
	}
}

// confidence grades how well the two adjustments and the final direction
// agree. Without a technical verdict there is nothing to corroborate the
// sentiment signal, so confidence stays at base.
func confidence(sentAdj, techAdj float64, direction string, hasVerdict bool) float64 {
	if !hasVerdict {
		return 0.5
	}

	sentDir := adjDirection(sentAdj)
	techDir := adjDirection(techAdj)

	switch {
	case sentDir == techDir && techDir == direction:
		return 0.8
	case sentDir == techDir:
		return 0.7
	case sentDir == direction || techDir == direction:
		return 0.6
	default:
		return 0.5
	}
}

func adjDirection(adj float64) string {
	if adj > 0 {
		return models.DirectionUp
	}
	return models.DirectionDown
}
