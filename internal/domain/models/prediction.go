package models

import "time"

// Prediction directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Prediction is a single per-horizon forecast. Immutable once produced.
type Prediction struct {
	Symbol                string
	HorizonDays           int
	CurrentPrice          float64
	PredictedPrice        float64
	Direction             string // "up" | "down"
	Confidence            float64
	SentimentContribution float64
	TechnicalContribution float64
	UsedModelSentiment    bool
	UsedTechnical         bool
	PredictedAt           time.Time
	TargetDate            time.Time
}

// PredictionSet is the full evaluation result for one symbol.
type PredictionSet struct {
	Symbol       string
	CurrentPrice float64
	GeneratedAt  time.Time
	Predictions  map[int]*Prediction // keyed by horizon days
	Verdict      *SignalVerdict      // nil when price history was insufficient
	Sentiment    FusedSentiment
}
