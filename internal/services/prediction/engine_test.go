package prediction

import (
	"math"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
)

func ptr(v float64) *float64 { return &v }

func bullishVerdict(strength float64) *models.SignalVerdict {
	return &models.SignalVerdict{
		Overall: models.OverallSignal{Direction: models.SignalBullish, Strength: strength},
	}
}

func TestEvaluateEndToEnd(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	sent := models.FusedSentiment{BlendedModel: ptr(5.0)}

	set := Evaluate("BTC", 50000, bullishVerdict(0.8), sent, []int{1, 7}, now)

	if len(set.Predictions) != 2 {
		t.Fatalf("got %d predictions, want 2", len(set.Predictions))
	}

	p := set.Predictions[7]
	if math.Abs(p.SentimentContribution-0.0525) > 1e-12 {
		t.Fatalf("sentiment contribution = %v, want 0.0525", p.SentimentContribution)
	}
	if math.Abs(p.TechnicalContribution-0.028) > 1e-12 {
		t.Fatalf("technical contribution = %v, want 0.028", p.TechnicalContribution)
	}
	if math.Abs(p.PredictedPrice-54025) > 1e-6 {
		t.Fatalf("predicted price = %v, want 54025", p.PredictedPrice)
	}
	if p.Direction != models.DirectionUp {
		t.Fatalf("direction = %s, want up", p.Direction)
	}
	if p.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", p.Confidence)
	}
	if !p.UsedModelSentiment || !p.UsedTechnical {
		t.Fatalf("usage flags = %v/%v, want true/true", p.UsedModelSentiment, p.UsedTechnical)
	}
	if !p.TargetDate.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("target date = %v", p.TargetDate)
	}

	// Shorter horizon scales adjustments down linearly.
	p1 := set.Predictions[1]
	if math.Abs(p1.SentimentContribution-0.0075) > 1e-12 {
		t.Fatalf("1d sentiment contribution = %v, want 0.0075", p1.SentimentContribution)
	}
}

func TestEvaluateLexicalFallback(t *testing.T) {
	sent := models.FusedSentiment{BlendedLexical: 0.5}
	set := Evaluate("ETH", 2000, nil, sent, []int{10}, time.Now())

	p := set.Predictions[10]
	if p.UsedModelSentiment {
		t.Fatal("model sentiment flagged without a model score")
	}
	if math.Abs(p.SentimentContribution-0.05) > 1e-12 {
		t.Fatalf("sentiment contribution = %v, want 0.05", p.SentimentContribution)
	}
	if p.UsedTechnical || p.TechnicalContribution != 0 {
		t.Fatalf("technical contribution = %v without a verdict", p.TechnicalContribution)
	}
	// Without a verdict nothing corroborates sentiment.
	if p.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want 0.5", p.Confidence)
	}
}

func TestConfidenceModerateWhenTechnicalNeutral(t *testing.T) {
	neutral := &models.SignalVerdict{
		Overall: models.OverallSignal{Direction: models.SignalNeutral, Strength: 0.5},
	}
	sent := models.FusedSentiment{BlendedLexical: 0.5}

	p := Evaluate("BTC", 50000, neutral, sent, []int{7}, time.Now()).Predictions[7]
	if p.TechnicalContribution != 0 {
		t.Fatalf("technical contribution = %v, want 0 for neutral verdict", p.TechnicalContribution)
	}
	if p.Confidence != 0.6 {
		t.Fatalf("confidence = %v, want 0.6", p.Confidence)
	}
}

func TestConfidenceAdjustmentsAgreeAgainstDirection(t *testing.T) {
	// Negative sentiment outweighed by nothing: both adjustments negative,
	// direction down, all agree.
	sent := models.FusedSentiment{BlendedModel: ptr(-5.0)}
	bearish := &models.SignalVerdict{
		Overall: models.OverallSignal{Direction: models.SignalBearish, Strength: 0.8},
	}

	p := Evaluate("BTC", 50000, bearish, sent, []int{7}, time.Now()).Predictions[7]
	if p.Direction != models.DirectionDown {
		t.Fatalf("direction = %s, want down", p.Direction)
	}
	if p.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", p.Confidence)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	now := time.Now()
	sent := models.FusedSentiment{BlendedLexical: -0.3, BlendedModel: ptr(2.5)}
	v := bullishVerdict(0.6)

	a := Evaluate("BTC", 41234.56, v, sent, []int{1, 7, 30}, now)
	b := Evaluate("BTC", 41234.56, v, sent, []int{1, 7, 30}, now)

	for days, pa := range a.Predictions {
		pb := b.Predictions[days]
		if *pa != *pb {
			t.Fatalf("horizon %d diverged: %+v vs %+v", days, pa, pb)
		}
	}
}
