package sentiment

import (
	"math"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
)

func ptr(v float64) *float64 { return &v }

func rec(ts time.Time, lexical float64, model *float64) models.SentimentRecord {
	return models.SentimentRecord{
		Timestamp:      ts,
		CategoryWeight: 1.0,
		LexicalScore:   lexical,
		ModelScore:     model,
	}
}

func TestFuseHistoricalWeightCap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []models.SentimentRecord{
		rec(now.Add(-time.Hour), 0.5, nil),
	}
	// Five significant events inside the 7d window but outside the last 24h.
	for i := 0; i < 5; i++ {
		records = append(records, rec(now.Add(-time.Duration(30+i)*time.Hour), 0.8, nil))
	}

	f := Fuse(records, now)

	if f.SignificantEvents != 5 {
		t.Fatalf("significant events = %d, want 5", f.SignificantEvents)
	}
	if f.HistoricalWeight != 0.4 {
		t.Fatalf("historical weight = %v, want 0.4", f.HistoricalWeight)
	}
	if f.RecentWeight != 0.6 {
		t.Fatalf("recent weight = %v, want 0.6", f.RecentWeight)
	}
	want := 0.5*0.6 + 0.8*0.4
	if math.Abs(f.BlendedLexical-want) > 1e-12 {
		t.Fatalf("blended lexical = %v, want %v", f.BlendedLexical, want)
	}
}

func TestFuseInsignificantHistoryIgnored(t *testing.T) {
	now := time.Now()
	records := []models.SentimentRecord{
		rec(now.Add(-2*time.Hour), 0.3, nil),
		// Below both significance thresholds.
		rec(now.Add(-48*time.Hour), 0.2, nil),
		rec(now.Add(-48*time.Hour), -0.5, ptr(3.0)),
	}

	f := Fuse(records, now)

	if f.SignificantEvents != 0 {
		t.Fatalf("significant events = %d, want 0", f.SignificantEvents)
	}
	if f.HistoricalWeight != 0 || f.RecentWeight != 1 {
		t.Fatalf("weights = %v/%v, want 0/1", f.HistoricalWeight, f.RecentWeight)
	}
	if f.BlendedLexical != 0.3 {
		t.Fatalf("blended lexical = %v, want 0.3", f.BlendedLexical)
	}
}

func TestFuseModelThresholdQualifiesEvent(t *testing.T) {
	now := time.Now()
	records := []models.SentimentRecord{
		rec(now.Add(-48*time.Hour), 0.1, ptr(-8.0)),
	}

	f := Fuse(records, now)
	if f.SignificantEvents != 1 {
		t.Fatalf("significant events = %d, want 1", f.SignificantEvents)
	}
}

func TestFuseModelBlending(t *testing.T) {
	now := time.Now()

	// Both windows carry model scores: weighted blend.
	both := Fuse([]models.SentimentRecord{
		rec(now.Add(-time.Hour), 0.1, ptr(4.0)),
		rec(now.Add(-48*time.Hour), 0.9, ptr(8.0)),
	}, now)
	if both.BlendedModel == nil {
		t.Fatal("blended model absent, want weighted blend")
	}
	want := 4.0*0.9 + 8.0*0.1
	if math.Abs(*both.BlendedModel-want) > 1e-12 {
		t.Fatalf("blended model = %v, want %v", *both.BlendedModel, want)
	}

	// Only history has a model score: use it unweighted.
	histOnly := Fuse([]models.SentimentRecord{
		rec(now.Add(-time.Hour), 0.1, nil),
		rec(now.Add(-48*time.Hour), 0.9, ptr(8.0)),
	}, now)
	if histOnly.BlendedModel == nil || *histOnly.BlendedModel != 8.0 {
		t.Fatalf("blended model = %v, want 8.0 unweighted", histOnly.BlendedModel)
	}

	// No model scores anywhere: absent, not zero.
	none := Fuse([]models.SentimentRecord{
		rec(now.Add(-time.Hour), 0.1, nil),
	}, now)
	if none.BlendedModel != nil {
		t.Fatalf("blended model = %v, want absent", *none.BlendedModel)
	}
}

func TestFuseEmptyInput(t *testing.T) {
	f := Fuse(nil, time.Now())
	if f.BlendedLexical != 0 || f.BlendedModel != nil || f.SignificantEvents != 0 {
		t.Fatalf("unexpected fusion of empty input: %+v", f)
	}
	if f.RecentWeight != 1 {
		t.Fatalf("recent weight = %v, want 1", f.RecentWeight)
	}
}

func TestFuseRecordsOutsideWindowsIgnored(t *testing.T) {
	now := time.Now()
	f := Fuse([]models.SentimentRecord{
		rec(now.Add(-10*24*time.Hour), 0.9, ptr(9.0)),
	}, now)
	if f.SignificantEvents != 0 || f.BlendedLexical != 0 {
		t.Fatalf("stale record influenced fusion: %+v", f)
	}
}

func TestLexiconScore(t *testing.T) {
	l := NewLexicon()

	if s := l.Score("Bitcoin ETF approval sparks rally"); s <= 0 {
		t.Fatalf("positive headline scored %v", s)
	}
	if s := l.Score("Exchange hack triggers panic selloff"); s >= 0 {
		t.Fatalf("negative headline scored %v", s)
	}
	if s := l.Score("Quarterly report published today"); s != 0 {
		t.Fatalf("neutral headline scored %v, want 0", s)
	}

	// Averaging keeps scores bounded.
	if s := l.Score("surge surge surge"); s != 1.0 {
		t.Fatalf("repeated strong word scored %v, want 1.0", s)
	}

	// Punctuation around words is stripped.
	if s := l.Score("Markets rally, bulls win!"); s <= 0 {
		t.Fatalf("punctuated headline scored %v", s)
	}
}
