package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
)

type fakeNewsSource struct {
	byCategory map[string][]models.Article
	err        error
}

func (s *fakeNewsSource) FetchCategory(ctx context.Context, category string) ([]models.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byCategory[category], nil
}

type fakeScorer struct {
	available bool
	score     float64
	calls     int
}

func (s *fakeScorer) Available() bool { return s.available }
func (s *fakeScorer) Close()          {}

func (s *fakeScorer) ScoreArticle(ctx context.Context, title, content, source string) (*models.ArticleScore, bool) {
	s.calls++
	return &models.ArticleScore{Score: s.score, Explanation: "test"}, true
}

func article(title string) models.Article {
	return models.Article{
		Title:       title,
		Body:        "body",
		Source:      "wire",
		URL:         "https://example.com/a",
		PublishedAt: time.Now().UTC(),
	}
}

func TestCollectStoresWeightedRecords(t *testing.T) {
	source := &fakeNewsSource{byCategory: map[string][]models.Article{
		"crypto": {article("Bitcoin rally continues after surge")},
	}}
	scorer := &fakeScorer{available: true, score: 7}
	store := &fakeSentimentStore{}

	c := NewNewsCollector(source, scorer, store, noopMetrics{}, testLogger(t),
		map[string]float64{"crypto": 0.5}, time.Hour)
	c.Collect(context.Background())

	if len(store.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.records))
	}
	rec := store.records[0]
	if rec.Category != "crypto" || rec.CategoryWeight != 0.5 {
		t.Fatalf("unexpected category/weight: %s/%v", rec.Category, rec.CategoryWeight)
	}
	// "rally" and "surge" are positive terms; weight halves the lexical score
	if rec.LexicalScore <= 0 {
		t.Fatalf("expected positive lexical score, got %v", rec.LexicalScore)
	}
	if rec.ModelScore == nil || *rec.ModelScore != 7 {
		t.Fatalf("expected model score 7, got %v", rec.ModelScore)
	}
}

func TestCollectSkipsNearDuplicateTitles(t *testing.T) {
	source := &fakeNewsSource{byCategory: map[string][]models.Article{
		"crypto": {
			article("Bitcoin hits new all time high today"),
			article("Bitcoin hits new all time high"),
			article("Regulators propose stablecoin rules"),
		},
	}}
	store := &fakeSentimentStore{}

	c := NewNewsCollector(source, &fakeScorer{}, store, noopMetrics{}, testLogger(t),
		map[string]float64{"crypto": 1.0}, time.Hour)
	c.Collect(context.Background())

	if len(store.records) != 2 {
		t.Fatalf("expected duplicate suppressed, got %d records", len(store.records))
	}
}

func TestCollectCapsArticlesPerCategory(t *testing.T) {
	var articles []models.Article
	for i := 0; i < maxPerCategory+5; i++ {
		articles = append(articles, article(fmt.Sprintf("unique headline number %d about %d", i, i*37)))
	}
	source := &fakeNewsSource{byCategory: map[string][]models.Article{"crypto": articles}}
	store := &fakeSentimentStore{}

	c := NewNewsCollector(source, &fakeScorer{}, store, noopMetrics{}, testLogger(t),
		map[string]float64{"crypto": 1.0}, time.Hour)
	c.Collect(context.Background())

	if len(store.records) != maxPerCategory {
		t.Fatalf("expected %d records, got %d", maxPerCategory, len(store.records))
	}
}

func TestCollectSurvivesFetchFailure(t *testing.T) {
	source := &fakeNewsSource{err: fmt.Errorf("upstream down")}
	store := &fakeSentimentStore{}

	c := NewNewsCollector(source, &fakeScorer{}, store, noopMetrics{}, testLogger(t),
		map[string]float64{"crypto": 1.0}, time.Hour)
	c.Collect(context.Background())

	if len(store.records) != 0 {
		t.Fatalf("expected no records, got %d", len(store.records))
	}
}

func TestCollectSkipsModelWhenUnavailable(t *testing.T) {
	source := &fakeNewsSource{byCategory: map[string][]models.Article{
		"crypto": {article("Exchange announces new listing")},
	}}
	scorer := &fakeScorer{available: false}
	store := &fakeSentimentStore{}

	c := NewNewsCollector(source, scorer, store, noopMetrics{}, testLogger(t),
		map[string]float64{"crypto": 1.0}, time.Hour)
	c.Collect(context.Background())

	if scorer.calls != 0 {
		t.Fatalf("scorer should not be called when unavailable")
	}
	if len(store.records) != 1 || store.records[0].ModelScore != nil {
		t.Fatalf("expected lexical-only record")
	}
}
