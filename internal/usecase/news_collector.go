package usecase

import (
	"context"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	dservice "CoinSight/internal/domain/service"
	"CoinSight/internal/service/newsapi"
	"CoinSight/internal/services/sentiment"
	applogger "CoinSight/pkg/logger"
)

const (
	// duplicateThreshold is the Jaccard title similarity above which a
	// headline is treated as already seen.
	duplicateThreshold = 0.8
	maxPerCategory     = 7
)

// NewsCollector periodically pulls articles per category, scores them
// lexically and through the model scorer when available, and lands
// SentimentRecords in the store.
type NewsCollector struct {
	source   dservice.NewsSource
	scorer   dservice.ArticleScorer
	store    drepo.SentimentStore
	metrics  drepo.Metrics
	l        *applogger.Logger
	lexicon  *sentiment.Lexicon
	weights  map[string]float64
	interval time.Duration
}

// NewNewsCollector creates a new NewsCollector instance. weights maps
// category name to its impact weight in (0,1].
func NewNewsCollector(
	source dservice.NewsSource,
	scorer dservice.ArticleScorer,
	store drepo.SentimentStore,
	metrics drepo.Metrics,
	l *applogger.Logger,
	weights map[string]float64,
	interval time.Duration,
) *NewsCollector {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &NewsCollector{
		source:   source,
		scorer:   scorer,
		store:    store,
		metrics:  metrics,
		l:        l,
		lexicon:  sentiment.NewLexicon(),
		weights:  weights,
		interval: interval,
	}
}

// Start runs one immediate collection and then repeats on the interval
// until ctx is cancelled.
func (c *NewsCollector) Start(ctx context.Context) {
	go func() {
		c.Collect(ctx)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Collect(ctx)
			}
		}
	}()
}

// Collect runs a single collection pass over all configured categories.
func (c *NewsCollector) Collect(ctx context.Context) {
	start := time.Now()
	var seen []string
	var stored int

	for category, weight := range c.weights {
		articles, err := c.source.FetchCategory(ctx, category)
		if err != nil {
			c.metrics.RecordUpstreamCall("newsapi", "error")
			c.metrics.RecordError("news_fetch")
			c.l.Warn("news fetch failed",
				applogger.String("category", category),
				applogger.Error(err),
			)
			continue
		}
		c.metrics.RecordUpstreamCall("newsapi", "success")

		count := 0
		for i := range articles {
			if count >= maxPerCategory {
				break
			}
			a := &articles[i]
			normalized := newsapi.NormalizeTitle(a.Title)
			if isDuplicate(normalized, seen) {
				continue
			}
			seen = append(seen, normalized)

			if err := c.storeArticle(ctx, a, category, weight); err != nil {
				c.metrics.RecordError("news_store")
				c.l.Error("store sentiment record failed", applogger.Error(err))
				continue
			}
			stored++
			count++
		}
	}

	c.metrics.RecordLatency("news_collect", time.Since(start).Seconds())
	c.l.Info("news collection finished",
		applogger.Int("stored", stored),
		applogger.Int("categories", len(c.weights)),
	)
}

func (c *NewsCollector) storeArticle(ctx context.Context, a *models.Article, category string, weight float64) error {
	rec := &models.SentimentRecord{
		Timestamp:      a.PublishedAt,
		Title:          a.Title,
		Source:         a.Source,
		URL:            a.URL,
		Category:       category,
		CategoryWeight: weight,
		LexicalScore:   c.lexicon.Score(a.Title) * weight,
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	// Model scoring is best effort; absence degrades to lexical only.
	if c.scorer.Available() {
		if score, ok := c.scorer.ScoreArticle(ctx, a.Title, a.Body, a.Source); ok {
			rec.ModelScore = &score.Score
			rec.ModelReason = score.Explanation
			c.metrics.RecordUpstreamCall("openai", "success")
		} else {
			c.metrics.RecordUpstreamCall("openai", "error")
		}
	}

	return c.store.StoreRecord(ctx, rec)
}

func isDuplicate(normalized string, seen []string) bool {
	for _, s := range seen {
		if newsapi.Similarity(normalized, s) > duplicateThreshold {
			return true
		}
	}
	return false
}
