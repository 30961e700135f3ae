package service

import (
	"context"

	"CoinSight/internal/domain/models"
)

// PriceSource serves current and historical prices from the upstream price API.
type PriceSource interface {
	CurrentQuote(ctx context.Context, symbol string) (*models.Quote, error)
	PriceHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

// NewsSource fetches raw articles for one news category.
type NewsSource interface {
	FetchCategory(ctx context.Context, category string) ([]models.Article, error)
}

// ArticleScorer scores an article's market impact on a [-10,10] scale.
// Available reports whether the scoring upstream was configured at startup;
// when false, ScoreArticle always returns ok=false and callers degrade to
// lexical sentiment only. Close drains in-flight scoring work.
type ArticleScorer interface {
	Available() bool
	ScoreArticle(ctx context.Context, title, content, source string) (*models.ArticleScore, bool)
	Close()
}
