package models

import "time"

// SentimentRecord is one scored news article. LexicalScore is already weighted
// by the article's category weight; ModelScore is nil when the scoring
// upstream was unavailable for this article.
type SentimentRecord struct {
	Timestamp      time.Time
	Title          string
	Source         string
	URL            string
	Category       string
	CategoryWeight float64  // (0,1]
	LexicalScore   float64  // [-1,1]
	ModelScore     *float64 // [-10,10]
	ModelReason    string
}

// ArticleScore is the LLM verdict for a single article.
type ArticleScore struct {
	Score       float64 // [-10,10]
	Explanation string
}

// FusedSentiment blends the recent sentiment window with significant
// historical events into one signal for the prediction engine.
type FusedSentiment struct {
	BlendedLexical    float64
	BlendedModel      *float64
	RecentLexical     float64
	HistoricalLexical float64
	RecentWeight      float64
	HistoricalWeight  float64
	SignificantEvents int
}
