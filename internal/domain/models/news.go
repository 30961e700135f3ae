package models

import "time"

// Article is a raw news item as returned by the news upstream, before scoring.
type Article struct {
	Title       string
	Body        string
	Source      string
	URL         string
	PublishedAt time.Time
}
