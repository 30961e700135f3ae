package newsapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinSight/internal/domain/models"
	apphttp "CoinSight/pkg/http"
	"CoinSight/pkg/ratelimit"
)

// categoryKeywords drives the per-category search query. Categories not
// listed here fall back to the category name itself.
var categoryKeywords = map[string][]string{
	"crypto":       {"bitcoin", "ethereum", "cryptocurrency", "crypto market", "blockchain"},
	"economic":     {"inflation", "interest rates", "federal reserve", "recession", "stock market"},
	"geopolitical": {"trade war", "sanctions", "tariffs", "ukraine", "regulation"},
}

// Client fetches articles from a NewsAPI-compatible endpoint, one query per
// category, through a shared throttled invoker.
type Client struct {
	baseURL  string
	apiKey   string
	maxItems int
	http     *apphttp.Client
	invoker  *ratelimit.Invoker
}

func New(baseURL, apiKey string, maxItems int, httpClient *apphttp.Client, invoker *ratelimit.Invoker) *Client {
	if baseURL == "" {
		baseURL = "https://newsapi.org/v2"
	}
	if maxItems <= 0 {
		maxItems = 15
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		maxItems: maxItems,
		http:     httpClient,
		invoker:  invoker,
	}
}

type apiArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type everythingResponse struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Articles []apiArticle `json:"articles"`
}

// FetchCategory queries the articles for one news category, newest first.
func (c *Client) FetchCategory(ctx context.Context, category string) ([]models.Article, error) {
	keywords, ok := categoryKeywords[category]
	if !ok {
		keywords = []string{category}
	}

	result, ok := c.invoker.Execute(func() (interface{}, error) {
		var resp everythingResponse
		err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
			Method: apphttp.MethodGet,
			URL:    c.baseURL + "/everything",
			QueryParams: map[string][]string{
				"q":        {strings.Join(keywords, " OR ")},
				"language": {"en"},
				"sortBy":   {"publishedAt"},
				"pageSize": {fmt.Sprintf("%d", c.maxItems)},
			},
			Headers: map[string]string{"X-Api-Key": c.apiKey},
		}, &resp)
		if err != nil {
			return nil, err
		}
		if resp.Status != "ok" {
			return nil, fmt.Errorf("news api status %s: %s", resp.Status, resp.Message)
		}
		return &resp, nil
	}, 3, 2*time.Second)
	if !ok {
		return nil, fmt.Errorf("news fetch %s: upstream unavailable", category)
	}

	resp := result.(*everythingResponse)
	articles := make([]models.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" {
			continue
		}
		body := a.Content
		if body == "" {
			body = a.Description
		}
		articles = append(articles, models.Article{
			Title:       a.Title,
			Body:        body,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
