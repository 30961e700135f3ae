package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CoinSight/internal/domain/models"
	apphttp "CoinSight/pkg/http"
	"CoinSight/pkg/queue"
)

const systemPrompt = `You are a financial analyst specializing in cryptocurrency markets.
Analyze the news article and rate its likely impact on cryptocurrency prices on a scale from -10 (extremely negative) to +10 (extremely positive).
Consider economic, regulatory, and technological factors in your analysis.
Return a JSON object with two fields:
1. 'score': A number between -10 and 10
2. 'explanation': A brief (25 words max) explanation of your rating`

// Scorer rates article market impact via the OpenAI chat API. Whether the
// upstream is usable is decided once at construction; an unavailable scorer
// answers ok=false on every call and never touches the network. All real
// calls are funneled through the dispatcher so they share one queue and one
// rate budget.
type Scorer struct {
	available  bool
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	http       *apphttp.Client
	dispatcher *queue.Dispatcher
}

// New builds a Scorer. An empty API key yields the unavailable variant.
func New(apiKey, model string, timeout time.Duration, httpClient *apphttp.Client, dispatcher *queue.Dispatcher) *Scorer {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scorer{
		available:  apiKey != "",
		apiKey:     apiKey,
		model:      model,
		baseURL:    "https://api.openai.com/v1",
		timeout:    timeout,
		http:       httpClient,
		dispatcher: dispatcher,
	}
}

// Available reports whether the scoring upstream was configured at startup.
func (s *Scorer) Available() bool { return s.available }

// Close drains queued scoring work and stops the dispatcher workers.
func (s *Scorer) Close() {
	if s.dispatcher != nil {
		s.dispatcher.Shutdown(true)
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type verdict struct {
	Score       *float64 `json:"score"`
	Explanation string   `json:"explanation"`
}

// ScoreArticle rates one article. It blocks on the dispatcher until the
// result arrives or the timeout passes; ok=false covers unavailability,
// queue timeout, and malformed upstream answers alike.
func (s *Scorer) ScoreArticle(ctx context.Context, title, content, source string) (*models.ArticleScore, bool) {
	if !s.available {
		return nil, false
	}

	article := "Title: " + title
	if content != "" {
		article += "\n\nContent: " + content
	}
	if source != "" {
		article += "\n\nSource: " + source
	}

	result, ok := s.dispatcher.RunSync(func() (interface{}, error) {
		return s.complete(ctx, article)
	}, s.timeout)
	if !ok {
		return nil, false
	}
	return result.(*models.ArticleScore), true
}

func (s *Scorer) complete(ctx context.Context, article string) (*models.ArticleScore, error) {
	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: article},
		},
	}
	req.ResponseFormat.Type = "json_object"

	var resp chatResponse
	err := s.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodPost,
		URL:    s.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + s.apiKey,
			"Content-Type":  "application/json",
		},
		Body: req,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion: empty choices")
	}

	var v verdict
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &v); err != nil {
		return nil, fmt.Errorf("openai verdict parse: %w", err)
	}
	if v.Score == nil {
		return nil, fmt.Errorf("openai verdict missing score")
	}

	score := *v.Score
	if score > 10 {
		score = 10
	}
	if score < -10 {
		score = -10
	}
	return &models.ArticleScore{Score: score, Explanation: v.Explanation}, nil
}
