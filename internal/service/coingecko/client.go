package coingecko

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinSight/internal/domain/models"
	apphttp "CoinSight/pkg/http"
	"CoinSight/pkg/ratelimit"
)

// coinIDs maps ticker symbols to CoinGecko coin IDs. Unknown symbols fall
// back to the lowercased symbol.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"DOT":  "polkadot",
	"LINK": "chainlink",
}

// Client fetches quotes and price history from the CoinGecko REST API.
// Every network call goes through the invoker, so concurrent callers share
// one rate budget.
type Client struct {
	baseURL string
	apiKey  string
	http    *apphttp.Client
	invoker *ratelimit.Invoker
}

// New creates a CoinGecko client around a shared throttled invoker.
func New(baseURL, apiKey string, httpClient *apphttp.Client, invoker *ratelimit.Invoker) *Client {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpClient,
		invoker: invoker,
	}
}

// CoinID converts a ticker symbol to its CoinGecko coin ID.
func CoinID(symbol string) string {
	if id, ok := coinIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

type coinResponse struct {
	MarketData struct {
		CurrentPrice     map[string]float64 `json:"current_price"`
		MarketCap        map[string]float64 `json:"market_cap"`
		TotalVolume      map[string]float64 `json:"total_volume"`
		PriceChange24hPc float64            `json:"price_change_percentage_24h"`
	} `json:"market_data"`
	LastUpdated time.Time `json:"last_updated"`
}

// CurrentQuote fetches the current USD quote for a symbol.
func (c *Client) CurrentQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	url := fmt.Sprintf("%s/coins/%s", c.baseURL, CoinID(symbol))

	result, ok := c.invoker.Execute(func() (interface{}, error) {
		var resp coinResponse
		if err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
			Method:      apphttp.MethodGet,
			URL:         url,
			QueryParams: c.query(nil),
		}, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}, 3, 2*time.Second)
	if !ok {
		return nil, fmt.Errorf("coingecko quote %s: upstream unavailable", symbol)
	}

	resp := result.(*coinResponse)
	q := &models.Quote{
		Symbol:      strings.ToUpper(symbol),
		Price:       resp.MarketData.CurrentPrice["usd"],
		MarketCap:   resp.MarketData.MarketCap["usd"],
		Volume24h:   resp.MarketData.TotalVolume["usd"],
		Change24hPc: resp.MarketData.PriceChange24hPc,
		Timestamp:   resp.LastUpdated,
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now().UTC()
	}
	return q, nil
}

type marketChartResponse struct {
	// Each entry is [timestamp_ms, value].
	Prices [][2]float64 `json:"prices"`
}

// PriceHistory fetches the last N days of USD prices, oldest first.
func (c *Client) PriceHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	url := fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, CoinID(symbol))
	params := map[string][]string{
		"vs_currency": {"usd"},
		"days":        {fmt.Sprintf("%d", days)},
	}

	result, ok := c.invoker.Execute(func() (interface{}, error) {
		var resp marketChartResponse
		if err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
			Method:      apphttp.MethodGet,
			URL:         url,
			QueryParams: c.query(params),
		}, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}, 3, 2*time.Second)
	if !ok {
		return nil, fmt.Errorf("coingecko history %s: upstream unavailable", symbol)
	}

	resp := result.(*marketChartResponse)
	points := make([]models.PricePoint, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		points = append(points, models.PricePoint{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Price:     p[1],
		})
	}
	return points, nil
}

func (c *Client) query(params map[string][]string) map[string][]string {
	if c.apiKey == "" {
		return params
	}
	q := map[string][]string{"x_cg_demo_api_key": {c.apiKey}}
	for k, v := range params {
		q[k] = v
	}
	return q
}
