package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Quote is one asset's quoted price in the reference currency
type Quote struct {
	USD          float64  `json:"usd"`
	USD24hChange *float64 `json:"usd_24h_change,omitempty"`
}

// Client fetches spot prices from a CoinGecko-compatible price API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a price API client
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Quotes fetches USD quotes for the given asset identifiers
func (c *Client) Quotes(ctx context.Context, ids ...string) (map[string]Quote, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach price API: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status code %d", httpResp.StatusCode)
	}

	var quotes map[string]Quote
	if err := json.NewDecoder(httpResp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	return quotes, nil
}

// USDPrice fetches one asset's USD price. A missing asset or zero quote is
// an error.
func (c *Client) USDPrice(ctx context.Context, id string) (float64, error) {
	quotes, err := c.Quotes(ctx, id)
	if err != nil {
		return 0, err
	}

	quote, ok := quotes[id]
	if !ok {
		return 0, fmt.Errorf("price API returned no quote for %s", id)
	}
	if quote.USD <= 0 {
		return 0, fmt.Errorf("price API returned non-positive price for %s", id)
	}

	c.logger.Debug("fetched price", zap.String("asset", id), zap.Float64("usd", quote.USD))

	return quote.USD, nil
}

// USDQuote fetches one asset's full quote including 24h change
func (c *Client) USDQuote(ctx context.Context, id string) (Quote, error) {
	quotes, err := c.Quotes(ctx, id)
	if err != nil {
		return Quote{}, err
	}

	quote, ok := quotes[id]
	if !ok {
		return Quote{}, fmt.Errorf("price API returned no quote for %s", id)
	}
	if quote.USD <= 0 {
		return Quote{}, fmt.Errorf("price API returned non-positive price for %s", id)
	}

	return quote, nil
}

// InvertedUSDPrice fetches an asset's USD price and returns its reciprocal,
// the synthetic rate of one USD-pegged unit in that asset
func (c *Client) InvertedUSDPrice(ctx context.Context, id string) (float64, error) {
	price, err := c.USDPrice(ctx, id)
	if err != nil {
		return 0, err
	}
	return 1 / price, nil
}
