package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrPoolNotFound is returned when the subgraph has no entry for the pool
var ErrPoolNotFound = errors.New("pool not found in subgraph")

// Token is a pool token descriptor as indexed by the subgraph
type Token struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals string `json:"decimals"`
}

// PoolDayData carries one day of aggregated pool activity
type PoolDayData struct {
	FeesUSD   string `json:"feesUSD"`
	VolumeUSD string `json:"volumeUSD"`
}

// Pool is the indexed pool snapshot. Numeric fields arrive as decimal
// strings and are parsed by the consumer.
type Pool struct {
	ID                  string        `json:"id"`
	Token0              Token         `json:"token0"`
	Token1              Token         `json:"token1"`
	Token0Price         string        `json:"token0Price"`
	Token1Price         string        `json:"token1Price"`
	TotalValueLockedUSD string        `json:"totalValueLockedUSD"`
	VolumeUSD           string        `json:"volumeUSD"`
	PoolDayData         []PoolDayData `json:"poolDayData"`
}

const poolQuery = `query Pool($id: ID!) {
  pool(id: $id) {
    id
    token0 { id symbol name decimals }
    token1 { id symbol name decimals }
    token0Price
    token1Price
    totalValueLockedUSD
    volumeUSD
    poolDayData(first: 1, orderBy: date, orderDirection: desc) {
      feesUSD
      volumeUSD
    }
  }
}`

// Client posts GraphQL queries to the same-origin subgraph proxy
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a subgraph client against the given proxy endpoint
func NewClient(endpoint string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type poolResponse struct {
	Data struct {
		Pool *Pool `json:"pool"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// FetchPool queries the subgraph for the pool with the given address. Any
// transport, GraphQL, or missing-pool failure is an error; there are no
// partial results.
func (c *Client) FetchPool(ctx context.Context, poolAddress string) (*Pool, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: poolQuery,
		Variables: map[string]any{
			"id": strings.ToLower(poolAddress),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pool query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build pool query: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach subgraph proxy: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("subgraph proxy returned status code %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp poolResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode subgraph response: %w", err)
	}

	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("subgraph query failed: %s", resp.Errors[0].Message)
	}

	if resp.Data.Pool == nil {
		return nil, fmt.Errorf("pool %s: %w", poolAddress, ErrPoolNotFound)
	}

	c.logger.Debug("fetched pool",
		zap.String("pool", resp.Data.Pool.ID),
		zap.String("tvl_usd", resp.Data.Pool.TotalValueLockedUSD))

	return resp.Data.Pool, nil
}
