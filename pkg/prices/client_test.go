package prices

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceServer(t *testing.T, body map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestUSDPrice(t *testing.T) {
	srv := priceServer(t, map[string]any{
		"ethereum": map[string]any{"usd": 2000.0, "usd_24h_change": -1.5},
	})
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	price, err := client.USDPrice(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, price)
}

func TestUSDQuoteIncludesChange(t *testing.T) {
	srv := priceServer(t, map[string]any{
		"ethereum": map[string]any{"usd": 2000.0, "usd_24h_change": -1.5},
	})
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	quote, err := client.USDQuote(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, quote.USD)
	require.NotNil(t, quote.USD24hChange)
	assert.Equal(t, -1.5, *quote.USD24hChange)
}

func TestUSDPriceMissingAsset(t *testing.T) {
	srv := priceServer(t, map[string]any{})
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	_, err := client.USDPrice(context.Background(), "ethereum")
	require.Error(t, err)
	assert.ErrorContains(t, err, "no quote")
}

func TestUSDPriceZeroQuote(t *testing.T) {
	srv := priceServer(t, map[string]any{
		"cope": map[string]any{"usd": 0.0},
	})
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	_, err := client.USDPrice(context.Background(), "cope")
	assert.Error(t, err)
}

func TestInvertedUSDPrice(t *testing.T) {
	srv := priceServer(t, map[string]any{
		"cope": map[string]any{"usd": 0.05},
	})
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	rate, err := client.InvertedUSDPrice(context.Background(), "cope")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, rate, 1e-9)
}

func TestUSDPriceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	_, err := client.USDPrice(context.Background(), "ethereum")
	require.Error(t, err)
	assert.ErrorContains(t, err, "status code 429")
}
