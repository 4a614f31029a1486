package wallet

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "0x3333333333333333333333333333333333333333"

func testRequest() SubmitRequest {
	return SubmitRequest{
		To:        common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Value:     big.NewInt(1),
		Sponsored: true,
		ChainID:   8453,
	}
}

func TestRelaySubmitSuccess(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/wallets/"+common.HexToAddress(testWallet).Hex()+"/transactions", r.URL.Path)
		assert.Equal(t, "Bearer app-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		_ = json.NewEncoder(w).Encode(map[string]string{"hash": "0xdeadbeef"})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, "app-key", testWallet, nil)

	hash, err := client.Submit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", hash)
	assert.Equal(t, true, gotPayload["sponsored"])
	assert.Equal(t, "1", gotPayload["value"])
}

func TestRelaySubmitClassifiedByCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "paymaster_rejected",
			"message": "operation not covered",
		})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, "app-key", testWallet, nil)

	_, err := client.Submit(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, KindPaymasterRejected, KindOf(err))
	assert.ErrorContains(t, err, "operation not covered")
}

func TestRelaySubmitClassifiedByMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "sponsorship budget exhausted",
		})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, "app-key", testWallet, nil)

	_, err := client.Submit(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, KindInsufficientSponsorship, KindOf(err))
}

func TestRelaySubmitUnclassifiedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "internal error"})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, "app-key", testWallet, nil)

	_, err := client.Submit(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}

func TestRelayNoWallet(t *testing.T) {
	client := NewRelayClient("http://unused", "app-key", "", nil)

	_, err := client.Address()
	assert.ErrorIs(t, err, ErrNoWallet)

	_, err = client.Submit(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrNoWallet)

	_, err = client.SponsorshipEnabled(context.Background(), common.Address{}, 8453)
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestRelaySponsorshipEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sponsorship", r.URL.Path)
		assert.Equal(t, "8453", r.URL.Query().Get("chainId"))
		assert.NotEmpty(t, r.URL.Query().Get("recipient"))
		assert.NotEmpty(t, r.URL.Query().Get("wallet"))

		_ = json.NewEncoder(w).Encode(map[string]bool{"eligible": true})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, "app-key", testWallet, nil)

	eligible, err := client.SponsorshipEnabled(context.Background(),
		common.HexToAddress("0x1111111111111111111111111111111111111111"), 8453)
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestRelaySponsorshipServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, "app-key", testWallet, nil)

	_, err := client.SponsorshipEnabled(context.Background(), common.Address{}, 8453)
	assert.Error(t, err)
}
