package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// RelayClient talks to the smart-wallet relay service. The relay owns key
// custody and signing; this client only submits call parameters and reads
// back a hash or a classified failure.
type RelayClient struct {
	baseURL    string
	appKey     string
	wallet     common.Address
	hasWallet  bool
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRelayClient creates a relay client for the given wallet address. An
// empty address means no wallet is connected; Submit and Address will fail
// with ErrNoWallet.
func NewRelayClient(baseURL, appKey, walletAddress string, logger *zap.Logger) *RelayClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &RelayClient{
		baseURL:    baseURL,
		appKey:     appKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}

	if common.IsHexAddress(walletAddress) {
		c.wallet = common.HexToAddress(walletAddress)
		c.hasWallet = true
	}

	return c
}

// Address returns the active wallet address
func (c *RelayClient) Address() (common.Address, error) {
	if !c.hasWallet {
		return common.Address{}, ErrNoWallet
	}
	return c.wallet, nil
}

type submitPayload struct {
	To        string `json:"to"`
	Value     string `json:"value"`
	Data      string `json:"data,omitempty"`
	GasLimit  uint64 `json:"gasLimit,omitempty"`
	Sponsored bool   `json:"sponsored"`
	ChainID   int64  `json:"chainId"`
}

type submitResponse struct {
	Hash    string `json:"hash"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Submit sends a transaction through the relay and returns its hash
func (c *RelayClient) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if !c.hasWallet {
		return "", ErrNoWallet
	}

	payload := submitPayload{
		To:        req.To.Hex(),
		Value:     "0",
		Sponsored: req.Sponsored,
		GasLimit:  req.GasLimit,
		ChainID:   req.ChainID,
	}
	if req.Value != nil {
		payload.Value = req.Value.String()
	}
	if len(req.Data) > 0 {
		payload.Data = hexutil.Encode(req.Data)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode submit request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/wallets/%s/transactions", c.baseURL, c.wallet.Hex())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.appKey)

	c.logger.Debug("submitting transaction",
		zap.String("to", payload.To),
		zap.Bool("sponsored", req.Sponsored),
		zap.Uint64("gas_limit", req.GasLimit))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach relay: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read relay response: %w", err)
	}

	var resp submitResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return "", fmt.Errorf("relay returned status code %d: %s", httpResp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("failed to decode relay response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", c.submitError(httpResp.StatusCode, resp)
	}

	if resp.Hash == "" {
		return "", fmt.Errorf("relay returned no transaction hash")
	}

	return resp.Hash, nil
}

// submitError converts a relay failure body into a classified SendError,
// preferring the structured code over message matching
func (c *RelayClient) submitError(status int, resp submitResponse) error {
	msg := resp.Message
	if msg == "" {
		msg = fmt.Sprintf("relay returned status code %d", status)
	}

	kind := KindUnknown
	if resp.Code != "" {
		kind = ClassifyCode(resp.Code)
	}
	if kind == KindUnknown {
		kind = ClassifyMessage(msg)
	}

	c.logger.Debug("relay rejected transaction",
		zap.String("code", resp.Code),
		zap.String("kind", kind.String()),
		zap.String("message", msg))

	return &SendError{Kind: kind, Message: msg}
}

type sponsorshipResponse struct {
	Eligible bool `json:"eligible"`
}

// SponsorshipEnabled queries the relay's sponsorship oracle for the given
// recipient/chain pair
func (c *RelayClient) SponsorshipEnabled(ctx context.Context, recipient common.Address, chainID int64) (bool, error) {
	if !c.hasWallet {
		return false, ErrNoWallet
	}

	q := url.Values{}
	q.Set("recipient", recipient.Hex())
	q.Set("chainId", strconv.FormatInt(chainID, 10))
	q.Set("wallet", c.wallet.Hex())
	endpoint := fmt.Sprintf("%s/v1/sponsorship?%s", c.baseURL, q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build sponsorship request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.appKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("failed to reach relay: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("relay returned status code %d", httpResp.StatusCode)
	}

	var resp sponsorshipResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return false, fmt.Errorf("failed to decode sponsorship response: %w", err)
	}

	return resp.Eligible, nil
}
