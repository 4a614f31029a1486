package txsender

import (
	"context"
	"errors"
	"testing"

	"defi-dash/pkg/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts submit outcomes and records every submission
type fakeProvider struct {
	addr        common.Address
	noWallet    bool
	submits     []wallet.SubmitRequest
	results     []submitResult
	sponsorship bool
	sponsorErr  error
}

type submitResult struct {
	hash string
	err  error
}

func (f *fakeProvider) Address() (common.Address, error) {
	if f.noWallet {
		return common.Address{}, wallet.ErrNoWallet
	}
	return f.addr, nil
}

func (f *fakeProvider) Submit(_ context.Context, req wallet.SubmitRequest) (string, error) {
	f.submits = append(f.submits, req)
	if len(f.results) == 0 {
		return "", errors.New("no scripted result")
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res.hash, res.err
}

func (f *fakeProvider) SponsorshipEnabled(context.Context, common.Address, int64) (bool, error) {
	return f.sponsorship, f.sponsorErr
}

var (
	recipient = common.HexToAddress("0x1111111111111111111111111111111111111111")
	token     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	walletAdr = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func nativeParams() TransferParams {
	return TransferParams{
		Recipient: recipient,
		Amount:    "0.5",
		ChainID:   8453,
	}
}

func tokenParams() TransferParams {
	tok := token
	return TransferParams{
		Recipient: recipient,
		Token:     &tok,
		Amount:    "100",
		Decimals:  6,
		ChainID:   8453,
	}
}

func sponsorshipError() error {
	return &wallet.SendError{Kind: wallet.KindPaymasterRejected, Message: "paymaster rejected the operation"}
}

func TestSendSponsoredSuccess(t *testing.T) {
	provider := &fakeProvider{
		addr:    walletAdr,
		results: []submitResult{{hash: "0xabc"}},
	}
	sender := NewSender(provider, nil)

	hash, err := sender.Send(context.Background(), nativeParams())
	require.NoError(t, err)
	assert.Equal(t, "0xabc", hash)

	require.Len(t, provider.submits, 1)
	assert.True(t, provider.submits[0].Sponsored)
	assert.Zero(t, provider.submits[0].GasLimit, "sponsored attempt must not override gas")

	status := sender.Status()
	assert.False(t, status.Loading)
	assert.True(t, status.Sponsored)
	assert.Equal(t, "0xabc", status.TxHash)
	assert.NoError(t, status.Err)
}

func TestSendNativeFallbackUsesStandardGasLimit(t *testing.T) {
	provider := &fakeProvider{
		addr: walletAdr,
		results: []submitResult{
			{err: sponsorshipError()},
			{hash: "0xretry"},
		},
	}
	sender := NewSender(provider, nil)

	hash, err := sender.Send(context.Background(), nativeParams())
	require.NoError(t, err)
	assert.Equal(t, "0xretry", hash)

	require.Len(t, provider.submits, 2, "exactly one unsponsored retry")
	retry := provider.submits[1]
	assert.False(t, retry.Sponsored)
	assert.Equal(t, uint64(21000), retry.GasLimit)

	status := sender.Status()
	assert.False(t, status.Sponsored)
	assert.Equal(t, "0xretry", status.TxHash)
}

func TestSendTokenFallbackUsesContractGasLimit(t *testing.T) {
	provider := &fakeProvider{
		addr: walletAdr,
		results: []submitResult{
			{err: sponsorshipError()},
			{hash: "0xretry"},
		},
	}
	sender := NewSender(provider, nil)

	_, err := sender.Send(context.Background(), tokenParams())
	require.NoError(t, err)

	require.Len(t, provider.submits, 2)
	assert.Equal(t, uint64(100000), provider.submits[1].GasLimit)
}

func TestSendFallbackReportsRetryErrorNotOriginal(t *testing.T) {
	retryErr := &wallet.SendError{Kind: wallet.KindInsufficientFunds, Message: "insufficient funds"}
	provider := &fakeProvider{
		addr: walletAdr,
		results: []submitResult{
			{err: sponsorshipError()},
			{err: retryErr},
		},
	}
	sender := NewSender(provider, nil)

	_, err := sender.Send(context.Background(), nativeParams())
	require.Error(t, err)
	assert.ErrorContains(t, err, "insufficient funds")
	assert.NotContains(t, err.Error(), "paymaster", "original sponsorship error must not surface")

	require.Len(t, provider.submits, 2, "no second retry after the fallback fails")
}

func TestSendFatalErrorNoRetry(t *testing.T) {
	fatal := &wallet.SendError{Kind: wallet.KindRejected, Message: "user rejected"}
	provider := &fakeProvider{
		addr:    walletAdr,
		results: []submitResult{{err: fatal}},
	}
	sender := NewSender(provider, nil)

	_, err := sender.Send(context.Background(), nativeParams())
	require.Error(t, err)
	assert.Len(t, provider.submits, 1, "non-sponsorship failures must not be retried")

	status := sender.Status()
	assert.True(t, status.Sponsored)
	assert.Empty(t, status.TxHash)
	assert.Error(t, status.Err)
}

func TestSendUnclassifiedErrorNoRetry(t *testing.T) {
	provider := &fakeProvider{
		addr:    walletAdr,
		results: []submitResult{{err: errors.New("connection reset")}},
	}
	sender := NewSender(provider, nil)

	_, err := sender.Send(context.Background(), nativeParams())
	require.Error(t, err)
	assert.Len(t, provider.submits, 1)
}

func TestSendNoWallet(t *testing.T) {
	provider := &fakeProvider{noWallet: true}
	sender := NewSender(provider, nil)

	_, err := sender.Send(context.Background(), nativeParams())
	assert.ErrorIs(t, err, wallet.ErrNoWallet)
	assert.Empty(t, provider.submits)
}

func TestSendInvalidAmount(t *testing.T) {
	provider := &fakeProvider{addr: walletAdr}
	sender := NewSender(provider, nil)

	params := nativeParams()
	params.Amount = "not-a-number"

	_, err := sender.Send(context.Background(), params)
	require.Error(t, err)
	assert.Empty(t, provider.submits)
}

func TestReset(t *testing.T) {
	provider := &fakeProvider{
		addr:    walletAdr,
		results: []submitResult{{hash: "0xabc"}},
	}
	sender := NewSender(provider, nil)

	_, err := sender.Send(context.Background(), nativeParams())
	require.NoError(t, err)

	sender.Reset()
	assert.Equal(t, Status{}, sender.Status())
}

func TestCheckSponsorshipNeverFails(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		want     bool
	}{
		{
			name:     "eligible",
			provider: &fakeProvider{addr: walletAdr, sponsorship: true},
			want:     true,
		},
		{
			name:     "not eligible",
			provider: &fakeProvider{addr: walletAdr, sponsorship: false},
			want:     false,
		},
		{
			name:     "provider error degrades to false",
			provider: &fakeProvider{addr: walletAdr, sponsorship: true, sponsorErr: errors.New("relay down")},
			want:     false,
		},
		{
			name:     "no wallet degrades to false",
			provider: &fakeProvider{noWallet: true},
			want:     false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sender := NewSender(tc.provider, nil)
			got := sender.CheckSponsorship(context.Background(), nativeParams())
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildRequestNativeVsToken(t *testing.T) {
	native, err := buildRequest(nativeParams())
	require.NoError(t, err)
	assert.Equal(t, recipient, native.To)
	assert.Equal(t, "500000000000000000", native.Value.String())
	assert.Empty(t, native.Data)

	tokenReq, err := buildRequest(tokenParams())
	require.NoError(t, err)
	assert.Equal(t, token, tokenReq.To)
	assert.Equal(t, "0", tokenReq.Value.String())
	assert.Len(t, tokenReq.Data, 68)
}
