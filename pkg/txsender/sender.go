package txsender

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"defi-dash/pkg/wallet"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// TransferParams describes a single transfer attempt. A nil Token means a
// native-asset transfer; otherwise the transfer is an ERC-20 contract call.
type TransferParams struct {
	Recipient common.Address
	Token     *common.Address
	Amount    string
	Decimals  int
	ChainID   int64
}

// Status is the observable lifecycle of one send. Once Loading goes false,
// exactly one of TxHash or Err is set.
type Status struct {
	Loading   bool
	Sponsored bool
	TxHash    string
	Err       error
}

// Sender submits transfers through a wallet provider, attempting gas
// sponsorship first and falling back to a plain send with an explicit gas
// limit when the failure is sponsorship-level.
type Sender struct {
	provider wallet.Provider
	logger   *zap.Logger

	mu     sync.Mutex
	status Status
}

// NewSender creates a sender backed by the given wallet provider
func NewSender(provider wallet.Provider, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		provider: provider,
		logger:   logger,
	}
}

// Status returns a snapshot of the current send state
func (s *Sender) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Reset clears the send state back to its initial value
func (s *Sender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{}
}

func (s *Sender) setStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

// buildRequest constructs the submission for the given params. Native
// transfers carry value and no data; token transfers carry calldata against
// the token contract and no value.
func buildRequest(p TransferParams) (wallet.SubmitRequest, error) {
	decimals := p.Decimals
	if decimals == 0 {
		decimals = 18
	}

	amount, err := scaleAmount(p.Amount, decimals)
	if err != nil {
		return wallet.SubmitRequest{}, err
	}

	if p.Token == nil {
		return wallet.SubmitRequest{
			To:      p.Recipient,
			Value:   amount,
			ChainID: p.ChainID,
		}, nil
	}

	return wallet.SubmitRequest{
		To:      *p.Token,
		Value:   big.NewInt(0),
		Data:    transferCalldata(p.Recipient, amount),
		ChainID: p.ChainID,
	}, nil
}

// fallbackGasLimit returns the fixed gas limit attached on the unsponsored
// retry
func fallbackGasLimit(p TransferParams) uint64 {
	if p.Token == nil {
		return nativeTransferGas
	}
	return tokenTransferGas
}

// Send submits the transfer, sponsored. If the sponsored attempt fails with
// a sponsorship-level error it retries exactly once, unsponsored, with an
// explicit gas limit; the retry's hash or error is the final outcome. Any
// other failure is fatal immediately.
func (s *Sender) Send(ctx context.Context, p TransferParams) (string, error) {
	if _, err := s.provider.Address(); err != nil {
		s.setStatus(Status{Err: err})
		return "", err
	}

	s.setStatus(Status{Loading: true, Sponsored: true})

	req, err := buildRequest(p)
	if err != nil {
		err = fmt.Errorf("invalid transfer: %w", err)
		s.setStatus(Status{Err: err})
		return "", err
	}

	req.Sponsored = true
	hash, err := s.provider.Submit(ctx, req)
	if err == nil {
		s.setStatus(Status{Sponsored: true, TxHash: hash})
		return hash, nil
	}

	kind := wallet.KindOf(err)
	if !kind.TriggersFallback() {
		s.logger.Warn("transaction failed",
			zap.String("kind", kind.String()),
			zap.Error(err))
		s.setStatus(Status{Sponsored: true, Err: err})
		return "", err
	}

	s.logger.Info("sponsorship unavailable, retrying without sponsorship",
		zap.String("kind", kind.String()),
		zap.Uint64("gas_limit", fallbackGasLimit(p)))

	s.setStatus(Status{Loading: true, Sponsored: false})

	req.Sponsored = false
	req.GasLimit = fallbackGasLimit(p)
	hash, retryErr := s.provider.Submit(ctx, req)
	if retryErr != nil {
		retryErr = fmt.Errorf("unsponsored retry failed: %w", retryErr)
		s.setStatus(Status{Sponsored: false, Err: retryErr})
		return "", retryErr
	}

	s.setStatus(Status{Sponsored: false, TxHash: hash})
	return hash, nil
}

// CheckSponsorship reports whether the transfer's recipient/chain pair is
// eligible for gas sponsorship. It never fails: any upstream error degrades
// to false.
func (s *Sender) CheckSponsorship(ctx context.Context, p TransferParams) bool {
	if _, err := s.provider.Address(); err != nil {
		return false
	}

	eligible, err := s.provider.SponsorshipEnabled(ctx, p.Recipient, p.ChainID)
	if err != nil {
		s.logger.Debug("sponsorship check failed", zap.Error(err))
		return false
	}
	return eligible
}
