package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SubmitRequest describes one transaction submission to the wallet provider.
// A zero GasLimit lets the provider choose its own limit.
type SubmitRequest struct {
	To        common.Address
	Value     *big.Int
	Data      []byte
	GasLimit  uint64
	Sponsored bool
	ChainID   int64
}

// Provider is the connected smart-wallet surface: an active address, a
// transaction-submission primitive, and a sponsorship eligibility check.
// Implemented by the relay client; consumed by the transaction sender.
type Provider interface {
	// Address returns the active wallet address, or ErrNoWallet
	Address() (common.Address, error)

	// Submit sends a transaction and returns its hash
	Submit(ctx context.Context, req SubmitRequest) (string, error)

	// SponsorshipEnabled reports whether the given recipient/chain pair is
	// eligible for gas sponsorship from the active wallet
	SponsorshipEnabled(ctx context.Context, recipient common.Address, chainID int64) (bool, error)
}
