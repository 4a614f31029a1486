package balance

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Minimal ERC-20 read surface
const erc20ReadABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"}
]`

// ChainReader is the subset of the RPC client the reader depends on
type ChainReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader reads native and ERC-20 balances from a chain RPC endpoint
type Reader struct {
	client ChainReader
	abi    abi.ABI
	logger *zap.Logger
}

// NewReader creates a balance reader over an existing chain client
func NewReader(client ChainReader, logger *zap.Logger) (*Reader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ReadABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &Reader{
		client: client,
		abi:    parsedABI,
		logger: logger,
	}, nil
}

// Dial connects to the RPC endpoint and returns a reader over it
func Dial(rpcURL string, logger *zap.Logger) (*Reader, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}
	return NewReader(client, logger)
}

// Native returns the account's native-asset balance in whole units
func (r *Reader) Native(ctx context.Context, account common.Address) (float64, error) {
	wei, err := r.client.BalanceAt(ctx, account, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get native balance: %w", err)
	}

	return toUnits(wei, 18), nil
}

// Token returns the account's balance of the given ERC-20 token in whole
// units, using the token's own decimals
func (r *Reader) Token(ctx context.Context, token, account common.Address) (float64, error) {
	raw, err := r.call(ctx, token, "balanceOf", account)
	if err != nil {
		return 0, fmt.Errorf("failed to call balanceOf: %w", err)
	}

	bal := new(big.Int).SetBytes(raw)

	decimals, err := r.Decimals(ctx, token)
	if err != nil {
		r.logger.Debug("decimals read failed, assuming 18",
			zap.String("token", token.Hex()), zap.Error(err))
		decimals = 18
	}

	return toUnits(bal, decimals), nil
}

// Decimals reads the token's decimals
func (r *Reader) Decimals(ctx context.Context, token common.Address) (int, error) {
	raw, err := r.call(ctx, token, "decimals")
	if err != nil {
		return 0, fmt.Errorf("failed to call decimals: %w", err)
	}

	return int(new(big.Int).SetBytes(raw).Int64()), nil
}

// Symbol reads the token's symbol
func (r *Reader) Symbol(ctx context.Context, token common.Address) (string, error) {
	raw, err := r.call(ctx, token, "symbol")
	if err != nil {
		return "", fmt.Errorf("failed to call symbol: %w", err)
	}

	out, err := r.abi.Unpack("symbol", raw)
	if err != nil || len(out) == 0 {
		return "", fmt.Errorf("failed to decode symbol: %w", err)
	}

	symbol, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected symbol type")
	}
	return symbol, nil
}

func (r *Reader) call(ctx context.Context, contract common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}

	return r.client.CallContract(ctx, msg, nil)
}

// toUnits converts a raw integer amount to whole token units
func toUnits(raw *big.Int, decimals int) float64 {
	units, _ := decimal.NewFromBigInt(raw, -int32(decimals)).Float64()
	return units
}
