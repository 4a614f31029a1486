package txsender

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// transfer(address,uint256) selector
var transferSelector = []byte{0xa9, 0x05, 0x9c, 0xbb}

// Standard gas limits attached on the unsponsored fallback
const (
	nativeTransferGas = uint64(21000)
	tokenTransferGas  = uint64(100000)
)

// scaleAmount converts a decimal amount string into the token's smallest
// unit, truncating any fraction below one unit
func scaleAmount(amount string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount must be positive: %s", amount)
	}

	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

// transferCalldata builds ERC-20 transfer calldata: the 4-byte selector
// followed by the recipient and scaled amount, each right-aligned into a
// 32-byte word. Total length is always 68 bytes.
func transferCalldata(recipient common.Address, amount *big.Int) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, transferSelector...)
	data = append(data, common.LeftPadBytes(recipient.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data
}
