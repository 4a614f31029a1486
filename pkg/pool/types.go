package pool

// TokenInfo describes one side of the pool
type TokenInfo struct {
	Symbol  string
	Name    string
	Address string
}

// UserBalance holds a wallet's three asset balances and their combined USD
// value. TotalUSD is computed only once balances and prices are both known.
type UserBalance struct {
	Native    float64
	Stable    float64
	PoolToken float64
	TotalUSD  float64
}

// PoolData is the assembled analytics snapshot. It is built fresh on every
// fetch and never mutated afterwards.
type PoolData struct {
	// SyntheticRate is pool tokens per stable unit, derived by inverting
	// the pool token's USD quote
	SyntheticRate     float64
	PoolTokenPriceUSD float64

	RefPriceUSD       float64
	RefPrice24hChange float64

	TVLUSD    float64
	VolumeUSD float64
	Fees24USD float64
	APR       float64

	Token0 TokenInfo
	Token1 TokenInfo

	// Balance is set only when a wallet address was supplied
	Balance *UserBalance
}
