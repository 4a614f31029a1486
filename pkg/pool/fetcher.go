package pool

import (
	"context"
	"fmt"
	"strconv"

	"defi-dash/pkg/prices"
	"defi-dash/pkg/subgraph"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// poolSource is the indexer surface the fetcher depends on
type poolSource interface {
	FetchPool(ctx context.Context, poolAddress string) (*subgraph.Pool, error)
}

// priceSource is the price API surface the fetcher depends on
type priceSource interface {
	USDPrice(ctx context.Context, id string) (float64, error)
	USDQuote(ctx context.Context, id string) (prices.Quote, error)
}

// balanceSource is the chain-read surface the fetcher depends on
type balanceSource interface {
	Native(ctx context.Context, account common.Address) (float64, error)
	Token(ctx context.Context, token, account common.Address) (float64, error)
}

// Options configures a Fetcher. Fallback prices are substituted when a
// price fetch fails; the indexer call itself always fails hard.
type Options struct {
	PoolAddress string
	StableToken common.Address
	PoolToken   common.Address

	RefAssetID  string
	PoolAssetID string

	FallbackRefPriceUSD  float64
	FallbackPoolPriceUSD float64
}

// Fetcher assembles pool analytics from the subgraph, the price API, and
// optional wallet balance reads
type Fetcher struct {
	pools    poolSource
	prices   priceSource
	balances balanceSource
	opts     Options
	logger   *zap.Logger
}

// NewFetcher creates a pool data fetcher. balances may be nil, in which
// case wallet balances are reported as zero.
func NewFetcher(pools poolSource, priceAPI priceSource, balances balanceSource, opts Options, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		pools:    pools,
		prices:   priceAPI,
		balances: balances,
		opts:     opts,
		logger:   logger,
	}
}

// FetchPoolData builds a fresh analytics snapshot. The subgraph fetch is
// atomic: if it fails, no price or balance calls are made and no partial
// snapshot is returned. Price fetches degrade to the configured fallbacks;
// balance reads degrade to zero per asset.
func (f *Fetcher) FetchPoolData(ctx context.Context, wallet *common.Address) (*PoolData, error) {
	indexed, err := f.pools.FetchPool(ctx, f.opts.PoolAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool: %w", err)
	}

	data := &PoolData{
		TVLUSD:    parseFloat(indexed.TotalValueLockedUSD),
		VolumeUSD: parseFloat(indexed.VolumeUSD),
		Token0: TokenInfo{
			Symbol:  indexed.Token0.Symbol,
			Name:    indexed.Token0.Name,
			Address: indexed.Token0.ID,
		},
		Token1: TokenInfo{
			Symbol:  indexed.Token1.Symbol,
			Name:    indexed.Token1.Name,
			Address: indexed.Token1.ID,
		},
	}

	if len(indexed.PoolDayData) > 0 {
		data.Fees24USD = parseFloat(indexed.PoolDayData[0].FeesUSD)
	}
	data.APR = AnnualizedAPR(data.Fees24USD, data.TVLUSD)

	data.PoolTokenPriceUSD = f.poolTokenPrice(ctx)
	if data.PoolTokenPriceUSD > 0 {
		data.SyntheticRate = 1 / data.PoolTokenPriceUSD
	}

	refQuote := f.refQuote(ctx)
	data.RefPriceUSD = refQuote.USD
	if refQuote.USD24hChange != nil {
		data.RefPrice24hChange = *refQuote.USD24hChange
	}

	if wallet != nil {
		data.Balance = f.fetchBalances(ctx, *wallet, data.RefPriceUSD, data.PoolTokenPriceUSD)
	}

	return data, nil
}

// poolTokenPrice fetches the pool token's USD quote, falling back to the
// configured constant
func (f *Fetcher) poolTokenPrice(ctx context.Context) float64 {
	price, err := f.prices.USDPrice(ctx, f.opts.PoolAssetID)
	if err != nil {
		f.logger.Warn("pool token price unavailable, using fallback",
			zap.String("asset", f.opts.PoolAssetID),
			zap.Float64("fallback", f.opts.FallbackPoolPriceUSD),
			zap.Error(err))
		return f.opts.FallbackPoolPriceUSD
	}
	return price
}

// refQuote fetches the reference asset's USD quote, falling back to the
// configured constant
func (f *Fetcher) refQuote(ctx context.Context) prices.Quote {
	quote, err := f.prices.USDQuote(ctx, f.opts.RefAssetID)
	if err != nil {
		f.logger.Warn("reference price unavailable, using fallback",
			zap.String("asset", f.opts.RefAssetID),
			zap.Float64("fallback", f.opts.FallbackRefPriceUSD),
			zap.Error(err))
		return prices.Quote{USD: f.opts.FallbackRefPriceUSD}
	}
	return quote
}

// fetchBalances reads the wallet's three balances, tolerating each read
// failing independently, and totals them against the supplied prices
func (f *Fetcher) fetchBalances(ctx context.Context, wallet common.Address, refPriceUSD, poolPriceUSD float64) *UserBalance {
	ub := &UserBalance{}
	if f.balances == nil {
		return ub
	}

	native, err := f.balances.Native(ctx, wallet)
	if err != nil {
		f.logger.Warn("native balance read failed", zap.Error(err))
	} else {
		ub.Native = native
	}

	stable, err := f.balances.Token(ctx, f.opts.StableToken, wallet)
	if err != nil {
		f.logger.Warn("stable balance read failed", zap.Error(err))
	} else {
		ub.Stable = stable
	}

	poolToken, err := f.balances.Token(ctx, f.opts.PoolToken, wallet)
	if err != nil {
		f.logger.Warn("pool token balance read failed", zap.Error(err))
	} else {
		ub.PoolToken = poolToken
	}

	ub.TotalUSD = TotalValueUSD(ub.Native, ub.Stable, ub.PoolToken, refPriceUSD, poolPriceUSD)
	return ub
}

// AnnualizedAPR estimates the yearly percentage return from one day of fee
// revenue against total value locked. Zero or missing inputs yield zero.
func AnnualizedAPR(fees24hUSD, tvlUSD float64) float64 {
	if fees24hUSD <= 0 || tvlUSD <= 0 {
		return 0
	}
	return (fees24hUSD * 365 / tvlUSD) * 100
}

// TotalValueUSD combines the three balances with their prices. The stable
// asset is valued at par.
func TotalValueUSD(native, stable, poolToken, refPriceUSD, poolPriceUSD float64) float64 {
	return native*refPriceUSD + stable + poolToken*poolPriceUSD
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
