package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// Smart-wallet relay
	RelayURL      string
	RelayAppKey   string
	WalletAddress string

	// Chain access
	ChainID int64
	RPCURL  string

	// Pool analytics
	SubgraphURL string
	PriceAPIURL string
	PoolAddress string
	StableToken string
	PoolToken   string

	// Price API asset identifiers
	RefAssetID  string
	PoolAssetID string

	// Fallbacks used when a price fetch fails
	FallbackRefPriceUSD  float64
	FallbackPoolPriceUSD float64
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".defi-dash")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("relay_url", "https://relay.defi-dash.io")
	viper.SetDefault("chain_id", 8453)
	viper.SetDefault("rpc_url", "https://mainnet.base.org")
	viper.SetDefault("subgraph_url", "https://app.defi-dash.io/api/subgraph")
	viper.SetDefault("price_api_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("ref_asset_id", "ethereum")
	viper.SetDefault("pool_asset_id", "cope")
	viper.SetDefault("fallback_ref_price_usd", 2500.0)
	viper.SetDefault("fallback_pool_price_usd", 0.05)

	// Read from environment variables
	viper.SetEnvPrefix("DEFI_DASH")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	// Create config struct
	cfg := &Config{
		RelayURL:             viper.GetString("relay_url"),
		RelayAppKey:          viper.GetString("relay_app_key"),
		WalletAddress:        viper.GetString("wallet_address"),
		ChainID:              viper.GetInt64("chain_id"),
		RPCURL:               viper.GetString("rpc_url"),
		SubgraphURL:          viper.GetString("subgraph_url"),
		PriceAPIURL:          viper.GetString("price_api_url"),
		PoolAddress:          viper.GetString("pool_address"),
		StableToken:          viper.GetString("stable_token"),
		PoolToken:            viper.GetString("pool_token"),
		RefAssetID:           viper.GetString("ref_asset_id"),
		PoolAssetID:          viper.GetString("pool_asset_id"),
		FallbackRefPriceUSD:  viper.GetFloat64("fallback_ref_price_usd"),
		FallbackPoolPriceUSD: viper.GetFloat64("fallback_pool_price_usd"),
	}

	if cfg.PoolAddress == "" {
		return nil, fmt.Errorf("pool address not found. Please set DEFI_DASH_POOL_ADDRESS or create a .defi-dash.yaml config file")
	}

	return cfg, nil
}

// RequireRelay validates the fields needed to submit transactions through the
// smart-wallet relay
func (c *Config) RequireRelay() error {
	if c.RelayAppKey == "" {
		return fmt.Errorf("relay app key not found. Please set DEFI_DASH_RELAY_APP_KEY environment variable")
	}
	if c.WalletAddress == "" {
		return fmt.Errorf("wallet address not found. Please set DEFI_DASH_WALLET_ADDRESS environment variable")
	}
	return nil
}
