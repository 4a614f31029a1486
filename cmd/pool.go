package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"defi-dash/config"
	"defi-dash/pkg/balance"
	"defi-dash/pkg/pool"
	"defi-dash/pkg/prices"
	"defi-dash/pkg/subgraph"
)

var poolWallet string

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Show pool analytics",
	Long: `Fetch and display the pool's price, TVL, volume, fee, and APR figures.
When a wallet address is given, its balances and their combined value are
shown as well.

Examples:
  defi-dash pool
  defi-dash pool --wallet 0xYourWallet`,
	Run: runPool,
}

func init() {
	rootCmd.AddCommand(poolCmd)

	poolCmd.Flags().StringVar(&poolWallet, "wallet", "", "Wallet address to include balances for (optional)")
}

func runPool(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if poolWallet != "" && !common.IsHexAddress(poolWallet) {
		printError(fmt.Errorf("invalid wallet address: %s", poolWallet))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	logger := newLogger(verbose)

	var balances *balance.Reader
	if poolWallet != "" {
		balances, err = balance.Dial(cfg.RPCURL, logger)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
	}

	fetcher := pool.NewFetcher(
		subgraph.NewClient(cfg.SubgraphURL, logger),
		prices.NewClient(cfg.PriceAPIURL, logger),
		balances,
		pool.Options{
			PoolAddress:          cfg.PoolAddress,
			StableToken:          common.HexToAddress(cfg.StableToken),
			PoolToken:            common.HexToAddress(cfg.PoolToken),
			RefAssetID:           cfg.RefAssetID,
			PoolAssetID:          cfg.PoolAssetID,
			FallbackRefPriceUSD:  cfg.FallbackRefPriceUSD,
			FallbackPoolPriceUSD: cfg.FallbackPoolPriceUSD,
		},
		logger,
	)

	var wallet *common.Address
	if poolWallet != "" {
		addr := common.HexToAddress(poolWallet)
		wallet = &addr
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching pool data..."
		s.Start()
	}

	data, err := fetcher.FetchPoolData(context.Background(), wallet)

	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		encoded, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(encoded))
		return
	}

	bold := color.New(color.Bold)
	bold.Printf("\n%s / %s\n\n", data.Token0.Symbol, data.Token1.Symbol)
	fmt.Printf("  Pool token price:  $%.6f\n", data.PoolTokenPriceUSD)
	fmt.Printf("  Exchange rate:     %.4f %s per unit\n", data.SyntheticRate, data.Token1.Symbol)
	fmt.Printf("  ETH price:         $%.2f (%+.2f%% 24h)\n", data.RefPriceUSD, data.RefPrice24hChange)
	fmt.Printf("  TVL:               $%.2f\n", data.TVLUSD)
	fmt.Printf("  Volume:            $%.2f\n", data.VolumeUSD)
	fmt.Printf("  Fees (24h):        $%.2f\n", data.Fees24USD)
	fmt.Printf("  Estimated APR:     %.2f%%\n", data.APR)

	if data.Balance != nil {
		bold.Printf("\nWallet %s\n\n", poolWallet)
		printBalance(data.Balance)
	}

	fmt.Println()
}

func printBalance(ub *pool.UserBalance) {
	fmt.Printf("  Native:            %.6f\n", ub.Native)
	fmt.Printf("  Stable:            %.2f\n", ub.Stable)
	fmt.Printf("  Pool token:        %.4f\n", ub.PoolToken)
	fmt.Printf("  Total value:       $%.2f\n", ub.TotalUSD)
}
