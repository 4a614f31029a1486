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

var balanceWallet string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show a wallet's balances and their combined value",
	Long: `Fetch the wallet's native, stable, and pool token balances and value
them against current prices.

Examples:
  defi-dash balance --wallet 0xYourWallet`,
	Run: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVar(&balanceWallet, "wallet", "", "Wallet address (REQUIRED)")
	_ = balanceCmd.MarkFlagRequired("wallet")
}

func runBalance(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if !common.IsHexAddress(balanceWallet) {
		printError(fmt.Errorf("invalid wallet address: %s", balanceWallet))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	logger := newLogger(verbose)

	balances, err := balance.Dial(cfg.RPCURL, logger)
	if err != nil {
		printError(err)
		os.Exit(1)
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

	addr := common.HexToAddress(balanceWallet)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching balances..."
		s.Start()
	}

	data, err := fetcher.FetchPoolData(context.Background(), &addr)

	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		encoded, _ := json.MarshalIndent(data.Balance, "", "  ")
		fmt.Println(string(encoded))
		return
	}

	bold := color.New(color.Bold)
	bold.Printf("\nWallet %s\n\n", balanceWallet)
	printBalance(data.Balance)
	fmt.Println()
}
