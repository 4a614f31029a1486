package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "defi-dash",
	Short: "A CLI for pool analytics and sponsored transfers via a smart wallet",
	Long: `defi-dash is a command-line companion for a liquidity-pool dashboard.
It fetches pool price/TVL/APR analytics, checks wallet balances, and submits
token transfers through a smart-wallet relay with optional gas sponsorship.

Examples:
  defi-dash pool
  defi-dash pool --wallet 0xYourWallet
  defi-dash balance --wallet 0xYourWallet
  defi-dash send 0.5 --to 0xRecipient
  defi-dash send 100 --to 0xRecipient --token 0xTokenContract --decimals 6
  defi-dash check --to 0xRecipient`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
