package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"defi-dash/config"
	"defi-dash/pkg/txsender"
	"defi-dash/pkg/wallet"
)

var checkRecipient string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check gas sponsorship eligibility for a recipient",
	Long: `Check whether a transfer to the given recipient would be eligible for
gas sponsorship from the connected smart wallet.

Examples:
  defi-dash check --to 0xRecipient`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkRecipient, "to", "", "Recipient address (REQUIRED)")
	_ = checkCmd.MarkFlagRequired("to")
}

func runCheck(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if !common.IsHexAddress(checkRecipient) {
		printError(fmt.Errorf("invalid recipient address: %s", checkRecipient))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := cfg.RequireRelay(); err != nil {
		printError(err)
		os.Exit(1)
	}

	logger := newLogger(verbose)
	provider := wallet.NewRelayClient(cfg.RelayURL, cfg.RelayAppKey, cfg.WalletAddress, logger)
	sender := txsender.NewSender(provider, logger)

	eligible := sender.CheckSponsorship(context.Background(), txsender.TransferParams{
		Recipient: common.HexToAddress(checkRecipient),
		ChainID:   cfg.ChainID,
	})

	if jsonOutput {
		encoded, _ := json.MarshalIndent(map[string]bool{"eligible": eligible}, "", "  ")
		fmt.Println(string(encoded))
		return
	}

	if eligible {
		printSuccess(color.GreenString("Transfers to %s are eligible for gas sponsorship", checkRecipient))
	} else {
		printSuccess(color.YellowString("Transfers to %s are NOT eligible for gas sponsorship", checkRecipient))
	}
}
