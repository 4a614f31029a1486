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
	"go.uber.org/zap"

	"defi-dash/config"
	"defi-dash/pkg/txsender"
	"defi-dash/pkg/wallet"
)

var (
	sendRecipient   string
	sendToken       string
	sendDecimals    int
	skipEligibility bool
)

var sendCmd = &cobra.Command{
	Use:   "send <amount>",
	Short: "Send a transfer through the smart wallet",
	Long: `Send a native or ERC-20 transfer through the smart-wallet relay.

The transfer is attempted with gas sponsorship first. If sponsorship is
unavailable the send is retried once without it, paying gas from the wallet.

Examples:
  # Native transfer
  defi-dash send 0.5 --to 0xRecipient

  # ERC-20 transfer (USDC has 6 decimals)
  defi-dash send 100 --to 0xRecipient --token 0xTokenContract --decimals 6`,
	Args: cobra.ExactArgs(1),
	Run:  runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendRecipient, "to", "", "Recipient address (REQUIRED)")
	sendCmd.Flags().StringVar(&sendToken, "token", "", "ERC-20 token contract address (omit for native transfer)")
	sendCmd.Flags().IntVar(&sendDecimals, "decimals", 18, "Token decimals")
	sendCmd.Flags().BoolVar(&skipEligibility, "no-sponsor-check", false, "Skip the sponsorship eligibility check")

	_ = sendCmd.MarkFlagRequired("to")
}

func runSend(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if !common.IsHexAddress(sendRecipient) {
		printError(fmt.Errorf("invalid recipient address: %s", sendRecipient))
		os.Exit(1)
	}
	if sendToken != "" && !common.IsHexAddress(sendToken) {
		printError(fmt.Errorf("invalid token contract address: %s", sendToken))
		os.Exit(1)
	}

	// Load configuration
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

	params := txsender.TransferParams{
		Recipient: common.HexToAddress(sendRecipient),
		Amount:    args[0],
		Decimals:  sendDecimals,
		ChainID:   cfg.ChainID,
	}
	if sendToken != "" {
		token := common.HexToAddress(sendToken)
		params.Token = &token
	}

	ctx := context.Background()

	if !skipEligibility {
		if !sender.CheckSponsorship(ctx, params) && !jsonOutput {
			color.Yellow("Gas sponsorship is not available for this transfer; the wallet will pay gas.")
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Sending transaction..."
		s.Start()
	}

	hash, sendErr := sender.Send(ctx, params)

	if !jsonOutput {
		s.Stop()
	}

	status := sender.Status()

	if jsonOutput {
		out := map[string]interface{}{
			"sponsored": status.Sponsored,
			"txHash":    status.TxHash,
		}
		if status.Err != nil {
			out["error"] = status.Err.Error()
		}
		encoded, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(encoded))
		if sendErr != nil {
			os.Exit(1)
		}
		return
	}

	if sendErr != nil {
		printError(sendErr)
		os.Exit(1)
	}

	green := color.New(color.FgGreen)
	printSuccess(green.Sprintf("Transaction sent: %s", hash))
	if status.Sponsored {
		fmt.Println("Gas was sponsored.")
	} else {
		fmt.Println("Gas was paid by the wallet (sponsorship unavailable).")
	}
}

// newLogger builds the CLI logger; verbose enables debug output to stderr
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
