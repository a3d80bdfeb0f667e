// Command nftctl deploys, upgrades, mints and serves SampleNFTUpgradable
// proxies against a configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/nft_layer/internal/config"
	"github.com/R3E-Network/nft_layer/internal/deploy"
	"github.com/R3E-Network/nft_layer/internal/events"
	"github.com/R3E-Network/nft_layer/internal/storage"
	"github.com/R3E-Network/nft_layer/pkg/logger"
)

var (
	// Global flags
	configPath string
	envFile    string
	logLevel   string
	jsonOutput bool

	// Set up by PersistentPreRunE.
	cfg      *config.Config
	log      *logger.Logger
	store    storage.Store
	closeFn  func() error
	eventLog *events.RingBuffer
	manager  *deploy.Manager
)

var rootCmd = &cobra.Command{
	Use:   "nftctl",
	Short: "Manage SampleNFTUpgradable proxies",
	Long: `nftctl drives the SampleNFTUpgradable issuance core: a capped (10 token)
collection with a fixed public mint price, free owner mints, per-token
metadata URIs and royalties, deployed behind an upgradeable proxy.

State lives in the configured store (memory, postgres or redis). With the
memory driver every invocation starts empty, so use postgres or redis to
deploy in one command and mint in the next.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath, envFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		log = logger.New(cfg.Logging).Named("nftctl")

		if cmd.Name() == "accounts" {
			return nil
		}
		store, closeFn, err = openStore(cmd.Context(), cfg.Storage, log)
		if err != nil {
			return err
		}
		eventLog = events.NewRingBuffer(1024)
		manager = deploy.NewManager(store, nil,
			deploy.WithLogger(log.Named("deploy")),
			deploy.WithEvents(eventLog),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if closeFn != nil {
			return closeFn()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading NFT_* variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		accountsCmd,
		deployCmd,
		upgradeCmd,
		mintCmd,
		ownerMintCmd,
		infoCmd,
		historyCmd,
		serveCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
