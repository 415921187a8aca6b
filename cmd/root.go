package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/config"
)

var (
	cfg    *config.Config
	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "crm-sync",
	Short: "CRM contact sync and deduplication toolkit",
	Long:  "Deduplicates HubSpot contacts, gap-fills them from the master list and profile scraper exports, backfills connection ownership, and manages scraper batches.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log intended writes without performing them")
}
