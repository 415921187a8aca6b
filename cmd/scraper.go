package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/pipeline"
)

var (
	scraperBatchNum int
	scraperNext     bool
	scraperStatus   bool
	scraperLaunch   bool
	scraperSize     int
)

var scraperCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Feed needs-scraper URLs to the profile scraper in batches",
	Long:  "Slices the needs-scraper list into batches, writes a batch to the holding sheet, and optionally launches the scraper agent on it. Progress is recorded so --next always picks the first batch that has not run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		master, err := initMasterSheet()
		if err != nil {
			return err
		}
		pb, err := initPhantomBuster()
		if err != nil {
			return err
		}

		size := cfg.Scraper.BatchSize
		if scraperSize > 0 {
			size = scraperSize
		}

		st := openStore(ctx)
		defer closeStore(st)

		s := pipeline.NewScraperBatch(master, pb, st, pipeline.ScraperBatchConfig{
			NeedsCSVPath: cfg.Enrich.NeedsCSVPath,
			BatchSize:    size,
			AgentID:      cfg.PhantomBuster.AgentID,
			LaunchArgs:   scraperLaunchArgs(),
			DryRun:       dryRun,
		})

		if scraperStatus {
			status, progress, err := s.Status(ctx)
			if err != nil {
				return eris.Wrap(err, "scraper status")
			}
			fmt.Fprintf(os.Stdout, "agent status: %s\n", status)
			fmt.Fprintf(os.Stdout, "completed batches: %v (last: %d)\n",
				progress.CompletedBatches, progress.LastBatch)
			return nil
		}

		var summary pipeline.Summary
		switch {
		case scraperNext:
			summary, err = s.RunNext(ctx, scraperLaunch)
		case scraperBatchNum > 0:
			summary, err = s.RunBatch(ctx, scraperBatchNum, scraperLaunch)
		default:
			return eris.New("one of --batch, --next or --status is required")
		}
		if err != nil {
			return eris.Wrap(err, "scraper")
		}
		zap.L().Info("scraper batch finished", summary.Fields()...)
		return nil
	},
}

func init() {
	scraperCmd.Flags().IntVar(&scraperBatchNum, "batch", 0, "batch number to run (1-based)")
	scraperCmd.Flags().BoolVar(&scraperNext, "next", false, "run the first batch that has not completed")
	scraperCmd.Flags().BoolVar(&scraperStatus, "status", false, "show agent status and batch progress")
	scraperCmd.Flags().BoolVar(&scraperLaunch, "launch", false, "launch the scraper agent after writing the batch")
	scraperCmd.Flags().IntVar(&scraperSize, "size", 0, "batch size (overrides config)")
	scraperCmd.MarkFlagsMutuallyExclusive("batch", "next", "status")
	rootCmd.AddCommand(scraperCmd)
}
