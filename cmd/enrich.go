package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/dedupe"
	"github.com/chrt-labs/crm-sync-cli/internal/pipeline"
)

var (
	enrichFixIndustry bool
	enrichCleanup     bool
	enrichScraperFile string
)

// newEnrichPipeline wires the enrich pipeline from config and flags. The
// returned cleanup closes the run ledger.
func newEnrichPipeline(cmd *cobra.Command) (*pipeline.Enrich, func(), error) {
	hub, err := initHubSpot()
	if err != nil {
		return nil, nil, err
	}
	master, err := initMasterSheet()
	if err != nil {
		return nil, nil, err
	}
	resolver, err := initResolver()
	if err != nil {
		return nil, nil, err
	}

	var norm *dedupe.Normalizer
	if cfg.Dedup.FieldsConfig != "" {
		fields, err := dedupe.LoadFieldsConfig(cfg.Dedup.FieldsConfig)
		if err != nil {
			return nil, nil, err
		}
		norm = fields.Normalizer()
	}

	scraperExport := cfg.Enrich.ScraperExport
	if enrichScraperFile != "" {
		scraperExport = enrichScraperFile
	}

	st := openStore(cmd.Context())
	e := pipeline.NewEnrich(hub, master, resolver, st, norm, pipeline.EnrichConfig{
		ScraperExport: scraperExport,
		NeedsCSVPath:  cfg.Enrich.NeedsCSVPath,
		CleanupIDs:    cfg.Enrich.CleanupIDs,
		FixIndustry:   enrichFixIndustry,
		Cleanup:       enrichCleanup,
		DryRun:        dryRun,
	})
	return e, func() { closeStore(st) }, nil
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Gap-fill contacts and create missing ones",
	Long:  "Fills empty contact fields from the master list and scraper exports, creates contacts for unsynced profiles and scraper-only rows, and writes the list of profiles still needing a scrape.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := newEnrichPipeline(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := e.Run(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "enrich")
		}
		zap.L().Info("enrich finished", summary.Fields()...)
		return nil
	},
}

var fixIndustryCmd = &cobra.Command{
	Use:   "fix-industry",
	Short: "Repair invalid or missing industry values",
	Long:  "Remaps stored industry values that are not valid enum members and fills empty ones from the master list and scraper sources.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := newEnrichPipeline(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := e.FixIndustry(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "fix-industry")
		}
		zap.L().Info("fix-industry finished", summary.Fields()...)
		return nil
	},
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichFixIndustry, "fix-industry", false, "also repair industry values before enriching")
	enrichCmd.Flags().BoolVar(&enrichCleanup, "cleanup", false, "delete sample/test contacts before enriching")
	enrichCmd.Flags().StringVar(&enrichScraperFile, "scraper-file", "", "scraper export path (overrides config)")
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(fixIndustryCmd)
}
