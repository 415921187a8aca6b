package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/dedupe"
	"github.com/chrt-labs/crm-sync-cli/internal/pipeline"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Merge and delete duplicate contacts",
	Long:  "Groups contacts sharing a name or profile URL key, merges each group into its most complete record, deletes the rest, and cross-references the result against the master list.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		hub, err := initHubSpot()
		if err != nil {
			return err
		}

		var fields *dedupe.FieldsConfig
		if cfg.Dedup.FieldsConfig != "" {
			fields, err = dedupe.LoadFieldsConfig(cfg.Dedup.FieldsConfig)
			if err != nil {
				return err
			}
		}

		master, err := initMasterSheet()
		if err != nil {
			zap.L().Warn("master list unavailable, skipping cross-reference", zap.Error(err))
			master = nil
		}

		st := openStore(ctx)
		defer closeStore(st)

		summary, err := pipeline.NewDedup(hub, master, st, fields, dryRun).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "dedup")
		}
		zap.L().Info("dedup finished", summary.Fields()...)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dedupCmd)
}
