package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/pipeline"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill connection ownership onto contacts",
	Long:  "Looks up which list owners are connected to each contact's profile URL and writes the owner names into the connections property.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		hub, err := initHubSpot()
		if err != nil {
			return err
		}
		master, err := initMasterSheet()
		if err != nil {
			return err
		}
		if cfg.MasterSheet.SegmentLookupURL == "" {
			return eris.New("segment lookup URL is required (CRMSYNC_MASTER_SHEET_SEGMENT_LOOKUP_URL)")
		}

		st := openStore(ctx)
		defer closeStore(st)

		summary, err := pipeline.NewBackfill(hub, master, st, dryRun).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "backfill")
		}
		zap.L().Info("backfill finished", summary.Fields()...)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}
