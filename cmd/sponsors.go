package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/pipeline"
	"github.com/chrt-labs/crm-sync-cli/pkg/anthropic"
)

var (
	sponsorsURL       string
	sponsorsCSV       string
	sponsorsEvent     string
	sponsorsTasks     bool
	sponsorsConfTasks bool
	sponsorsGeoQuery  bool
	sponsorsGeoCity   string
	sponsorsAISeeds   bool
	sponsorsScore     bool
)

var sponsorsCmd = &cobra.Command{
	Use:   "sponsors",
	Short: "Import event sponsors as companies",
	Long: "Scrapes an event sponsor page (or loads a CSV), creates companies for sponsors HubSpot does not know, " +
		"and prints Sales Navigator prospecting URLs for the ones it does. Optional flags add outreach and " +
		"Conference Prep tasks, a conference-city contact search, ICP contact scoring, and AI seed ranking.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		hub, err := initHubSpot()
		if err != nil {
			return err
		}

		var claude anthropic.Client
		if sponsorsAISeeds || sponsorsScore {
			if claude, err = initAnthropic(); err != nil {
				return err
			}
		}

		st := openStore(ctx)
		defer closeStore(st)

		summary, err := pipeline.NewSponsors(hub, claude, st, pipeline.SponsorsConfig{
			PageURL:         sponsorsURL,
			CSVPath:         sponsorsCSV,
			EventName:       sponsorsEvent,
			CreateTasks:     sponsorsTasks,
			ConferenceTasks: sponsorsConfTasks,
			GeoQuery:        sponsorsGeoQuery,
			GeoCity:         sponsorsGeoCity,
			AISeeds:         sponsorsAISeeds,
			ScoreContacts:   sponsorsScore,
			DryRun:          dryRun,
		}).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "sponsors")
		}
		zap.L().Info("sponsors finished", summary.Fields()...)
		return nil
	},
}

func init() {
	sponsorsCmd.Flags().StringVar(&sponsorsURL, "url", "", "event sponsor page URL")
	sponsorsCmd.Flags().StringVar(&sponsorsCSV, "csv", "", "sponsor list CSV path")
	sponsorsCmd.Flags().StringVar(&sponsorsEvent, "event-name", "AirCargo Conference 2026", "event name for task tagging")
	sponsorsCmd.Flags().BoolVar(&sponsorsTasks, "create-tasks", false, "create outreach tasks for matched sponsor companies")
	sponsorsCmd.Flags().BoolVar(&sponsorsConfTasks, "conference-tasks", false, "create Conference Prep tasks for sponsor-company contacts")
	sponsorsCmd.Flags().BoolVar(&sponsorsGeoQuery, "geo-query", false, "search contacts near the conference city and create prep tasks")
	sponsorsCmd.Flags().StringVar(&sponsorsGeoCity, "geo-city", "Orlando", "conference city for the geo search and seed ranking")
	sponsorsCmd.Flags().BoolVar(&sponsorsAISeeds, "ai-seeds", false, "rank seed contacts for Sales Navigator crawls with Claude")
	sponsorsCmd.Flags().BoolVar(&sponsorsScore, "score-contacts", false, "score sponsor-company contacts against the ICP rubric")
	sponsorsCmd.MarkFlagsOneRequired("url", "csv")
	sponsorsCmd.MarkFlagsMutuallyExclusive("url", "csv")
	rootCmd.AddCommand(sponsorsCmd)
}
