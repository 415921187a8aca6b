package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/industry"
	"github.com/chrt-labs/crm-sync-cli/internal/store"
	"github.com/chrt-labs/crm-sync-cli/pkg/anthropic"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
	"github.com/chrt-labs/crm-sync-cli/pkg/mastersheet"
	"github.com/chrt-labs/crm-sync-cli/pkg/phantombuster"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "crm-sync.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, store.PoolConfig{})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore migrates and returns the run ledger, or nil when it is
// unavailable: the ledger never blocks a pipeline.
func openStore(ctx context.Context) store.Store {
	st, err := initStore(ctx)
	if err != nil {
		zap.L().Warn("run ledger unavailable", zap.Error(err))
		return nil
	}
	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run ledger migration failed", zap.Error(err))
		_ = st.Close()
		return nil
	}
	return st
}

func closeStore(st store.Store) {
	if st != nil {
		_ = st.Close()
	}
}

func initHubSpot() (hubspot.Client, error) {
	if cfg.HubSpot.Token == "" {
		return nil, eris.New("hubspot token is required (CRMSYNC_HUBSPOT_TOKEN)")
	}
	opts := []hubspot.Option{}
	if cfg.HubSpot.WriteRPS > 0 {
		opts = append(opts, hubspot.WithWriteLimit(cfg.HubSpot.WriteRPS))
	}
	return hubspot.NewClient(cfg.HubSpot.Token, opts...), nil
}

func initMasterSheet() (mastersheet.Client, error) {
	if cfg.MasterSheet.AuditURL == "" {
		return nil, eris.New("master sheet audit URL is required (CRMSYNC_MASTER_SHEET_AUDIT_URL)")
	}
	return mastersheet.NewClient(
		cfg.MasterSheet.AuditURL,
		cfg.MasterSheet.SegmentLookupURL,
		cfg.MasterSheet.HoldingWriterURL,
	), nil
}

func initAnthropic() (anthropic.Client, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic key is required (CRMSYNC_ANTHROPIC_KEY)")
	}
	return anthropic.NewClient(cfg.Anthropic.Key), nil
}

func initResolver() (*industry.Resolver, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic key is required (CRMSYNC_ANTHROPIC_KEY)")
	}
	cache, err := industry.LoadCache(cfg.Enrich.IndustryCachePath)
	if err != nil {
		return nil, err
	}
	return industry.NewResolver(
		anthropic.NewClient(cfg.Anthropic.Key),
		cache,
		industry.WithModel(cfg.Anthropic.Model),
		industry.WithDryRun(dryRun),
	), nil
}

func initPhantomBuster() (phantombuster.Client, error) {
	if cfg.PhantomBuster.Key == "" {
		return nil, eris.New("phantombuster key is required (CRMSYNC_PHANTOMBUSTER_KEY)")
	}
	return phantombuster.NewClient(cfg.PhantomBuster.Key), nil
}

func scraperLaunchArgs() phantombuster.LaunchArgs {
	return phantombuster.LaunchArgs{
		SessionCookie:         cfg.PhantomBuster.SessionCookie,
		UserAgent:             cfg.PhantomBuster.UserAgent,
		SpreadsheetURL:        cfg.PhantomBuster.SpreadsheetURL,
		ColumnName:            "linkedInProfileUrl",
		EmailChooser:          "phantombuster",
		EmailDiscovery:        true,
		EnrichWithCompanyData: true,
		NumberOfAddsPerLaunch: cfg.Scraper.BatchSize,
	}
}
