package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/internal/scraperfile"
	"github.com/chrt-labs/crm-sync-cli/internal/store"
	"github.com/chrt-labs/crm-sync-cli/pkg/mastersheet"
	"github.com/chrt-labs/crm-sync-cli/pkg/phantombuster"
)

// DefaultScraperBatchSize is how many profile URLs each scraper launch gets.
const DefaultScraperBatchSize = 10

// ScraperBatchConfig carries the knobs of the scraper-batch pipeline.
type ScraperBatchConfig struct {
	NeedsCSVPath string
	BatchSize    int
	AgentID      string
	LaunchArgs   phantombuster.LaunchArgs
	DryRun       bool
}

// ScraperBatch feeds needs-scraper URLs to the profile scraper in batches:
// write a batch to the holding sheet, optionally launch the scraper agent on
// it, and record which batches have run.
type ScraperBatch struct {
	master mastersheet.Client
	pb     phantombuster.Client
	store  store.Store
	cfg    ScraperBatchConfig
}

// NewScraperBatch wires a ScraperBatch pipeline.
func NewScraperBatch(master mastersheet.Client, pb phantombuster.Client, st store.Store, cfg ScraperBatchConfig) *ScraperBatch {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultScraperBatchSize
	}
	return &ScraperBatch{master: master, pb: pb, store: st, cfg: cfg}
}

// Batches slices the needs-scraper list into launch-sized batches.
func (s *ScraperBatch) Batches() ([][]scraperfile.NeedsScraperEntry, error) {
	entries, err := scraperfile.ReadNeedsCSV(s.cfg.NeedsCSVPath)
	if err != nil {
		return nil, err
	}
	return chunk(entries, s.cfg.BatchSize), nil
}

// Status reports the scraper agent state and the recorded batch progress.
func (s *ScraperBatch) Status(ctx context.Context) (string, *model.BatchProgress, error) {
	status, err := s.pb.AgentStatus(ctx, s.cfg.AgentID)
	if err != nil {
		return "", nil, err
	}
	progress, err := s.progress(ctx)
	if err != nil {
		return status, nil, err
	}
	return status, progress, nil
}

// RunNext runs the lowest-numbered batch that has not completed yet.
func (s *ScraperBatch) RunNext(ctx context.Context, launch bool) (Summary, error) {
	batches, err := s.Batches()
	if err != nil {
		return Summary{}, err
	}
	progress, err := s.progress(ctx)
	if err != nil {
		return Summary{}, err
	}

	for n := 1; n <= len(batches); n++ {
		if !progress.Completed(n) {
			return s.RunBatch(ctx, n, launch)
		}
	}
	return Summary{}, eris.New("scraper-batch: all batches already completed")
}

// RunBatch writes batch n (1-based) to the holding sheet and optionally
// launches the scraper agent on it.
func (s *ScraperBatch) RunBatch(ctx context.Context, n int, launch bool) (Summary, error) {
	return recordRun(ctx, s.store, "scraper-batch", s.cfg.DryRun, func(ctx context.Context) (Summary, error) {
		return s.runBatch(ctx, n, launch)
	})
}

func (s *ScraperBatch) runBatch(ctx context.Context, n int, launch bool) (Summary, error) {
	log := zap.L().Named("scraper-batch")
	summary := Summary{}

	batches, err := s.Batches()
	if err != nil {
		return summary, err
	}
	if n < 1 || n > len(batches) {
		return summary, eris.Errorf("scraper-batch: batch %d out of range (1-%d)", n, len(batches))
	}
	summary["batch"] = n
	summary["batches_total"] = len(batches)

	progress, err := s.progress(ctx)
	if err != nil {
		return summary, err
	}
	if progress.Completed(n) {
		log.Warn("batch already completed, running again", zap.Int("batch", n))
	}

	var urls []string
	for _, entry := range batches[n-1] {
		urls = append(urls, entry.ProfileURL)
	}
	summary["urls"] = len(urls)

	if s.cfg.DryRun {
		log.Info("dry-run: would write batch to holding sheet",
			zap.Int("batch", n), zap.Int("urls", len(urls)), zap.Bool("launch", launch))
		return summary, nil
	}

	count, err := s.master.WriteHoldingURLs(ctx, urls)
	if err != nil {
		return summary, eris.Wrapf(err, "scraper-batch: write batch %d", n)
	}
	log.Info("batch written to holding sheet", zap.Int("batch", n), zap.Int("count", count))

	if launch {
		status, err := s.pb.AgentStatus(ctx, s.cfg.AgentID)
		if err != nil {
			return summary, eris.Wrap(err, "scraper-batch: agent status")
		}
		if status == phantombuster.StatusRunning {
			return summary, eris.New("scraper-batch: agent is still running, not launching")
		}

		containerID, err := s.pb.Launch(ctx, s.cfg.AgentID, s.cfg.LaunchArgs)
		if err != nil {
			return summary, eris.Wrapf(err, "scraper-batch: launch batch %d", n)
		}
		log.Info("scraper launched", zap.Int("batch", n), zap.String("container_id", containerID))
		summary.Add("launched", 1)
	}

	progress.MarkCompleted(n)
	if s.store != nil {
		if err := s.store.SaveBatchProgress(ctx, progress); err != nil {
			log.Warn("failed to save batch progress", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *ScraperBatch) progress(ctx context.Context) (*model.BatchProgress, error) {
	if s.store == nil {
		return &model.BatchProgress{}, nil
	}
	progress, err := s.store.GetBatchProgress(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "scraper-batch: load progress")
	}
	return progress, nil
}
