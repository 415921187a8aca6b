// Package store persists the pipeline run ledger and scraper batch progress.
package store

import (
	"context"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Pipeline string
	Status   model.RunStatus
	Limit    int
}

// Store defines the persistence interface for pipeline runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, pipeline string, dryRun bool) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary map[string]int) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Scraper batch progress
	GetBatchProgress(ctx context.Context) (*model.BatchProgress, error)
	SaveBatchProgress(ctx context.Context, progress *model.BatchProgress) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
