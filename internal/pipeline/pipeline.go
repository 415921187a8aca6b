package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/store"
)

// Summary tallies what a pipeline run did: updated, created, merged,
// deleted, skipped, unmatched, errors and so on.
type Summary map[string]int

// Add increments a counter.
func (s Summary) Add(key string, n int) { s[key] += n }

// Fields renders the summary as sorted zap fields for the final log line.
func (s Summary) Fields() []zap.Field {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Int(k, s[k]))
	}
	return fields
}

// recordRun brackets fn with run-ledger bookkeeping. A nil or unavailable
// ledger is never fatal: failures are logged and fn runs regardless.
func recordRun(ctx context.Context, st store.Store, name string, dryRun bool, fn func(ctx context.Context) (Summary, error)) (Summary, error) {
	var runID string
	if st != nil {
		run, err := st.CreateRun(ctx, name, dryRun)
		if err != nil {
			zap.L().Warn("pipeline: run ledger unavailable", zap.String("pipeline", name), zap.Error(err))
		} else {
			runID = run.ID
		}
	}

	summary, err := fn(ctx)

	if runID != "" {
		if err != nil {
			if ledgerErr := st.FailRun(ctx, runID, err); ledgerErr != nil {
				zap.L().Warn("pipeline: failed to record run failure", zap.Error(ledgerErr))
			}
		} else {
			if ledgerErr := st.CompleteRun(ctx, runID, summary); ledgerErr != nil {
				zap.L().Warn("pipeline: failed to record run completion", zap.Error(ledgerErr))
			}
		}
	}
	return summary, err
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
