package model

import "time"

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded execution of a sync pipeline.
type Run struct {
	ID         string         `json:"id"`
	Pipeline   string         `json:"pipeline"`
	DryRun     bool           `json:"dryRun"`
	Status     RunStatus      `json:"status"`
	Summary    map[string]int `json:"summary,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
}

// BatchProgress tracks which scraper batches have been launched.
type BatchProgress struct {
	CompletedBatches []int `json:"completed_batches"`
	LastBatch        int   `json:"last_batch"`
}

// Completed reports whether the given batch number has already run.
func (p *BatchProgress) Completed(batch int) bool {
	for _, b := range p.CompletedBatches {
		if b == batch {
			return true
		}
	}
	return false
}

// MarkCompleted records a batch as launched and advances the cursor.
func (p *BatchProgress) MarkCompleted(batch int) {
	if !p.Completed(batch) {
		p.CompletedBatches = append(p.CompletedBatches, batch)
	}
	p.LastBatch = batch
}
