package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/internal/store"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
	"github.com/chrt-labs/crm-sync-cli/pkg/mastersheet"
)

const (
	// lookupBatchSize caps each segment-lookup request; the Apps Script
	// endpoint times out on larger payloads.
	lookupBatchSize = 200
	lookupBatchWait = time.Second

	segmentCourier = "Courier"
)

var titleCaser = cases.Title(language.English)

// Backfill writes each contact's known connections (owner names from the
// segment-lookup service) into the multi-line connections property.
type Backfill struct {
	hub    hubspot.Client
	master mastersheet.Client
	store  store.Store
	dryRun bool
}

// NewBackfill wires a Backfill pipeline.
func NewBackfill(hub hubspot.Client, master mastersheet.Client, st store.Store, dryRun bool) *Backfill {
	return &Backfill{hub: hub, master: master, store: st, dryRun: dryRun}
}

// Run executes the backfill pipeline and returns its summary.
func (b *Backfill) Run(ctx context.Context) (Summary, error) {
	return recordRun(ctx, b.store, "backfill", b.dryRun, b.run)
}

func (b *Backfill) run(ctx context.Context) (Summary, error) {
	log := zap.L().Named("backfill")
	summary := Summary{}

	properties := []string{
		model.FieldFirstName, model.FieldLastName,
		model.FieldLinkedInURL, model.FieldConnections, model.FieldSegment,
	}
	contacts, err := b.hub.ListAll(ctx, hubspot.ObjectTypeContacts, properties)
	if err != nil {
		return summary, eris.Wrap(err, "backfill: list contacts")
	}

	byURL := make(map[string][]model.Record)
	var urls []string
	for _, c := range contacts {
		u := strings.TrimSpace(c.Get(model.FieldLinkedInURL))
		if u == "" {
			continue
		}
		if _, seen := byURL[u]; !seen {
			urls = append(urls, u)
		}
		byURL[u] = append(byURL[u], c)
	}
	sort.Strings(urls)
	log.Info("contacts with profile URLs", zap.Int("count", len(urls)))

	connections := make(map[string][]string, len(urls))
	batches := chunk(urls, lookupBatchSize)
	for i, batch := range batches {
		if i > 0 {
			select {
			case <-time.After(lookupBatchWait):
			case <-ctx.Done():
				return summary, ctx.Err()
			}
		}
		result, err := b.master.LookupConnections(ctx, batch)
		if err != nil {
			return summary, eris.Wrapf(err, "backfill: lookup batch %d", i+1)
		}
		for u, names := range result {
			connections[u] = names
		}
		log.Info("lookup batch complete", zap.Int("batch", i+1), zap.Int("of", len(batches)))
	}

	for _, u := range urls {
		value := FormatConnections(connections[u])
		for _, c := range byURL[u] {
			current := c.Get(model.FieldConnections)
			if value == "" || value == current {
				summary.Add("skipped", 1)
				continue
			}

			if b.dryRun {
				log.Info("dry-run: would set connections",
					zap.String("id", c.ID), zap.String("connections", value))
				summary.Add("updated", 1)
				continue
			}
			err := b.hub.Update(ctx, hubspot.ObjectTypeContacts, c.ID,
				map[string]string{model.FieldConnections: value})
			if err != nil {
				log.Error("set connections failed", zap.String("id", c.ID), zap.Error(err))
				summary.Add("errors", 1)
				continue
			}
			summary.Add("updated", 1)
		}
	}

	b.courierBreakdown(log, contacts, connections, summary)

	log.Info("backfill complete", summary.Fields()...)
	return summary, nil
}

// courierBreakdown tallies courier-segment contacts per connection owner.
func (b *Backfill) courierBreakdown(log *zap.Logger, contacts []model.Record, connections map[string][]string, summary Summary) {
	counts := make(map[string]int)
	for _, c := range contacts {
		if c.Get(model.FieldSegment) != segmentCourier {
			continue
		}
		summary.Add("couriers", 1)
		for _, owner := range connections[strings.TrimSpace(c.Get(model.FieldLinkedInURL))] {
			counts[titleCaser.String(strings.TrimSpace(owner))]++
		}
	}

	owners := make([]string, 0, len(counts))
	for o := range counts {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	for _, o := range owners {
		log.Info("courier connections", zap.String("owner", o), zap.Int("count", counts[o]))
	}
}

// FormatConnections renders owner names as the stored property value:
// title-cased, deduplicated, sorted, semicolon-joined.
func FormatConnections(names []string) string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = titleCaser.String(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return strings.Join(out, ";")
}
