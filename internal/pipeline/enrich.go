package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrt-labs/crm-sync-cli/internal/dedupe"
	"github.com/chrt-labs/crm-sync-cli/internal/enrich"
	"github.com/chrt-labs/crm-sync-cli/internal/industry"
	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/internal/scraperfile"
	"github.com/chrt-labs/crm-sync-cli/internal/store"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
	"github.com/chrt-labs/crm-sync-cli/pkg/mastersheet"
)

// enrichProperties is what the enrich pipeline reads off each contact.
var enrichProperties = append(
	[]string{model.FieldFirstName, model.FieldLastName, model.FieldLeadStatus},
	model.ContactFields...,
)

// EnrichConfig carries the knobs of the enrich pipeline.
type EnrichConfig struct {
	ScraperExport string   // path to the scraper result file (.csv or .xlsx)
	NeedsCSVPath  string   // where to write the needs-scraper list
	CleanupIDs    []string // explicit contact IDs to delete during cleanup
	FixIndustry   bool
	Cleanup       bool
	DryRun        bool
}

// Enrich fills contact gaps from the master list and scraper exports,
// creates contacts for profiles that have none, and emits the list of
// profiles still needing a scrape.
type Enrich struct {
	hub      hubspot.Client
	master   mastersheet.Client
	resolver *industry.Resolver
	store    store.Store
	norm     *dedupe.Normalizer
	cfg      EnrichConfig
}

// NewEnrich wires an Enrich pipeline. A nil norm uses the standard
// normalizer via the dedupe package.
func NewEnrich(hub hubspot.Client, master mastersheet.Client, resolver *industry.Resolver, st store.Store, norm *dedupe.Normalizer, cfg EnrichConfig) *Enrich {
	if norm == nil {
		norm = dedupe.NewNormalizer()
	}
	return &Enrich{hub: hub, master: master, resolver: resolver, store: st, norm: norm, cfg: cfg}
}

// Run executes the enrich pipeline and returns its summary.
func (e *Enrich) Run(ctx context.Context) (Summary, error) {
	return recordRun(ctx, e.store, "enrich", e.cfg.DryRun, e.run)
}

// sources is everything the pipeline loads up front.
type sources struct {
	contacts []model.Record
	profiles *mastersheet.ProfileSets
	scraper  []model.ScraperProfile
}

func (e *Enrich) load(ctx context.Context) (*sources, error) {
	src := &sources{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		contacts, err := e.hub.ListAll(gCtx, hubspot.ObjectTypeContacts, enrichProperties)
		if err != nil {
			return eris.Wrap(err, "enrich: list contacts")
		}
		src.contacts = contacts
		return nil
	})
	g.Go(func() error {
		profiles, err := e.master.FetchProfiles(gCtx)
		if err != nil {
			return eris.Wrap(err, "enrich: fetch master profiles")
		}
		src.profiles = profiles
		return nil
	})
	g.Go(func() error {
		rows, err := scraperfile.Load(e.cfg.ScraperExport)
		if err != nil {
			return eris.Wrap(err, "enrich: load scraper export")
		}
		src.scraper = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return src, nil
}

// preResolve feeds every raw industry value from all three sources through
// the resolver in one batched pass, so the per-contact loops below are pure
// cache lookups.
func (e *Enrich) preResolve(ctx context.Context, src *sources) error {
	var raws []string
	for _, p := range src.profiles.All() {
		raws = append(raws, p.RawIndustry())
	}
	for _, sp := range src.scraper {
		raws = append(raws, sp.CompanyIndustry)
	}
	for _, c := range src.contacts {
		raws = append(raws, c.Get(model.FieldIndustry))
	}
	return e.resolver.ResolveAll(ctx, raws)
}

func (e *Enrich) run(ctx context.Context) (Summary, error) {
	log := zap.L().Named("enrich")
	summary := Summary{}

	src, err := e.load(ctx)
	if err != nil {
		return summary, err
	}
	log.Info("sources loaded",
		zap.Int("contacts", len(src.contacts)),
		zap.Int("synced_profiles", len(src.profiles.Synced)),
		zap.Int("unsynced_profiles", len(src.profiles.Unsynced)),
		zap.Int("scraper_rows", len(src.scraper)),
	)

	if err := e.preResolve(ctx, src); err != nil {
		return summary, err
	}

	if e.cfg.FixIndustry {
		e.fixIndustries(ctx, log, src, summary)
	}
	if e.cfg.Cleanup {
		e.cleanup(ctx, log, src, summary)
	}

	masterLookup := enrich.BuildMasterLookup(src.profiles.All(), e.norm)
	scraperLookup := enrich.BuildScraperLookup(src.scraper, e.norm)

	// Name and URL keys of every contact, grown as we create new ones so a
	// profile reachable two ways is only created once.
	hsNames := make(map[string]struct{}, len(src.contacts))
	hsURLs := make(map[string]struct{}, len(src.contacts))
	for _, c := range src.contacts {
		if k := e.normName(c.FullName()); k != "" {
			hsNames[k] = struct{}{}
		}
		if k := dedupe.NormalizeURL(c.Get(model.FieldLinkedInURL)); k != "" {
			hsURLs[k] = struct{}{}
		}
	}

	var needs []scraperfile.NeedsScraperEntry

	// Pass 1: gap-fill CONNECTED contacts.
	for _, c := range src.contacts {
		if c.Get(model.FieldLeadStatus) != model.LeadStatusConnected {
			continue
		}
		nameKey := e.normName(c.FullName())

		var master *model.MasterProfile
		if mp, ok := masterLookup.ByName(nameKey); ok {
			master = &mp
		} else if mp, ok := masterLookup.ByURL(dedupe.NormalizeURL(c.Get(model.FieldLinkedInURL))); ok {
			master = &mp
		}

		var scraper *model.ScraperProfile
		sp, scraped := scraperLookup.Match(nameKey, c, master)
		if scraped {
			scraper = &sp
		}

		if !c.Has(model.FieldEmail) && master != nil && !scraped {
			needs = append(needs, scraperfile.NeedsScraperEntry{
				ProfileURL: master.DefaultProfileURL,
				FullName:   c.FullName(),
				HubSpotID:  c.ID,
			})
		}

		if master == nil && scraper == nil {
			summary.Add("unmatched", 1)
			continue
		}
		updates := enrich.ComputeUpdates(c, master, scraper, e.resolver.Map)
		if len(updates) == 0 {
			summary.Add("skipped", 1)
			continue
		}

		if e.cfg.DryRun {
			log.Info("dry-run: would update contact",
				zap.String("id", c.ID), zap.Int("fields", len(updates)))
			summary.Add("updated", 1)
			continue
		}
		if err := e.patchContact(ctx, log, c.ID, updates); err != nil {
			log.Error("update contact failed", zap.String("id", c.ID), zap.Error(err))
			summary.Add("errors", 1)
			continue
		}
		summary.Add("updated", 1)
	}

	// Pass 2: create contacts for unsynced master profiles.
	for _, mp := range src.profiles.Unsynced {
		nameKey := e.normName(mp.FullName)
		if _, exists := hsNames[nameKey]; exists {
			summary.Add("skipped", 1)
			continue
		}

		var scraper *model.ScraperProfile
		if sp, ok := scraperLookup.ByName(nameKey); ok {
			scraper = &sp
		}
		props := enrich.NewContactProperties(mp, scraper, e.resolver.Map)

		if e.cfg.DryRun {
			log.Info("dry-run: would create contact", zap.String("name", mp.FullName))
			summary.Add("created", 1)
		} else {
			if _, err := e.hub.Create(ctx, hubspot.ObjectTypeContacts, props); err != nil {
				log.Error("create contact failed", zap.String("name", mp.FullName), zap.Error(err))
				summary.Add("errors", 1)
				continue
			}
			summary.Add("created", 1)
		}

		if nameKey != "" {
			hsNames[nameKey] = struct{}{}
		}
		if k := dedupe.NormalizeURL(mp.DefaultProfileURL); k != "" {
			hsURLs[k] = struct{}{}
		}
	}

	// Pass 3: create contacts for scraper rows nothing else covers.
	for _, sp := range src.scraper {
		nameKey := e.normName(sp.FullName())
		urlKey := dedupe.NormalizeURL(sp.ProfileURL)
		_, byName := hsNames[nameKey]
		_, byURL := hsURLs[urlKey]
		if (nameKey != "" && byName) || (urlKey != "" && byURL) {
			continue
		}

		props := enrich.ScraperContactProperties(sp, e.resolver.Map)
		if e.cfg.DryRun {
			log.Info("dry-run: would create contact from scraper row", zap.String("name", sp.FullName()))
			summary.Add("created_from_scraper", 1)
		} else {
			if _, err := e.hub.Create(ctx, hubspot.ObjectTypeContacts, props); err != nil {
				log.Error("create from scraper row failed", zap.String("name", sp.FullName()), zap.Error(err))
				summary.Add("errors", 1)
				continue
			}
			summary.Add("created_from_scraper", 1)
		}

		if nameKey != "" {
			hsNames[nameKey] = struct{}{}
		}
		if urlKey != "" {
			hsURLs[urlKey] = struct{}{}
		}
	}

	summary["needs_scraper"] = len(needs)
	if e.cfg.NeedsCSVPath != "" {
		if err := scraperfile.WriteNeedsCSV(e.cfg.NeedsCSVPath, needs); err != nil {
			return summary, eris.Wrap(err, "enrich: write needs-scraper csv")
		}
		log.Info("needs-scraper list written",
			zap.String("path", e.cfg.NeedsCSVPath), zap.Int("entries", len(needs)))
	}

	log.Info("enrich complete", summary.Fields()...)
	return summary, nil
}

// patchContact updates one contact, retrying once without the email when the
// first attempt trips the uniqueness constraint.
func (e *Enrich) patchContact(ctx context.Context, log *zap.Logger, id string, updates map[string]string) error {
	err := e.hub.Update(ctx, hubspot.ObjectTypeContacts, id, updates)
	if err == nil {
		return nil
	}
	if _, hasEmail := updates[model.FieldEmail]; !hasEmail || !hubspot.IsConflict(err) {
		return err
	}

	log.Warn("email conflict, retrying without email", zap.String("id", id))
	retry := make(map[string]string, len(updates))
	for k, v := range updates {
		if k != model.FieldEmail {
			retry[k] = v
		}
	}
	if len(retry) == 0 {
		return nil
	}
	return e.hub.Update(ctx, hubspot.ObjectTypeContacts, id, retry)
}

// ApplyScraperRows gap-fills the contacts matching freshly scraped rows,
// matching each row by URL key first, then name key. This is the webhook
// path: rows arrive as the scraper finishes instead of via a file export.
func (e *Enrich) ApplyScraperRows(ctx context.Context, rows []model.ScraperProfile) (Summary, error) {
	return recordRun(ctx, e.store, "scraper-results", e.cfg.DryRun, func(ctx context.Context) (Summary, error) {
		log := zap.L().Named("scraper-results")
		summary := Summary{}

		contacts, err := e.hub.ListAll(ctx, hubspot.ObjectTypeContacts, enrichProperties)
		if err != nil {
			return summary, eris.Wrap(err, "scraper-results: list contacts")
		}

		raws := make([]string, 0, len(rows))
		for _, sp := range rows {
			raws = append(raws, sp.CompanyIndustry)
		}
		if err := e.resolver.ResolveAll(ctx, raws); err != nil {
			return summary, err
		}

		byURL := make(map[string]model.Record, len(contacts))
		byName := make(map[string]model.Record, len(contacts))
		for _, c := range contacts {
			if k := dedupe.NormalizeURL(c.Get(model.FieldLinkedInURL)); k != "" {
				if _, taken := byURL[k]; !taken {
					byURL[k] = c
				}
			}
			if k := e.normName(c.FullName()); k != "" {
				if _, taken := byName[k]; !taken {
					byName[k] = c
				}
			}
		}

		for _, sp := range rows {
			c, matched := byURL[dedupe.NormalizeURL(sp.ProfileURL)]
			if !matched {
				c, matched = byName[e.normName(sp.FullName())]
			}
			if !matched {
				summary.Add("unmatched", 1)
				continue
			}

			updates := enrich.ComputeUpdates(c, nil, &sp, e.resolver.Map)
			if len(updates) == 0 {
				summary.Add("skipped", 1)
				continue
			}
			if e.cfg.DryRun {
				log.Info("dry-run: would update contact",
					zap.String("id", c.ID), zap.Int("fields", len(updates)))
				summary.Add("updated", 1)
				continue
			}
			if err := e.patchContact(ctx, log, c.ID, updates); err != nil {
				log.Error("update contact failed", zap.String("id", c.ID), zap.Error(err))
				summary.Add("errors", 1)
				continue
			}
			summary.Add("updated", 1)
		}

		log.Info("scraper results applied", summary.Fields()...)
		return summary, nil
	})
}

// FixIndustry runs only the industry-repair step as its own pipeline.
func (e *Enrich) FixIndustry(ctx context.Context) (Summary, error) {
	return recordRun(ctx, e.store, "fix-industry", e.cfg.DryRun, func(ctx context.Context) (Summary, error) {
		log := zap.L().Named("fix-industry")
		summary := Summary{}

		src, err := e.load(ctx)
		if err != nil {
			return summary, err
		}
		if err := e.preResolve(ctx, src); err != nil {
			return summary, err
		}
		e.fixIndustries(ctx, log, src, summary)
		log.Info("fix-industry complete", summary.Fields()...)
		return summary, nil
	})
}

// fixIndustries remaps stored industry values that are not valid enum
// members, and fills empty ones from the master and scraper sources.
func (e *Enrich) fixIndustries(ctx context.Context, log *zap.Logger, src *sources, summary Summary) {
	masterLookup := enrich.BuildMasterLookup(src.profiles.All(), e.norm)
	scraperLookup := enrich.BuildScraperLookup(src.scraper, e.norm)

	for _, c := range src.contacts {
		current := c.Get(model.FieldIndustry)
		if current != "" && industry.IsEnum(current) {
			continue
		}

		mapped := ""
		if current != "" {
			mapped = e.resolver.Map(current)
		} else {
			nameKey := e.normName(c.FullName())
			if mp, ok := masterLookup.ByName(nameKey); ok {
				mapped = e.resolver.Map(mp.RawIndustry())
			}
			if mapped == "" {
				if sp, ok := scraperLookup.Match(nameKey, c, nil); ok {
					mapped = e.resolver.Map(sp.CompanyIndustry)
				}
			}
		}
		if mapped == "" || mapped == current {
			continue
		}

		if e.cfg.DryRun {
			log.Info("dry-run: would fix industry",
				zap.String("id", c.ID), zap.String("from", current), zap.String("to", mapped))
			summary.Add("industry_fixed", 1)
			continue
		}
		if err := e.hub.Update(ctx, hubspot.ObjectTypeContacts, c.ID, map[string]string{model.FieldIndustry: mapped}); err != nil {
			log.Error("fix industry failed", zap.String("id", c.ID), zap.Error(err))
			summary.Add("errors", 1)
			continue
		}
		summary.Add("industry_fixed", 1)
	}
}

// cleanup deletes throwaway contacts: explicit IDs from config plus anything
// whose name marks it as a sample or test record.
func (e *Enrich) cleanup(ctx context.Context, log *zap.Logger, src *sources, summary Summary) {
	ids := make(map[string]struct{}, len(e.cfg.CleanupIDs))
	for _, id := range e.cfg.CleanupIDs {
		ids[id] = struct{}{}
	}

	remaining := src.contacts[:0]
	for _, c := range src.contacts {
		_, listed := ids[c.ID]
		if !listed && !isThrowawayName(c.FullName()) {
			remaining = append(remaining, c)
			continue
		}

		if e.cfg.DryRun {
			log.Info("dry-run: would delete contact",
				zap.String("id", c.ID), zap.String("name", c.FullName()))
			summary.Add("cleaned", 1)
			continue
		}
		if err := e.hub.Delete(ctx, hubspot.ObjectTypeContacts, c.ID); err != nil {
			log.Error("cleanup delete failed", zap.String("id", c.ID), zap.Error(err))
			summary.Add("errors", 1)
			remaining = append(remaining, c)
			continue
		}
		summary.Add("cleaned", 1)
	}
	src.contacts = remaining
}

func isThrowawayName(fullName string) bool {
	n := strings.ToLower(strings.TrimSpace(fullName))
	return strings.Contains(n, "sample contact") || strings.Contains(n, "test contact")
}

func (e *Enrich) normName(raw string) string {
	return e.norm.Name(raw)
}
