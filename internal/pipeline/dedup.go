package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/dedupe"
	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/internal/store"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
	"github.com/chrt-labs/crm-sync-cli/pkg/mastersheet"
)

// Dedup collapses duplicate contacts: group, pick a keeper, merge the rest
// into it, then delete them. It also cross-references the contact set
// against the master list in both directions.
type Dedup struct {
	hub    hubspot.Client
	master mastersheet.Client
	store  store.Store
	fields *dedupe.FieldsConfig
	dryRun bool
}

// NewDedup wires a Dedup pipeline. master and st may be nil; the
// cross-reference and run ledger are then skipped.
func NewDedup(hub hubspot.Client, master mastersheet.Client, st store.Store, fields *dedupe.FieldsConfig, dryRun bool) *Dedup {
	return &Dedup{hub: hub, master: master, store: st, fields: fields, dryRun: dryRun}
}

// Run executes the dedup pipeline and returns its summary.
func (d *Dedup) Run(ctx context.Context) (Summary, error) {
	return recordRun(ctx, d.store, "dedup", d.dryRun, d.run)
}

func (d *Dedup) run(ctx context.Context) (Summary, error) {
	log := zap.L().Named("dedup")
	summary := Summary{}

	tracked, err := d.fields.Tracked()
	if err != nil {
		return summary, eris.Wrap(err, "dedup: tracked fields")
	}
	norm := d.fields.Normalizer()

	properties := append([]string{model.FieldFirstName, model.FieldLastName, model.FieldLinkedInURL}, tracked...)
	contacts, err := d.hub.ListAll(ctx, hubspot.ObjectTypeContacts, properties)
	if err != nil {
		return summary, eris.Wrap(err, "dedup: list contacts")
	}
	log.Info("loaded contacts", zap.Int("count", len(contacts)))

	groups := dedupe.Groups(contacts, norm)
	summary["groups"] = len(groups)
	log.Info("duplicate groups found", zap.Int("groups", len(groups)))

	for _, g := range groups {
		keeper, others := dedupe.SelectKeeper(g, tracked)
		updates := dedupe.ComputeMerge(keeper, others, tracked)

		if d.dryRun {
			log.Info("dry-run: would merge group",
				zap.String("keeper", keeper.ID),
				zap.Int("duplicates", len(others)),
				zap.Int("fields", len(updates)),
			)
			summary.Add("merged", 1)
			summary.Add("deleted", len(others))
			continue
		}

		if len(updates) > 0 {
			if err := d.hub.Update(ctx, hubspot.ObjectTypeContacts, keeper.ID, updates); err != nil {
				// Keeper update failed: the duplicates still hold data the
				// keeper is missing, so deleting them would lose it.
				log.Error("keeper update failed, keeping duplicates",
					zap.String("keeper", keeper.ID), zap.Error(err))
				summary.Add("errors", 1)
				continue
			}
		}
		summary.Add("merged", 1)

		for _, dup := range others {
			if err := d.hub.Delete(ctx, hubspot.ObjectTypeContacts, dup.ID); err != nil {
				log.Error("delete duplicate failed", zap.String("id", dup.ID), zap.Error(err))
				summary.Add("errors", 1)
				continue
			}
			summary.Add("deleted", 1)
		}
	}

	if d.master != nil {
		profiles, err := d.master.FetchProfiles(ctx)
		if err != nil {
			log.Warn("cross-reference skipped: master list unavailable", zap.Error(err))
			summary.Add("errors", 1)
			return summary, nil
		}

		xref := CrossReference(contacts, profiles.All(), norm)
		summary["missing_from_crm"] = len(xref.MissingFromCRM)
		summary["missing_from_master"] = len(xref.MissingFromMaster)

		for _, p := range xref.MissingFromCRM {
			log.Info("master profile has no contact", zap.String("name", p.FullName))
		}
		for _, r := range xref.MissingFromMaster {
			log.Info("contact has no master profile", zap.String("id", r.ID), zap.String("name", r.FullName()))
		}
	}

	log.Info("dedup complete", summary.Fields()...)
	return summary, nil
}

// CrossRef holds the two directions of the contacts-vs-master-list audit.
type CrossRef struct {
	MissingFromCRM    []model.MasterProfile // on the master list, no contact
	MissingFromMaster []model.Record        // contact exists, not on the list
}

// CrossReference compares contacts against master profiles by name key and
// URL key. A record counts as present if either key matches.
func CrossReference(contacts []model.Record, profiles []model.MasterProfile, norm *dedupe.Normalizer) CrossRef {
	if norm == nil {
		norm = dedupe.NewNormalizer()
	}
	contactNames := make(map[string]struct{}, len(contacts))
	contactURLs := make(map[string]struct{}, len(contacts))
	for _, c := range contacts {
		if k := norm.Name(c.FullName()); k != "" {
			contactNames[k] = struct{}{}
		}
		if k := dedupe.NormalizeURL(c.Get(model.FieldLinkedInURL)); k != "" {
			contactURLs[k] = struct{}{}
		}
	}

	profileNames := make(map[string]struct{}, len(profiles))
	profileURLs := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		if k := norm.Name(p.FullName); k != "" {
			profileNames[k] = struct{}{}
		}
		if k := dedupe.NormalizeURL(p.DefaultProfileURL); k != "" {
			profileURLs[k] = struct{}{}
		}
	}

	var xref CrossRef
	for _, p := range profiles {
		nameKey := norm.Name(p.FullName)
		urlKey := dedupe.NormalizeURL(p.DefaultProfileURL)
		_, byName := contactNames[nameKey]
		_, byURL := contactURLs[urlKey]
		if nameKey == "" {
			byName = false
		}
		if urlKey == "" {
			byURL = false
		}
		if !byName && !byURL {
			xref.MissingFromCRM = append(xref.MissingFromCRM, p)
		}
	}
	for _, c := range contacts {
		nameKey := norm.Name(c.FullName())
		urlKey := dedupe.NormalizeURL(c.Get(model.FieldLinkedInURL))
		_, byName := profileNames[nameKey]
		_, byURL := profileURLs[urlKey]
		if nameKey == "" {
			byName = false
		}
		if urlKey == "" {
			byURL = false
		}
		if !byName && !byURL {
			xref.MissingFromMaster = append(xref.MissingFromMaster, c)
		}
	}
	return xref
}
