package enrich

import (
	"github.com/chrt-labs/crm-sync-cli/internal/dedupe"
	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// MasterLookup indexes master list profiles by normalized name and URL.
// The first profile seen for a key wins.
type MasterLookup struct {
	byName map[string]model.MasterProfile
	byURL  map[string]model.MasterProfile
}

// BuildMasterLookup indexes the given profiles.
func BuildMasterLookup(profiles []model.MasterProfile, norm *dedupe.Normalizer) *MasterLookup {
	l := &MasterLookup{
		byName: make(map[string]model.MasterProfile),
		byURL:  make(map[string]model.MasterProfile),
	}
	for _, p := range profiles {
		if key := norm.Name(p.FullName); key != "" {
			if _, ok := l.byName[key]; !ok {
				l.byName[key] = p
			}
		}
		if key := dedupe.NormalizeURL(p.DefaultProfileURL); key != "" {
			if _, ok := l.byURL[key]; !ok {
				l.byURL[key] = p
			}
		}
	}
	return l
}

// ByName returns the profile indexed under the normalized name.
func (l *MasterLookup) ByName(normName string) (model.MasterProfile, bool) {
	p, ok := l.byName[normName]
	return p, ok
}

// ByURL returns the profile indexed under the normalized LinkedIn URL.
func (l *MasterLookup) ByURL(normURL string) (model.MasterProfile, bool) {
	p, ok := l.byURL[normURL]
	return p, ok
}

// ScraperLookup indexes scraper profiles by normalized name and URL.
type ScraperLookup struct {
	byName map[string]model.ScraperProfile
	byURL  map[string]model.ScraperProfile
}

// BuildScraperLookup indexes the given scraper results.
func BuildScraperLookup(profiles []model.ScraperProfile, norm *dedupe.Normalizer) *ScraperLookup {
	l := &ScraperLookup{
		byName: make(map[string]model.ScraperProfile),
		byURL:  make(map[string]model.ScraperProfile),
	}
	for _, p := range profiles {
		if key := norm.Name(p.FullName()); key != "" {
			if _, ok := l.byName[key]; !ok {
				l.byName[key] = p
			}
		}
		if key := dedupe.NormalizeURL(p.ProfileURL); key != "" {
			if _, ok := l.byURL[key]; !ok {
				l.byURL[key] = p
			}
		}
	}
	return l
}

// ByName returns the scraper profile indexed under the normalized name.
func (l *ScraperLookup) ByName(normName string) (model.ScraperProfile, bool) {
	p, ok := l.byName[normName]
	return p, ok
}

// ByURL returns the scraper profile indexed under the normalized URL.
func (l *ScraperLookup) ByURL(normURL string) (model.ScraperProfile, bool) {
	p, ok := l.byURL[normURL]
	return p, ok
}

// Match finds the scraper profile for a contact: by normalized name first,
// then by the contact's LinkedIn URL, then by the master profile's URL.
func (l *ScraperLookup) Match(normName string, contact model.Record, master *model.MasterProfile) (model.ScraperProfile, bool) {
	if p, ok := l.ByName(normName); ok {
		return p, true
	}
	if key := dedupe.NormalizeURL(contact.Get(model.FieldLinkedInURL)); key != "" {
		if p, ok := l.ByURL(key); ok {
			return p, true
		}
	}
	if master != nil {
		if key := dedupe.NormalizeURL(master.DefaultProfileURL); key != "" {
			if p, ok := l.ByURL(key); ok {
				return p, true
			}
		}
	}
	return model.ScraperProfile{}, false
}
