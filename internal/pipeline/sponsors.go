package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/sponsor"
	"github.com/chrt-labs/crm-sync-cli/internal/store"
	"github.com/chrt-labs/crm-sync-cli/pkg/anthropic"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
)

// ObjectTypeCompanies is the HubSpot object type the sponsor pipeline
// writes to.
const ObjectTypeCompanies = "companies"

const (
	fieldCompanyName     = "name"
	fieldCompanyDomain   = "domain"
	fieldLifecycleStage  = "lifecyclestage"
	fieldCompanyLeadStat = "hs_lead_status"
	fieldLinkedInPage    = "linkedin_company_page"
)

// SponsorsConfig selects the sponsor source (a live sponsor page or a
// previously exported CSV) and the optional follow-up steps.
type SponsorsConfig struct {
	PageURL   string
	CSVPath   string
	EventName string

	CreateTasks     bool
	ConferenceTasks bool
	GeoQuery        bool
	GeoCity         string
	AISeeds         bool
	ScoreContacts   bool

	DryRun bool
}

// Sponsors loads an event sponsor list, creates HubSpot companies for the
// sponsors that have none, and reports Sales Navigator prospecting URLs for
// the ones whose company page carries a numeric LinkedIn ID. Optional steps
// generate outreach and Conference Prep tasks, search contacts near the
// conference city, score sponsor contacts against the ICP rubric, and rank
// seed contacts for Sales Navigator crawls. The Claude client may be nil
// when no AI step is requested.
type Sponsors struct {
	hub    hubspot.Client
	claude anthropic.Client
	store  store.Store
	cfg    SponsorsConfig
}

// matchedSponsor pairs a sponsor with its existing HubSpot company.
type matchedSponsor struct {
	sponsor   sponsor.Sponsor
	companyID string
	navURL    string
}

// NewSponsors wires a Sponsors pipeline.
func NewSponsors(hub hubspot.Client, claude anthropic.Client, st store.Store, cfg SponsorsConfig) *Sponsors {
	return &Sponsors{hub: hub, claude: claude, store: st, cfg: cfg}
}

// Run executes the sponsor pipeline and returns its summary.
func (s *Sponsors) Run(ctx context.Context) (Summary, error) {
	return recordRun(ctx, s.store, "sponsors", s.cfg.DryRun, s.run)
}

func (s *Sponsors) run(ctx context.Context) (Summary, error) {
	log := zap.L().Named("sponsors")
	summary := Summary{}

	var sponsors []sponsor.Sponsor
	var err error
	switch {
	case s.cfg.PageURL != "":
		sponsors, err = sponsor.Scrape(ctx, s.cfg.PageURL)
	case s.cfg.CSVPath != "":
		sponsors, err = sponsor.LoadCSV(s.cfg.CSVPath)
	default:
		return summary, eris.New("sponsors: no page URL or CSV path given")
	}
	if err != nil {
		return summary, err
	}
	summary["sponsors"] = len(sponsors)

	properties := []string{fieldCompanyName, fieldCompanyDomain, fieldLinkedInPage}
	companies, err := s.hub.ListAll(ctx, ObjectTypeCompanies, properties)
	if err != nil {
		return summary, eris.Wrap(err, "sponsors: list companies")
	}

	byDomain := make(map[string]string, len(companies))
	byName := make(map[string]string, len(companies))
	linkedinByID := make(map[string]string, len(companies))
	for _, c := range companies {
		if d := sponsor.NormalizeDomain(c.Get(fieldCompanyDomain)); d != "" {
			byDomain[d] = c.ID
		}
		if n := strings.ToLower(strings.TrimSpace(c.Get(fieldCompanyName))); n != "" {
			byName[n] = c.ID
		}
		linkedinByID[c.ID] = c.Get(fieldLinkedInPage)
	}

	byTier := make(map[string][]sponsor.Sponsor)
	var matched []matchedSponsor
	for _, sp := range sponsors {
		byTier[sp.Tier] = append(byTier[sp.Tier], sp)

		companyID := ""
		if sp.Domain != "" {
			companyID = byDomain[sp.Domain]
		}
		if companyID == "" {
			companyID = byName[strings.ToLower(sp.Name)]
		}

		if companyID != "" {
			summary.Add("matched", 1)
			navURL := sponsor.SalesNavURL(sponsor.LinkedInCompanyID(linkedinByID[companyID]))
			if navURL != "" {
				log.Info("prospecting url",
					zap.String("company", sp.Name), zap.String("tier", sp.Tier), zap.String("url", navURL))
			}
			matched = append(matched, matchedSponsor{sponsor: sp, companyID: companyID, navURL: navURL})
			continue
		}

		props := map[string]string{
			fieldCompanyName:     sp.Name,
			fieldLifecycleStage:  "lead",
			fieldCompanyLeadStat: "NEW",
		}
		if sp.Domain != "" {
			props[fieldCompanyDomain] = sp.Domain
		}

		if s.cfg.DryRun {
			log.Info("dry-run: would create company",
				zap.String("name", sp.Name), zap.String("tier", sp.Tier))
			summary.Add("created", 1)
			continue
		}
		created, err := s.hub.Create(ctx, ObjectTypeCompanies, props)
		if err != nil {
			log.Error("create company failed", zap.String("name", sp.Name), zap.Error(err))
			summary.Add("errors", 1)
			continue
		}
		summary.Add("created", 1)
		if sp.Domain != "" {
			byDomain[sp.Domain] = created.ID
		}
		byName[strings.ToLower(sp.Name)] = created.ID
	}

	if s.cfg.CreateTasks {
		s.createOutreachTasks(ctx, log, matched, summary)
	}
	tasked := make(map[string]struct{})
	if s.cfg.ConferenceTasks {
		s.createConferenceTasks(ctx, log, matched, tasked, summary)
	}
	if s.cfg.GeoQuery {
		s.createGeoTasks(ctx, log, tasked, summary)
	}
	if s.cfg.ScoreContacts {
		s.scoreContacts(ctx, log, matched, summary)
	}
	if s.cfg.AISeeds {
		s.rankSeeds(ctx, log, matched, sponsors, summary)
	}

	tiers := make([]string, 0, len(byTier))
	for t := range byTier {
		tiers = append(tiers, t)
	}
	sort.Strings(tiers)
	for _, t := range tiers {
		names := make([]string, 0, len(byTier[t]))
		for _, sp := range byTier[t] {
			names = append(names, sp.Name)
		}
		sort.Strings(names)
		log.Info("tier", zap.String("tier", t), zap.Strings("sponsors", names))
	}

	log.Info("sponsors complete", summary.Fields()...)
	return summary, nil
}
