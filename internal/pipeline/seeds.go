package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/industry"
	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/internal/sponsor"
	"github.com/chrt-labs/crm-sync-cli/pkg/anthropic"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
)

const (
	seedModel = "claude-sonnet-4-20250514"

	// seedContactCap bounds the contact list sent to the ranking prompt.
	seedContactCap = 100

	// icpKeepScore is the minimum score at which the classified industry is
	// written back to the contact.
	icpKeepScore = 5
)

// seedContact is the contact shape sent to the ranking prompt.
type seedContact struct {
	ContactID string `json:"contactId"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	City      string `json:"city"`
	LinkedIn  string `json:"linkedin"`
}

type seedSponsor struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

type rankedSeed struct {
	ContactID string `json:"contactId"`
	Name      string `json:"name"`
	Reasoning string `json:"reasoning"`
}

type icpResult struct {
	Score    int    `json:"score"`
	Segment  string `json:"segment"`
	Reason   string `json:"reason"`
	Industry string `json:"hubspotIndustry"`
}

const seedRankingPrompt = `You are an expert B2B networking analyst. Given a list of contacts we are already connected with on LinkedIn and a list of sponsor companies at a conference, identify the TOP 10 contacts most likely to have 2nd-degree connections to decision-makers at the sponsor companies.

Consider:
1. Industry overlap - contacts in similar industries (logistics, healthcare, aerospace, supply chain) are more connected
2. Seniority - VPs, Directors, C-suite tend to have broader networks
3. Company size & reputation - contacts at larger or well-known companies have wider networks
4. Geographic proximity - contacts near the conference city are more likely to know local attendees
5. Role relevance - operations, logistics, supply chain roles cross-pollinate across companies

Return a JSON array of exactly 10 objects, ranked by likelihood of having the most 2nd-degree connections across sponsor companies:
[{"contactId": "...", "name": "...", "reasoning": "one sentence explaining why"}]

## OUR CONTACTS
%s

## CONFERENCE SPONSOR COMPANIES
%s

## CONFERENCE LOCATION
%s

Return ONLY the JSON array, no other text.`

const icpPrompt = `Score this LinkedIn profile 0-10 for Chrt, a B2B SaaS for time-critical logistics. Return JSON only:
{"score": <0-10>, "segment": "<Shipper-Healthcare|Shipper-Aerospace|Courier|Forwarder|Skip>", "reason": "<one sentence>", "hubspotIndustry": "<HUBSPOT_INDUSTRY_ENUM>"}

For hubspotIndustry, map the LinkedIn industry to the closest HubSpot enum from: AIRLINES_AVIATION, AVIATION_AEROSPACE, BIOTECHNOLOGY, DEFENSE_SPACE, HOSPITAL_HEALTH_CARE, HEALTH_WELLNESS_AND_FITNESS, IMPORT_AND_EXPORT, LOGISTICS_AND_SUPPLY_CHAIN, MARITIME, MECHANICAL_OR_INDUSTRIAL_ENGINEERING, MEDICAL_DEVICES, MEDICAL_PRACTICE, PACKAGE_FREIGHT_DELIVERY, PHARMACEUTICALS, TRANSPORTATION_TRUCKING_RAILROAD, WAREHOUSING, WHOLESALE. Use exact enum values only.

## ICP CRITERIA

### SHIPPER-HEALTHCARE (7-10)
Titles: CSCO, Director, VP Supply Chain, VP Lab Ops, Director Logistics/Transportation/Courier Ops, Supply Chain Manager, Director Field Ops, Case Logistics Manager
Companies: Regional health systems, genetics/specialty labs, pharma/biotech, OPOs, tissue/blood banks, med device
Signals: "logistics" "supply chain" "courier" "specimen" in headline | 200-10K employees | Regional focus

### SHIPPER-AEROSPACE (7-10)
Titles: VP/SVP Supply Chain, Director, Director AOG Ops, VP Aftermarket/Customer Support, Materials Manager, CPO
Companies: MRO facilities, aircraft component mfg, engine MROs, airline maintenance
Signals: "AOG" "MRO" "aviation" "aerospace" | Aftermarket focus | Emergency parts

### COURIER (6-10)
Titles: Owner/CEO/Founder, Director, Operations Manager, Dispatch Manager, Fleet Manager, GM
Companies: Medical couriers, same-day/time-critical, cold chain specialists, regional networks
Signals: "medical courier" "same-day" "cold chain" | 10-500 employees | Owner/operator
Avoid: FedEx/UPS employees, DoorDash/Uber Eats, Amazon DSPs

### FORWARDER/AGENT (5-10)
Titles: Operations Manager, Station Manager, Logistics Manager, Director, Network Manager
Companies: Freight forwarders, 3PLs with last-mile, same-day logistics specialists

## SCORING: 10=Perfect fit, 8-9=Excellent, 6-7=Good, 4-5=Marginal, 1-3=Poor, 0=Skip

## LEAD DATA
Name: %s
Title: %s
Company: %s
Industry: %s
Location: %s
Summary: %s`

// rankSeeds asks Claude for the contacts most likely to reach sponsor
// decision-makers through 2nd-degree connections and logs the ranking.
func (s *Sponsors) rankSeeds(ctx context.Context, log *zap.Logger, matched []matchedSponsor, sponsors []sponsor.Sponsor, summary Summary) {
	if s.claude == nil {
		log.Warn("anthropic client not configured, skipping seed ranking")
		return
	}

	var contacts []model.Record
	for _, m := range matched {
		cs, err := s.companyContacts(ctx, m.companyID)
		if err != nil {
			log.Error("fetch company contacts failed",
				zap.String("company", m.sponsor.Name), zap.Error(err))
			summary.Add("errors", 1)
			continue
		}
		contacts = append(contacts, cs...)
	}
	log.Info("collected seed candidates",
		zap.Int("contacts", len(contacts)), zap.Int("companies", len(matched)))
	if len(contacts) == 0 {
		return
	}
	if len(contacts) > seedContactCap {
		contacts = contacts[:seedContactCap]
	}

	seeds := make([]seedContact, 0, len(contacts))
	byID := make(map[string]model.Record, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
		seeds = append(seeds, seedContact{
			ContactID: c.ID,
			Name:      c.FullName(),
			Title:     c.Get(model.FieldJobTitle),
			Company:   c.Get(model.FieldCompany),
			City:      c.Get(model.FieldCity),
			LinkedIn:  c.Get(model.FieldLinkedInURL),
		})
	}

	sponsorList := make([]seedSponsor, 0, len(sponsors))
	for _, sp := range sponsors {
		sponsorList = append(sponsorList, seedSponsor{Name: sp.Name, Tier: sp.Tier})
	}

	contactsJSON, _ := json.MarshalIndent(seeds, "", "  ")
	sponsorsJSON, _ := json.MarshalIndent(sponsorList, "", "  ")
	prompt := fmt.Sprintf(seedRankingPrompt, contactsJSON, sponsorsJSON, s.cfg.GeoCity)

	resp, err := s.claude.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     seedModel,
		MaxTokens: 1024,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		log.Error("seed ranking request failed", zap.Error(err))
		summary.Add("errors", 1)
		return
	}
	resp.Usage.LogCost(seedModel, "seed-ranking")

	ranked, err := parseRankedSeeds(anthropic.ExtractText(resp))
	if err != nil {
		log.Error("seed ranking response unusable", zap.Error(err))
		summary.Add("errors", 1)
		return
	}

	for i, seed := range ranked {
		fields := []zap.Field{
			zap.Int("rank", i+1),
			zap.String("name", seed.Name),
			zap.String("reasoning", seed.Reasoning),
		}
		if c, ok := byID[seed.ContactID]; ok && c.Has(model.FieldLinkedInURL) {
			fields = append(fields, zap.String("linkedin", c.Get(model.FieldLinkedInURL)))
		}
		log.Info("seed contact", fields...)
	}
	summary["seeds"] = len(ranked)
}

// parseRankedSeeds extracts the JSON array from a ranking reply that may be
// wrapped in prose or code fences.
func parseRankedSeeds(text string) ([]rankedSeed, error) {
	text = anthropic.CleanJSON(text)
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, eris.New("sponsors: no JSON array in ranking reply")
	}
	var ranked []rankedSeed
	if err := json.Unmarshal([]byte(text[start:end+1]), &ranked); err != nil {
		return nil, eris.Wrap(err, "sponsors: parse ranking reply")
	}
	return ranked, nil
}

// scoreContacts scores every contact at the matched sponsor companies
// against the ICP rubric and writes back the classified industry for
// contacts scoring at or above the keep threshold.
func (s *Sponsors) scoreContacts(ctx context.Context, log *zap.Logger, matched []matchedSponsor, summary Summary) {
	if s.claude == nil {
		log.Warn("anthropic client not configured, skipping contact scoring")
		return
	}

	for _, m := range matched {
		contacts, err := s.companyContacts(ctx, m.companyID)
		if err != nil {
			log.Error("fetch company contacts failed",
				zap.String("company", m.sponsor.Name), zap.Error(err))
			summary.Add("errors", 1)
			continue
		}

		for _, c := range contacts {
			result, err := s.scoreContact(ctx, c, m.sponsor.Name)
			if err != nil {
				log.Error("contact scoring failed",
					zap.String("contact", c.FullName()), zap.Error(err))
				summary.Add("errors", 1)
				continue
			}
			summary.Add("scored", 1)
			log.Info("scored contact",
				zap.String("contact", c.FullName()),
				zap.Int("score", result.Score),
				zap.String("segment", result.Segment),
				zap.String("reason", result.Reason),
			)

			if result.Score < icpKeepScore || result.Industry == "" {
				continue
			}
			if !industry.IsEnum(result.Industry) {
				log.Warn("scoring returned invalid industry enum",
					zap.String("contact", c.FullName()), zap.String("enum", result.Industry))
				continue
			}
			if s.cfg.DryRun {
				log.Info("dry-run: would update contact industry",
					zap.String("contact", c.FullName()), zap.String("industry", result.Industry))
				continue
			}
			if err := s.hub.Update(ctx, hubspot.ObjectTypeContacts, c.ID,
				map[string]string{model.FieldIndustry: result.Industry}); err != nil {
				log.Error("update contact industry failed",
					zap.String("contact", c.FullName()), zap.Error(err))
				summary.Add("errors", 1)
			}
		}
	}
}

func (s *Sponsors) scoreContact(ctx context.Context, c model.Record, companyName string) (*icpResult, error) {
	prompt := fmt.Sprintf(icpPrompt,
		c.FullName(), c.Get(model.FieldJobTitle), companyName,
		c.Get(model.FieldIndustry), c.Get(model.FieldCity), "")

	resp, err := s.claude.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     seedModel,
		MaxTokens: 256,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(seedModel, "icp-scoring")

	var result icpResult
	if err := json.Unmarshal([]byte(anthropic.CleanJSON(anthropic.ExtractText(resp))), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
