package enrich

import (
	"strings"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// IndustryMapper maps a raw industry string to a HubSpot enum value, or ""
// when no mapping exists.
type IndustryMapper func(raw string) string

// ComputeUpdates builds the property patch that fills a contact's empty
// fields from the master list profile and the scraper profile. Master list
// values take precedence; scraper values fill whatever remains. Existing
// contact values are never overwritten.
func ComputeUpdates(contact model.Record, master *model.MasterProfile, scraper *model.ScraperProfile, mapIndustry IndustryMapper) map[string]string {
	updates := make(map[string]string)

	set := func(field, value string) {
		value = strings.TrimSpace(value)
		if value == "" || contact.Has(field) {
			return
		}
		if _, taken := updates[field]; taken {
			return
		}
		updates[field] = value
	}

	if master != nil {
		set(model.FieldJobTitle, master.JobTitle)
		set(model.FieldCompany, master.Company)
		if raw := master.RawIndustry(); raw != "" {
			set(model.FieldIndustry, mapIndustry(raw))
		}
		set(model.FieldLinkedInURL, master.DefaultProfileURL)

		if loc := master.BestLocationOrLocation(); loc != "" {
			parsed := ParseLocation(loc)
			set(model.FieldState, parsed.State)
			set(model.FieldCountry, parsed.Country)
			set(model.FieldCity, parsed.City)
		}
	}

	if scraper != nil {
		set(model.FieldEmail, scraper.ProfessionalEmail)
		set(model.FieldJobTitle, scraper.JobTitle)
		set(model.FieldCompany, scraper.CompanyName)
		if raw := strings.TrimSpace(scraper.CompanyIndustry); raw != "" {
			set(model.FieldIndustry, mapIndustry(raw))
		}
		set(model.FieldLinkedInURL, scraper.ProfileURL)

		if loc := strings.TrimSpace(scraper.Location); loc != "" {
			parsed := ParseLocation(loc)
			set(model.FieldState, parsed.State)
			set(model.FieldCountry, parsed.Country)
		}

		set(model.FieldHeadline, scraper.Headline)
		set(model.FieldSchoolName, scraper.SchoolName)
		set(model.FieldSchoolDegree, scraper.SchoolDegree)
		set(model.FieldPrevCompany, scraper.PrevCompany)
		set(model.FieldPrevPosition, scraper.PrevJobTitle)
		set(model.FieldJobLocation, scraper.JobLocation)
		set(model.FieldCompanySlug, scraper.CompanySlug)
	}

	return updates
}
