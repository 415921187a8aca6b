package enrich

import (
	"strings"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// NewContactProperties builds the property set for a contact created from a
// master list profile, enriched with scraper data when available. Empty
// values are dropped from the payload.
func NewContactProperties(master model.MasterProfile, scraper *model.ScraperProfile, mapIndustry IndustryMapper) map[string]string {
	firstName := strings.TrimSpace(master.FirstName)
	lastName := strings.TrimSpace(master.LastName)
	if firstName == "" {
		if full := strings.TrimSpace(master.FullName); full != "" {
			firstName, lastName, _ = strings.Cut(full, " ")
		}
	}

	location := master.BestLocationOrLocation()
	parsed := ParseLocation(location)
	city := parsed.City
	if city == "" {
		city = location
	}

	props := map[string]string{
		model.FieldFirstName:   firstName,
		model.FieldLastName:    lastName,
		model.FieldJobTitle:    strings.TrimSpace(master.JobTitle),
		model.FieldCompany:     strings.TrimSpace(master.Company),
		model.FieldIndustry:    mapIndustry(master.RawIndustry()),
		model.FieldCity:        city,
		model.FieldState:       parsed.State,
		model.FieldCountry:     parsed.Country,
		model.FieldLeadStatus:  model.LeadStatusConnected,
		model.FieldLinkedInURL: strings.TrimSpace(master.DefaultProfileURL),
	}

	if scraper != nil {
		props[model.FieldEmail] = strings.TrimSpace(scraper.ProfessionalEmail)
		addScraperExtras(props, *scraper)
	}

	return dropEmpty(props)
}

// ScraperContactProperties builds the property set for a contact created
// from a scraper result alone (no master list match).
func ScraperContactProperties(scraper model.ScraperProfile, mapIndustry IndustryMapper) map[string]string {
	parsed := ParseLocation(scraper.Location)

	props := map[string]string{
		model.FieldFirstName:   strings.TrimSpace(scraper.FirstName),
		model.FieldLastName:    strings.TrimSpace(scraper.LastName),
		model.FieldLeadStatus:  model.LeadStatusConnected,
		model.FieldLinkedInURL: strings.TrimSpace(scraper.ProfileURL),
		model.FieldEmail:       strings.TrimSpace(scraper.ProfessionalEmail),
		model.FieldJobTitle:    strings.TrimSpace(scraper.JobTitle),
		model.FieldCompany:     strings.TrimSpace(scraper.CompanyName),
		model.FieldIndustry:    mapIndustry(strings.TrimSpace(scraper.CompanyIndustry)),
		model.FieldCity:        parsed.City,
		model.FieldState:       parsed.State,
		model.FieldCountry:     parsed.Country,
	}
	addScraperExtras(props, scraper)

	return dropEmpty(props)
}

func addScraperExtras(props map[string]string, scraper model.ScraperProfile) {
	props[model.FieldHeadline] = strings.TrimSpace(scraper.Headline)
	props[model.FieldSchoolName] = strings.TrimSpace(scraper.SchoolName)
	props[model.FieldSchoolDegree] = strings.TrimSpace(scraper.SchoolDegree)
	props[model.FieldPrevCompany] = strings.TrimSpace(scraper.PrevCompany)
	props[model.FieldPrevPosition] = strings.TrimSpace(scraper.PrevJobTitle)
	props[model.FieldJobLocation] = strings.TrimSpace(scraper.JobLocation)
	props[model.FieldCompanySlug] = strings.TrimSpace(scraper.CompanySlug)
}

func dropEmpty(props map[string]string) map[string]string {
	for k, v := range props {
		if strings.TrimSpace(v) == "" {
			delete(props, k)
		}
	}
	return props
}
