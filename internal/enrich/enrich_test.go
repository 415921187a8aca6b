package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrt-labs/crm-sync-cli/internal/dedupe"
	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// identityIndustry passes known enum-style values through and drops the rest.
func identityIndustry(raw string) string {
	switch raw {
	case "Hospital & Health Care":
		return "HOSPITAL_HEALTH_CARE"
	case "BANKING":
		return "BANKING"
	}
	return ""
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		input string
		want  Location
	}{
		{"", Location{}},
		{"Tampa", Location{City: "Tampa"}},
		{"Tampa, Florida", Location{City: "Tampa", State: "Florida"}},
		{"Tampa, Florida, United States", Location{City: "Tampa", State: "Florida", Country: "United States"}},
		{"Greater Tampa Bay Area, Tampa, Florida, United States", Location{City: "Greater Tampa Bay Area", State: "Florida", Country: "United States"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLocation(tt.input), "input %q", tt.input)
	}
}

func TestBuildMasterLookup_FirstWins(t *testing.T) {
	norm := dedupe.NewNormalizer()
	lookup := BuildMasterLookup([]model.MasterProfile{
		{FullName: "Jane Doe", Company: "First"},
		{FullName: "Jane Doe, MBA", Company: "Second"}, // same normalized name
		{FullName: "Bob Roe", DefaultProfileURL: "https://www.linkedin.com/in/bob/"},
	}, norm)

	p, ok := lookup.ByName("jane doe")
	require.True(t, ok)
	assert.Equal(t, "First", p.Company)

	p, ok = lookup.ByURL(dedupe.NormalizeURL("https://www.linkedin.com/in/bob"))
	require.True(t, ok)
	assert.Equal(t, "Bob Roe", p.FullName)
}

func TestScraperLookup_MatchFallbacks(t *testing.T) {
	norm := dedupe.NewNormalizer()
	lookup := BuildScraperLookup([]model.ScraperProfile{
		{FirstName: "Jane", LastName: "Doe", ProfileURL: "https://linkedin.com/in/jdoe"},
	}, norm)

	// by name
	_, ok := lookup.Match("jane doe", model.Record{}, nil)
	assert.True(t, ok)

	// by contact URL when the name differs
	contact := model.Record{Properties: map[string]string{
		model.FieldLinkedInURL: "HTTPS://linkedin.com/in/jdoe/",
	}}
	_, ok = lookup.Match("janet doe", contact, nil)
	assert.True(t, ok)

	// by master URL as last resort
	master := &model.MasterProfile{DefaultProfileURL: "https://linkedin.com/in/jdoe?trk=x"}
	_, ok = lookup.Match("janet doe", model.Record{}, master)
	assert.True(t, ok)

	// no match at all
	_, ok = lookup.Match("nobody", model.Record{}, nil)
	assert.False(t, ok)
}

func TestComputeUpdates_MasterBeforeScraper(t *testing.T) {
	contact := model.Record{ID: "1", Properties: map[string]string{
		model.FieldCompany: "Existing Co",
	}}
	master := &model.MasterProfile{
		JobTitle:          "VP of Ops",
		Company:           "Master Co",
		AdjIndustry:       "Hospital & Health Care",
		DefaultProfileURL: "https://linkedin.com/in/jane",
		BestLocation:      "Tampa, Florida, United States",
	}
	scraper := &model.ScraperProfile{
		ProfessionalEmail: "jane@acme.com",
		JobTitle:          "Scraper Title",
		Headline:          "Ops leader",
	}

	updates := ComputeUpdates(contact, master, scraper, identityIndustry)

	assert.Equal(t, "VP of Ops", updates[model.FieldJobTitle]) // master wins over scraper
	assert.NotContains(t, updates, model.FieldCompany)         // never overwrite
	assert.Equal(t, "HOSPITAL_HEALTH_CARE", updates[model.FieldIndustry])
	assert.Equal(t, "https://linkedin.com/in/jane", updates[model.FieldLinkedInURL])
	assert.Equal(t, "Tampa", updates[model.FieldCity])
	assert.Equal(t, "Florida", updates[model.FieldState])
	assert.Equal(t, "United States", updates[model.FieldCountry])
	assert.Equal(t, "jane@acme.com", updates[model.FieldEmail])
	assert.Equal(t, "Ops leader", updates[model.FieldHeadline])
}

func TestComputeUpdates_UnmappableIndustryDropped(t *testing.T) {
	contact := model.Record{ID: "1", Properties: map[string]string{}}
	master := &model.MasterProfile{Industry: "Something Unmappable"}

	updates := ComputeUpdates(contact, master, nil, identityIndustry)
	assert.NotContains(t, updates, model.FieldIndustry)
}

func TestComputeUpdates_NoSources(t *testing.T) {
	contact := model.Record{ID: "1"}
	assert.Empty(t, ComputeUpdates(contact, nil, nil, identityIndustry))
}

func TestNewContactProperties(t *testing.T) {
	master := model.MasterProfile{
		FullName:          "Jane Q Doe",
		JobTitle:          "VP",
		Company:           "Acme",
		Industry:          "Hospital & Health Care",
		Location:          "Tampa, Florida, United States",
		DefaultProfileURL: "https://linkedin.com/in/jane",
	}
	scraper := &model.ScraperProfile{
		ProfessionalEmail: "jane@acme.com",
		SchoolName:        "USF",
	}

	props := NewContactProperties(master, scraper, identityIndustry)

	assert.Equal(t, "Jane", props[model.FieldFirstName])
	assert.Equal(t, "Q Doe", props[model.FieldLastName])
	assert.Equal(t, model.LeadStatusConnected, props[model.FieldLeadStatus])
	assert.Equal(t, "HOSPITAL_HEALTH_CARE", props[model.FieldIndustry])
	assert.Equal(t, "jane@acme.com", props[model.FieldEmail])
	assert.Equal(t, "USF", props[model.FieldSchoolName])
	// empty values dropped
	assert.NotContains(t, props, model.FieldWebsite)
	assert.NotContains(t, props, model.FieldPhone)
}

func TestNewContactProperties_CityFallsBackToRawLocation(t *testing.T) {
	master := model.MasterProfile{FullName: "Solo Name", Location: "Tampa"}
	props := NewContactProperties(master, nil, identityIndustry)
	assert.Equal(t, "Tampa", props[model.FieldCity])
	assert.Equal(t, "Solo", props[model.FieldFirstName])
	assert.Equal(t, "Name", props[model.FieldLastName])
}

func TestScraperContactProperties(t *testing.T) {
	scraper := model.ScraperProfile{
		FirstName:       "Bob",
		LastName:        "Roe",
		ProfileURL:      "https://linkedin.com/in/bob",
		CompanyIndustry: "BANKING",
		Location:        "Miami, Florida",
		CompanySlug:     "acme-co",
	}

	props := ScraperContactProperties(scraper, identityIndustry)

	assert.Equal(t, "Bob", props[model.FieldFirstName])
	assert.Equal(t, model.LeadStatusConnected, props[model.FieldLeadStatus])
	assert.Equal(t, "BANKING", props[model.FieldIndustry])
	assert.Equal(t, "Miami", props[model.FieldCity])
	assert.Equal(t, "Florida", props[model.FieldState])
	assert.Equal(t, "acme-co", props[model.FieldCompanySlug])
	assert.NotContains(t, props, model.FieldEmail)
	assert.NotContains(t, props, model.FieldCountry)
}
