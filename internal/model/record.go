// Package model defines the record types shared across the sync pipelines.
package model

import (
	"strconv"
	"strings"
)

// Standard HubSpot contact property names used throughout the pipelines.
const (
	FieldFirstName      = "firstname"
	FieldLastName       = "lastname"
	FieldEmail          = "email"
	FieldJobTitle       = "jobtitle"
	FieldCompany        = "company"
	FieldIndustry       = "industry"
	FieldCity           = "city"
	FieldState          = "state"
	FieldCountry        = "country"
	FieldLinkedInURL    = "hs_linkedin_url"
	FieldLeadStatus     = "hs_lead_status"
	FieldPhone          = "phone"
	FieldWebsite        = "website"
	FieldHeadline       = "linkedin_headline"
	FieldSchoolName     = "school_name"
	FieldSchoolDegree   = "school_degree"
	FieldPrevCompany    = "previous_company_name"
	FieldPrevPosition   = "previous_company_position"
	FieldJobLocation    = "job_location"
	FieldCompanySlug    = "linkedin_company_slug"
	FieldConnections    = "chrt_linkedin_connections"
	FieldSegment        = "chrt_segment"
	LeadStatusConnected = "CONNECTED"
)

// ContactFields is the fixed set of tracked contact properties. Completeness
// scoring and gap-fill merging operate over exactly this list.
var ContactFields = []string{
	FieldEmail, FieldJobTitle, FieldCompany, FieldIndustry,
	FieldCity, FieldState, FieldCountry,
	FieldLinkedInURL, FieldPhone, FieldWebsite,
	FieldHeadline, FieldSchoolName, FieldSchoolDegree,
	FieldPrevCompany, FieldPrevPosition, FieldJobLocation, FieldCompanySlug,
}

var contactFieldSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ContactFields))
	for _, f := range ContactFields {
		m[f] = struct{}{}
	}
	return m
}()

// IsContactField reports whether name is one of the tracked contact properties.
func IsContactField(name string) bool {
	_, ok := contactFieldSet[name]
	return ok
}

// Record is a read-only snapshot of a CRM object. Properties holds the raw
// string values as returned by the API; a value that is missing or blank
// after trimming is treated as absent everywhere in the pipelines.
type Record struct {
	ID         string
	Properties map[string]string
}

// Get returns the trimmed value of a property, or "" if absent.
func (r Record) Get(name string) string {
	return strings.TrimSpace(r.Properties[name])
}

// Has reports whether the property has a non-blank value.
func (r Record) Has(name string) bool {
	return r.Get(name) != ""
}

// FullName joins the first and last name properties.
func (r Record) FullName() string {
	return strings.TrimSpace(r.Get(FieldFirstName) + " " + r.Get(FieldLastName))
}

// NumericID parses the record ID as an integer. HubSpot object IDs are
// numeric strings; records with unparseable IDs sort before all numeric ones.
func (r Record) NumericID() (int64, bool) {
	n, err := strconv.ParseInt(r.ID, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LessID orders record IDs ascending, numerically when both parse and
// lexically otherwise. Used to fix a deterministic iteration order for
// grouping and merging.
func LessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
