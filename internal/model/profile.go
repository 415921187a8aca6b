package model

import "strings"

// MasterProfile is one row of the spreadsheet-backed master list, as served
// by the audit Apps Script endpoint.
type MasterProfile struct {
	FullName          string `json:"fullName"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	JobTitle          string `json:"jobTitle"`
	Company           string `json:"company"`
	Industry          string `json:"industry"`
	AdjIndustry       string `json:"adjIndustry"`
	Location          string `json:"location"`
	BestLocation      string `json:"bestLocation"`
	DefaultProfileURL string `json:"defaultProfileUrl"`
}

// RawIndustry returns the manually adjusted industry when present, falling
// back to the scraped one.
func (p MasterProfile) RawIndustry() string {
	if v := strings.TrimSpace(p.AdjIndustry); v != "" {
		return v
	}
	return strings.TrimSpace(p.Industry)
}

// BestLocationOrLocation prefers the curated location column.
func (p MasterProfile) BestLocationOrLocation() string {
	if v := strings.TrimSpace(p.BestLocation); v != "" {
		return v
	}
	return strings.TrimSpace(p.Location)
}

// ScraperProfile is one result row from the profile-scraping service export
// (CSV or XLSX). Field names follow the export's column headers.
type ScraperProfile struct {
	FirstName         string
	LastName          string
	ProfileURL        string
	ProfessionalEmail string
	JobTitle          string
	CompanyName       string
	CompanyIndustry   string
	Location          string
	Headline          string
	SchoolName        string
	SchoolDegree      string
	PrevCompany       string
	PrevJobTitle      string
	JobLocation       string
	CompanySlug       string
}

// FullName joins the first and last name columns.
func (p ScraperProfile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}
