// Package scraperfile reads profile scraper result exports (CSV or XLSX)
// into scraper profiles keyed by the export's column headers.
package scraperfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// Column headers in the profile scraper export.
const (
	colFirstName    = "firstName"
	colLastName     = "lastName"
	colProfileURL   = "linkedinProfileUrl"
	colEmail        = "professionalEmail"
	colJobTitle     = "linkedinJobTitle"
	colCompanyName  = "companyName"
	colIndustry     = "companyIndustry"
	colLocation     = "location"
	colHeadline     = "linkedinHeadline"
	colSchoolName   = "linkedinSchoolName"
	colSchoolDegree = "linkedinSchoolDegree"
	colPrevCompany  = "previousCompanyName"
	colPrevJobTitle = "linkedinPreviousJobTitle"
	colJobLocation  = "linkedinJobLocation"
	colCompanySlug  = "linkedinCompanySlug"
)

// Load reads a scraper export, dispatching on the file extension. A missing
// file is not an error: enrichment simply runs without scraper data.
func Load(path string) ([]model.ScraperProfile, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		zap.L().Warn("scraper export not found", zap.String("path", path))
		return nil, nil
	}

	var profiles []model.ScraperProfile
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		profiles, err = ReadXLSX(path)
	default:
		profiles, err = readCSVFile(path)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("loaded scraper export", zap.String("path", path), zap.Int("profiles", len(profiles)))
	return profiles, nil
}

// ReadCSV parses scraper results from CSV data. The first row must be the
// header row.
func ReadCSV(r io.Reader) ([]model.ScraperProfile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "scraperfile: parse csv")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return fromRows(rows[0], rows[1:]), nil
}

func readCSVFile(path string) ([]model.ScraperProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scraperfile: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// ReadXLSX parses scraper results from the first sheet of an XLSX export.
func ReadXLSX(path string) ([]model.ScraperProfile, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scraperfile: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("scraperfile: %s has no sheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return fromRows(rows[0], rows[1:]), nil
}

// fromRows maps header-indexed row values onto scraper profiles. Rows with
// no name and no profile URL are skipped.
func fromRows(header []string, rows [][]string) []model.ScraperProfile {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var profiles []model.ScraperProfile
	for _, row := range rows {
		p := model.ScraperProfile{
			FirstName:         get(row, colFirstName),
			LastName:          get(row, colLastName),
			ProfileURL:        get(row, colProfileURL),
			ProfessionalEmail: get(row, colEmail),
			JobTitle:          get(row, colJobTitle),
			CompanyName:       get(row, colCompanyName),
			CompanyIndustry:   get(row, colIndustry),
			Location:          get(row, colLocation),
			Headline:          get(row, colHeadline),
			SchoolName:        get(row, colSchoolName),
			SchoolDegree:      get(row, colSchoolDegree),
			PrevCompany:       get(row, colPrevCompany),
			PrevJobTitle:      get(row, colPrevJobTitle),
			JobLocation:       get(row, colJobLocation),
			CompanySlug:       get(row, colCompanySlug),
		}
		if p.FullName() == "" && p.ProfileURL == "" {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}
