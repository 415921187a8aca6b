package scraperfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

const sampleCSV = `firstName,lastName,linkedinProfileUrl,professionalEmail,linkedinJobTitle,companyName,companyIndustry,location
Jane,Doe,https://linkedin.com/in/jane,jane@acme.com,VP Ops,Acme,Hospital & Health Care,"Tampa, Florida, United States"
Bob,Roe,https://linkedin.com/in/bob,,,,,
,,,,,,,
`

func TestReadCSV(t *testing.T) {
	profiles, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "Jane Doe", profiles[0].FullName())
	assert.Equal(t, "jane@acme.com", profiles[0].ProfessionalEmail)
	assert.Equal(t, "Hospital & Health Care", profiles[0].CompanyIndustry)
	assert.Equal(t, "Tampa, Florida, United States", profiles[0].Location)

	assert.Equal(t, "Bob Roe", profiles[1].FullName())
	assert.Empty(t, profiles[1].ProfessionalEmail)
}

func TestReadCSV_Empty(t *testing.T) {
	profiles, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	profiles, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestLoad_EmptyPath(t *testing.T) {
	profiles, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("results")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"firstName", "lastName", "linkedinProfileUrl", "companyName"} {
		header.AddCell().SetString(h)
	}
	row := sheet.AddRow()
	for _, v := range []string{"Jane", "Doe", "https://linkedin.com/in/jane", "Acme"} {
		row.AddCell().SetString(v)
	}
	require.NoError(t, f.Save(path))

	profiles, err := ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Jane Doe", profiles[0].FullName())
	assert.Equal(t, "Acme", profiles[0].CompanyName)
}

func TestNeedsCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper-urls-needed.csv")
	entries := []NeedsScraperEntry{
		{ProfileURL: "https://linkedin.com/in/a", FullName: "A One", HubSpotID: "1"},
		{ProfileURL: "", FullName: "No URL", HubSpotID: "2"}, // dropped
		{ProfileURL: "https://linkedin.com/in/b", FullName: "B Two", HubSpotID: "new"},
	}

	require.NoError(t, WriteNeedsCSV(path, entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "linkedInProfileUrl,fullName,hubspotId\n"))

	loaded, err := ReadNeedsCSV(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "A One", loaded[0].FullName)
	assert.Equal(t, "new", loaded[1].HubSpotID)
}
