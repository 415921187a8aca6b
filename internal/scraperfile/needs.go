package scraperfile

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// NeedsScraperEntry is one contact queued for the profile scraper.
type NeedsScraperEntry struct {
	ProfileURL string
	FullName   string
	HubSpotID  string
}

var needsHeader = []string{"linkedInProfileUrl", "fullName", "hubspotId"}

// WriteNeedsCSV writes the scraper queue file consumed by the batch
// launcher. Entries without a profile URL are dropped.
func WriteNeedsCSV(path string, entries []NeedsScraperEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "scraperfile: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(needsHeader); err != nil {
		return eris.Wrap(err, "scraperfile: write header")
	}
	for _, e := range entries {
		if strings.TrimSpace(e.ProfileURL) == "" {
			continue
		}
		if err := w.Write([]string{e.ProfileURL, e.FullName, e.HubSpotID}); err != nil {
			return eris.Wrap(err, "scraperfile: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "scraperfile: flush %s", path)
	}
	return nil
}

// ReadNeedsCSV loads the scraper queue file.
func ReadNeedsCSV(path string) ([]NeedsScraperEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scraperfile: open %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "scraperfile: parse %s", path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []NeedsScraperEntry
	for _, row := range rows[1:] {
		e := NeedsScraperEntry{
			ProfileURL: get(row, "linkedInProfileUrl"),
			FullName:   get(row, "fullName"),
			HubSpotID:  get(row, "hubspotId"),
		}
		if e.ProfileURL == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
