package sponsor

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// LoadCSV reads a sponsor list from a CSV with a header row. Recognized
// columns are name, tier and website (or url); extra columns are ignored.
func LoadCSV(path string) ([]Sponsor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sponsor: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "sponsor: read %s", path)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var sponsors []Sponsor
	for _, row := range rows[1:] {
		name := get(row, "name")
		if name == "" {
			continue
		}
		site := get(row, "website")
		if site == "" {
			site = get(row, "url")
		}
		tier := get(row, "tier")
		if tier == "" {
			tier = "Unknown"
		}
		sponsors = append(sponsors, Sponsor{
			Name:      name,
			Tier:      tier,
			SourceURL: site,
			Domain:    NormalizeDomain(site),
		})
	}
	return sponsors, nil
}
