// Package sponsor extracts sponsor companies from event sponsor pages and
// builds the LinkedIn search URLs used for outreach prospecting.
package sponsor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Sponsor is one company extracted from an event sponsor page.
type Sponsor struct {
	Name      string
	Tier      string
	SourceURL string
	Domain    string
}

// tierWords are matched against heading text to track the current sponsor
// tier while walking the page.
var tierWords = []string{"platinum", "diamond", "gold", "silver", "bronze", "host", "title", "friend"}

// skippedAlts are generic img alt texts that are not company names.
var skippedAlts = map[string]struct{}{
	"logo": {}, "sponsor": {}, "image": {}, "photo": {},
}

// Parse extracts sponsors from sponsor page HTML. Sponsor logos are img tags
// whose alt text names the company; the nearest preceding heading that names
// a tier sets the tier for everything after it.
func Parse(r io.Reader) ([]Sponsor, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "sponsor: parse page")
	}

	var sponsors []Sponsor
	tier := "Unknown"
	seen := make(map[string]struct{})

	doc.Find("h1, h2, h3, h4, h5, img").Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) != "img" {
			heading := strings.ToLower(strings.TrimSpace(sel.Text()))
			for _, w := range tierWords {
				if strings.Contains(heading, w) {
					tier = strings.ToUpper(w[:1]) + w[1:]
					break
				}
			}
			return
		}

		alt := strings.TrimSpace(sel.AttrOr("alt", ""))
		if len(alt) <= 2 {
			return
		}
		if _, skip := skippedAlts[strings.ToLower(alt)]; skip {
			return
		}

		nameKey := strings.ToLower(alt)
		if _, dup := seen[nameKey]; dup {
			return
		}
		seen[nameKey] = struct{}{}

		href := sel.Closest("a").AttrOr("href", "")
		sponsors = append(sponsors, Sponsor{
			Name:      alt,
			Tier:      tier,
			SourceURL: href,
			Domain:    NormalizeDomain(href),
		})
	})

	return sponsors, nil
}

// Scrape fetches the sponsor page and extracts its sponsors.
func Scrape(ctx context.Context, pageURL string) ([]Sponsor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sponsor: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "sponsor: fetch %s", pageURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("sponsor: fetch %s: status %d", pageURL, resp.StatusCode)
	}

	sponsors, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	zap.L().Info("scraped sponsor page", zap.String("url", pageURL), zap.Int("sponsors", len(sponsors)))
	return sponsors, nil
}

var (
	schemeRe    = regexp.MustCompile(`^https?://`)
	companyIDRe = regexp.MustCompile(`/company/(\d+)`)
)

// NormalizeDomain extracts a clean domain from a URL or bare domain string.
func NormalizeDomain(urlOrDomain string) string {
	d := strings.ToLower(strings.TrimSpace(urlOrDomain))
	if d == "" {
		return ""
	}
	d = schemeRe.ReplaceAllString(d, "")
	d = strings.TrimPrefix(d, "www.")
	if idx := strings.IndexByte(d, '/'); idx >= 0 {
		d = d[:idx]
	}
	return d
}

// LinkedInCompanyID extracts the numeric company ID from a LinkedIn company
// URL, or "" when the URL uses a vanity slug.
func LinkedInCompanyID(linkedinURL string) string {
	m := companyIDRe.FindStringSubmatch(linkedinURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// SalesNavURL builds a Sales Navigator search for 2nd-degree connections at
// the given LinkedIn company.
func SalesNavURL(companyID string) string {
	if companyID == "" {
		return ""
	}
	return fmt.Sprintf(
		"https://www.linkedin.com/sales/search/people?"+
			"filters=List("+
			"(type:CURRENT_COMPANY,values:List((id:%s,selectionType:INCLUDED))),"+
			"(type:NETWORK,values:List((id:S,selectionType:INCLUDED)))"+
			")",
		companyID,
	)
}
