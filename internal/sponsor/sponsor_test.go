package sponsor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sponsorPage = `
<html><body>
<h2>Platinum Sponsors</h2>
<div>
  <a href="https://acme-logistics.com/about"><img src="/acme.png" alt="Acme Logistics"></a>
  <a href="https://www.globex.com"><img src="/globex.png" alt="Globex"></a>
</div>
<h3>Gold Sponsors</h3>
<a href="https://initech.io/"><img src="/initech.png" alt="Initech"></a>
<img src="/dup.png" alt="Acme Logistics">
<img src="/generic.png" alt="logo">
<img src="/tiny.png" alt="ab">
</body></html>`

func TestParse(t *testing.T) {
	sponsors, err := Parse(strings.NewReader(sponsorPage))
	require.NoError(t, err)
	require.Len(t, sponsors, 3)

	assert.Equal(t, "Acme Logistics", sponsors[0].Name)
	assert.Equal(t, "Platinum", sponsors[0].Tier)
	assert.Equal(t, "https://acme-logistics.com/about", sponsors[0].SourceURL)
	assert.Equal(t, "acme-logistics.com", sponsors[0].Domain)

	assert.Equal(t, "Globex", sponsors[1].Name)
	assert.Equal(t, "globex.com", sponsors[1].Domain)

	assert.Equal(t, "Initech", sponsors[2].Name)
	assert.Equal(t, "Gold", sponsors[2].Tier)
}

func TestParse_TierBeforeFirstHeadingIsUnknown(t *testing.T) {
	html := `<img alt="Early Bird Co" src="/x.png"><h2>Silver</h2><img alt="Late Co" src="/y.png">`
	sponsors, err := Parse(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, sponsors, 2)
	assert.Equal(t, "Unknown", sponsors[0].Tier)
	assert.Equal(t, "Silver", sponsors[1].Tier)
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"https://www.Acme.com/path?q=1", "acme.com"},
		{"http://acme.com", "acme.com"},
		{"acme.com/careers", "acme.com"},
		{"WWW.acme.com", "acme.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDomain(tt.in), "input %q", tt.in)
	}
}

func TestLinkedInCompanyID(t *testing.T) {
	assert.Equal(t, "12345", LinkedInCompanyID("https://www.linkedin.com/company/12345/"))
	assert.Equal(t, "", LinkedInCompanyID("https://www.linkedin.com/company/acme-co/"))
	assert.Equal(t, "", LinkedInCompanyID(""))
}

func TestSalesNavURL(t *testing.T) {
	u := SalesNavURL("12345")
	assert.Contains(t, u, "id:12345")
	assert.Contains(t, u, "type:NETWORK")
	assert.Equal(t, "", SalesNavURL(""))
}
