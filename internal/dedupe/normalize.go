// Package dedupe implements the entity-resolution core: identity
// normalization, multi-key matching, union-find grouping, keeper selection,
// and gap-fill merging.
package dedupe

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// professionalSuffixes lists credential and generational tokens stripped from
// person names during normalization. Matching is word-boundary bound: a name
// ending in "msba" is never corrupted by the "mba" rule.
var professionalSuffixes = []string{
	"mba", "phd", "md", "rn", "bsn", "cptc", "lssbb", "mha", "fache",
	"pmp", "cmrp", "ctbs", "dlm", "ascp", "cm", "ms", "cls", "mt", "mls",
	"sbb", "rrt", "lssgb", "bs", "jr", "sr", "iii", "ii", "do", "ma",
	"mpa", "msscm", "cscp", "cpm", "csp", "cpim", "lcsw", "cltd",
	"ciiscm", "msyl", "gms-t", "crp", "cftco",
}

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	trademarkRe     = regexp.MustCompile(`[®™]`)
	namePunctRe     = regexp.MustCompile(`[.,]`)
	urlSchemeRe     = regexp.MustCompile(`^https?://`)
)

// Normalizer converts raw display names into canonical matching keys. The
// zero suffix set is never useful; construct via NewNormalizer.
type Normalizer struct {
	suffixRe *regexp.Regexp
}

// NewNormalizer builds a Normalizer stripping the standard professional
// suffix dictionary plus any extra tokens (lowercase, regex-quoted).
func NewNormalizer(extra ...string) *Normalizer {
	tokens := make([]string, 0, len(professionalSuffixes)+len(extra))
	for _, t := range professionalSuffixes {
		tokens = append(tokens, regexp.QuoteMeta(t))
	}
	for _, t := range extra {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			tokens = append(tokens, regexp.QuoteMeta(t))
		}
	}
	// Suffix tokens only match as whole words, each preceded by commas or
	// spaces. The repeated group strips chained credentials ("..., MBA, PhD")
	// in a single pass; trailing separators are swallowed at the end.
	alt := strings.Join(tokens, "|")
	return &Normalizer{
		suffixRe: regexp.MustCompile(`(?:[,\s]+\b(?:` + alt + `)\b)+[,\s]*`),
	}
}

var defaultNormalizer = NewNormalizer()

// foldDiacritics decomposes accented characters and drops the combining
// marks, so "José" and "Jose" produce the same key.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name converts a raw display name into its canonical matching key:
// lowercase, parentheticals and trademark glyphs removed, periods and commas
// replaced with spaces, diacritics folded, professional suffixes stripped at
// word boundaries, whitespace collapsed. Applying Name to its own output is
// a no-op.
func (n *Normalizer) Name(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = parentheticalRe.ReplaceAllString(s, "")
	s = trademarkRe.ReplaceAllString(s, "")
	s = namePunctRe.ReplaceAllString(s, " ")
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	s = n.suffixRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeName normalizes a raw name with the standard suffix dictionary.
func NormalizeName(raw string) string {
	return defaultNormalizer.Name(raw)
}

// NormalizeURL converts a raw profile URL into its canonical matching key:
// lowercase, scheme and "www." stripped, query string and fragment dropped,
// trailing slashes trimmed. Empty keys never match.
func NormalizeURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return ""
	}
	u = urlSchemeRe.ReplaceAllString(u, "")
	u = strings.TrimPrefix(u, "www.")
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}
