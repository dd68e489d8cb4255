package normalize

import (
	"strings"

	"github.com/hyperjump/docintel/internal/corpus"
)

// stripTitles removes a leading honorific/title prefix from a PERSON
// mention for its canonical form; the original text is retained by the
// caller as an alias.
func stripTitles(text string, prefixes []string) string {
	trimmed := strings.TrimSpace(text)
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			rest := strings.TrimSpace(trimmed[len(p):])
			if rest != "" {
				return rest
			}
		}
	}
	return trimmed
}

// expandOrgAcronym expands a known acronym to its full form via the corpus
// org-acronym table; unknown mentions are returned unchanged so the caller
// can fall back to "keep the longest form observed" at dedup time.
func expandOrgAcronym(text string, acronyms map[string]string) string {
	key := strings.ToUpper(strings.TrimSpace(text))
	if full, ok := acronyms[key]; ok {
		return full
	}
	return text
}

// gpeMetadata attaches ISO-3166 alpha-2/alpha-3 codes when the canon tables
// recognize the mention as a country alias.
func gpeMetadata(text string, tables corpus.CanonTables) (alpha2, alpha3 string, ok bool) {
	country, found := tables.CountryAliases[strings.ToLower(strings.TrimSpace(text))]
	if !found {
		return "", "", false
	}
	return country.Alpha2, country.Alpha3, true
}
