// Package corpus loads the pattern corpus: gazetteers, domain/doc-type
// keyword weights, and canonicalization tables (§6.3, §3 Pattern Corpus).
// Once loaded, a Corpus is immutable and safe for concurrent read access —
// it is built once by Control and shared, read-only, by every worker.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/docintel/internal/models"
)

// GazetteerEntry is one surface form loaded from a gazetteer file.
type GazetteerEntry struct {
	Text        string
	Kind        models.EntityKind
	Subcategory string
}

// CategoryWeight is one category's weighted-keyword record
// (category → {weight, keywords}), per §6.3's keyword-weight file format.
type CategoryWeight struct {
	Weight   float64
	Keywords map[string]float64
}

// Corpus is the fully loaded, immutable pattern corpus.
type Corpus struct {
	Gazetteers     []GazetteerEntry
	DomainWeights  map[string]CategoryWeight
	DocTypeWeights map[string]CategoryWeight
	OrgAcronyms    map[string]string // acronym (upper) -> full expansion
	Tables         CanonTables
}

// manifestFile is the YAML shape of a corpus manifest (§6.3: "a corpus
// manifest enumerates all files; missing files cause init failure with the
// file path in the error").
type manifestFile struct {
	Gazetteers []struct {
		Path string `yaml:"path"`
		Kind string `yaml:"kind"`
	} `yaml:"gazetteers"`
	DomainWeights  []string `yaml:"domain_weights"`
	DocTypeWeights []string `yaml:"doc_type_weights"`
	OrgAcronyms    []string `yaml:"org_acronyms"`
}

// Load reads manifestPath and every file it enumerates, relative to the
// manifest's directory. Returns an error naming the offending file if
// anything is missing or malformed.
func Load(manifestPath string) (*Corpus, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("corpus: read manifest %s: %w", manifestPath, err)
	}
	var mf manifestFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("corpus: parse manifest %s: %w", manifestPath, err)
	}
	dir := filepath.Dir(manifestPath)

	c := &Corpus{
		DomainWeights:  make(map[string]CategoryWeight),
		DocTypeWeights: make(map[string]CategoryWeight),
		OrgAcronyms:    make(map[string]string),
		Tables:         DefaultCanonTables(),
	}

	for _, g := range mf.Gazetteers {
		path := filepath.Join(dir, g.Path)
		entries, err := loadGazetteerFile(path, models.EntityKind(g.Kind))
		if err != nil {
			return nil, err
		}
		c.Gazetteers = append(c.Gazetteers, entries...)
	}
	for _, p := range mf.DomainWeights {
		path := filepath.Join(dir, p)
		if err := loadCategoryWeights(path, c.DomainWeights); err != nil {
			return nil, err
		}
	}
	for _, p := range mf.DocTypeWeights {
		path := filepath.Join(dir, p)
		if err := loadCategoryWeights(path, c.DocTypeWeights); err != nil {
			return nil, err
		}
	}
	for _, p := range mf.OrgAcronyms {
		path := filepath.Join(dir, p)
		if err := loadOrgAcronyms(path, c.OrgAcronyms); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func loadOrgAcronyms(path string, into map[string]string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("corpus: org-acronym file %s: %w", path, err)
	}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		into[strings.ToUpper(strings.TrimSpace(parts[0]))] = strings.TrimSpace(parts[1])
	}
	return nil
}

func loadGazetteerFile(path string, kind models.EntityKind) ([]GazetteerEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: gazetteer file %s: %w", path, err)
	}
	var entries []GazetteerEntry
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		entry := GazetteerEntry{Text: strings.TrimSpace(parts[0]), Kind: kind}
		if len(parts) == 2 {
			entry.Subcategory = strings.TrimSpace(parts[1])
		}
		if entry.Text == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func loadCategoryWeights(path string, into map[string]CategoryWeight) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("corpus: keyword-weight file %s: %w", path, err)
	}
	var parsed map[string]struct {
		Weight   float64            `yaml:"weight"`
		Keywords map[string]float64 `yaml:"keywords"`
	}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("corpus: parse keyword-weight file %s: %w", path, err)
	}
	for category, rec := range parsed {
		weight := rec.Weight
		if weight == 0 {
			weight = 1.0 // default per §6.3
		}
		into[category] = CategoryWeight{Weight: weight, Keywords: rec.Keywords}
	}
	return nil
}
