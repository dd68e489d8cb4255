// Package control builds the immutable matcher handles every worker shares:
// the Domain automaton, the DocType automaton, the Gazetteer automaton, and
// the structured regex set, plus the canonicalization tables. Control runs
// once at process start; if anything fails to build, the process must not
// start with a partially built matcher.
package control

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/automaton"
	"github.com/hyperjump/docintel/internal/corpus"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/structured"
)

// LabelMatch is the payload carried by the Domain and DocType automatons.
type LabelMatch struct {
	Category      string
	CategoryWeight float64
	KeywordWeight  float64
}

// GazetteerMatch is the payload carried by the Gazetteer automaton.
type GazetteerMatch struct {
	Kind        models.EntityKind
	Subcategory string
}

// Bundle holds every immutable handle a worker needs. One allocation, many
// borrows: workers hold a *Bundle and never mutate it.
type Bundle struct {
	Domain      *automaton.Automaton
	DocType     *automaton.Automaton
	Gazetteer   *automaton.Automaton
	Structured  *structured.RegexSet
	Tables      corpus.CanonTables
	OrgAcronyms map[string]string
}

// Init loads the corpus at manifestPath and builds every matcher handle.
// It fails fast: any invalid pattern or missing corpus file aborts with an
// error naming the offending pattern or path, and the caller must not start
// workers on a partial Bundle.
func Init(manifestPath string, logger *zap.Logger) (*Bundle, error) {
	c, err := corpus.Load(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("control: load corpus: %w", err)
	}

	domain, err := buildLabelAutomaton(c.DomainWeights)
	if err != nil {
		return nil, fmt.Errorf("control: domain pattern: %w", err)
	}
	docType, err := buildLabelAutomaton(c.DocTypeWeights)
	if err != nil {
		return nil, fmt.Errorf("control: doc_type pattern: %w", err)
	}

	gazBuilder := automaton.NewBuilder()
	for _, g := range c.Gazetteers {
		if err := gazBuilder.AddPattern(g.Text, true, GazetteerMatch{Kind: g.Kind, Subcategory: g.Subcategory}); err != nil {
			return nil, fmt.Errorf("control: gazetteer pattern %q: %w", g.Text, err)
		}
	}
	gazetteer := gazBuilder.Build()

	structuredSet, err := structured.Compile()
	if err != nil {
		return nil, fmt.Errorf("control: structured regex set: %w", err)
	}

	if logger != nil {
		logger.Info("control initialized",
			zap.Int("domain_patterns", domain.Size()),
			zap.Int("doc_type_patterns", docType.Size()),
			zap.Int("gazetteer_patterns", gazetteer.Size()),
		)
	}

	return &Bundle{
		Domain:      domain,
		DocType:     docType,
		Gazetteer:   gazetteer,
		Structured:  structuredSet,
		Tables:      c.Tables,
		OrgAcronyms: c.OrgAcronyms,
	}, nil
}

func buildLabelAutomaton(weights map[string]corpus.CategoryWeight) (*automaton.Automaton, error) {
	b := automaton.NewBuilder()
	for category, cw := range weights {
		for keyword, kw := range cw.Keywords {
			if err := b.AddPattern(keyword, true, LabelMatch{
				Category:       category,
				CategoryWeight: cw.Weight,
				KeywordWeight:  kw,
			}); err != nil {
				return nil, fmt.Errorf("keyword %q (category %q): %w", keyword, category, err)
			}
		}
	}
	return b.Build(), nil
}
