// Package classify implements S3: scoring a document across domains and
// document types using the Domain and DocType automatons built by Control.
package classify

import (
	"math"

	"github.com/hyperjump/docintel/internal/automaton"
	"github.com/hyperjump/docintel/internal/control"
	"github.com/hyperjump/docintel/internal/models"
)

// Classify scores markdown across the Domain and DocType label families and
// returns the populated ClassificationVector. Every match in both automatons
// contributes before percentages are computed; there is no early
// termination, since downstream needs the full ranking.
func Classify(markdown []byte, bundle *control.Bundle) models.ClassificationVector {
	vec := models.NewClassificationVector()
	accumulate(vec.Domains, bundle.Domain.Scan(markdown))
	accumulate(vec.DocTypes, bundle.DocType.Scan(markdown))
	toPercentages(vec.Domains)
	toPercentages(vec.DocTypes)
	vec.ComputePrimaries()
	return vec
}

// accumulate adds weight*keyword_weight*category_weight for every match to
// that match's category accumulator. A match whose payload isn't a
// control.LabelMatch is skipped rather than panicking; the automaton is
// shared infrastructure and Control is the only place payloads are set.
func accumulate(scores map[string]float64, matches []automaton.Match) {
	for _, m := range matches {
		lm, ok := m.Payload.(control.LabelMatch)
		if !ok {
			continue
		}
		scores[lm.Category] += lm.CategoryWeight * lm.KeywordWeight
	}
}

// toPercentages converts raw accumulator scores to percentages of the
// family's total, retaining one decimal place. An all-zero or empty family
// is left at all zeros rather than dividing by zero.
func toPercentages(scores map[string]float64) {
	var total float64
	for _, s := range scores {
		total += s
	}
	if total <= 0 {
		for k := range scores {
			scores[k] = 0
		}
		return
	}
	for k, s := range scores {
		scores[k] = roundTo1Decimal(s / total * 100)
	}
}

func roundTo1Decimal(v float64) float64 {
	return math.Round(v*10) / 10
}
