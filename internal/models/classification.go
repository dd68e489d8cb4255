package models

import "sort"

// ClassificationVector is S3's output: scores in [0,100] per label, for two
// label families (domains and document types), plus the derived primaries.
type ClassificationVector struct {
	Domains          map[string]float64
	DocTypes         map[string]float64
	PrimaryDomain    string
	PrimaryDocType   string
	PrimaryConfidence float64
}

// NewClassificationVector returns an empty vector with initialized maps.
func NewClassificationVector() ClassificationVector {
	return ClassificationVector{
		Domains:  make(map[string]float64),
		DocTypes: make(map[string]float64),
	}
}

// primaryLabel returns the highest-scoring label, tie-breaking lexicographically,
// and its score. Returns ("", 0) when scores is empty or all-zero.
func primaryLabel(scores map[string]float64) (string, float64) {
	if len(scores) == 0 {
		return "", 0
	}
	labels := make([]string, 0, len(scores))
	for l := range scores {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	best := ""
	bestScore := -1.0
	for _, l := range labels {
		if scores[l] > bestScore {
			best = l
			bestScore = scores[l]
		}
	}
	if bestScore <= 0 {
		return "", 0
	}
	return best, bestScore
}

// ComputePrimaries fills PrimaryDomain, PrimaryDocType, PrimaryConfidence from
// Domains/DocTypes. PrimaryConfidence is the doc-type score (the dominant
// classification surfaced to callers); when both families are empty the
// primaries are left null (empty string) per spec.
func (c *ClassificationVector) ComputePrimaries() {
	c.PrimaryDomain, _ = primaryLabel(c.Domains)
	docType, score := primaryLabel(c.DocTypes)
	c.PrimaryDocType = docType
	c.PrimaryConfidence = score
}
