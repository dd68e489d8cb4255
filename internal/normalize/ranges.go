package normalize

import (
	"fmt"

	"github.com/hyperjump/docintel/internal/models"
)

// consolidateRanges scans results (already sorted by span start, mirroring
// doc.RawEntities) for MEASUREMENT_RANGE_LEFT / RANGE_INDICATOR /
// MEASUREMENT_RANGE_RIGHT triples produced by the structured range patterns
// and emits one derived MEASUREMENT CanonicalEntity (subtype "range") per
// triple. It never touches the constituent RawEntities or the CanonicalEntity
// entries the per-point measurements already produced in the main pass.
func consolidateRanges(results []normResult) []models.CanonicalEntity {
	var out []models.CanonicalEntity
	var pendingLeft *normResult

	for i := range results {
		r := &results[i]
		switch r.raw.DetectorTag {
		case "MEASUREMENT_RANGE_LEFT":
			pendingLeft = r
		case "MEASUREMENT_RANGE_RIGHT":
			if pendingLeft == nil || pendingLeft.err != nil || r.err != nil {
				pendingLeft = nil
				continue
			}
			leftMeas, lok := pendingLeft.typed.(measurementResult)
			rightMeas, rok := r.typed.(measurementResult)
			if !lok || !rok {
				pendingLeft = nil
				continue
			}
			span := models.Span{Start: pendingLeft.raw.Span.Start, End: r.raw.Span.End}
			out = append(out, models.CanonicalEntity{
				Kind:       models.KindMeasurement,
				Normalized: fmt.Sprintf("%s %s - %s %s", trimNumber(leftMeas.originalValue), rightMeas.originalUnit, trimNumber(rightMeas.originalValue), rightMeas.originalUnit),
				Mentions:   []models.RawEntity{pendingLeft.raw, r.raw},
				Metadata: map[string]any{
					"subtype":  "range",
					"start":    leftMeas.originalValue,
					"end":      rightMeas.originalValue,
					"unit":     rightMeas.originalUnit,
					"category": string(rightMeas.category),
					"span":     span,
				},
			})
			pendingLeft = nil
		}
	}
	return out
}

func trimNumber(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}
