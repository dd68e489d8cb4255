package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/docintel/internal/corpus"
)

// measurementResult is the metadata bag §4.6.1 describes for a MEASUREMENT
// entity (including the PERCENT subtype, which is never emitted as its own
// top-level kind).
type measurementResult struct {
	originalValue float64
	originalUnit  string
	category      corpus.MeasurementCategory
	siValue       float64
	siUnit        string
}

var measurementSplit = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*(.*)$`)

// normalizeMeasurement parses "<number> <unit>" text (including bare "10%")
// and converts to SI. unitOverride, when non-empty, is used instead of
// parsing a unit out of text — range consolidation uses this to back-
// propagate a unit from the right-hand endpoint onto a bare left endpoint.
func normalizeMeasurement(text string, tables corpus.CanonTables, unitOverride string) (measurementResult, error) {
	m := measurementSplit.FindStringSubmatch(text)
	if m == nil {
		return measurementResult{}, fmt.Errorf("measurement: no numeric value in %q", text)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return measurementResult{}, fmt.Errorf("measurement: non-numeric value in %q", text)
	}
	unit := strings.TrimSpace(m[2])
	if unit == "" {
		unit = unitOverride
	}
	unitKey := strings.ToLower(unit)
	spec, ok := tables.Units[unitKey]
	if !ok {
		return measurementResult{}, fmt.Errorf("measurement: unrecognized unit %q in %q", unit, text)
	}

	si := value*spec.Factor + spec.Offset
	if spec.Category == corpus.CategoryTemperature && (unitKey == "fahrenheit" || unitKey == "°f") {
		si = (value - 32) * 5 / 9
	}

	return measurementResult{
		originalValue: value,
		originalUnit:  unit,
		category:      spec.Category,
		siValue:       si,
		siUnit:        spec.SIUnit,
	}, nil
}
