// Package structured compiles the single linear-time regex set used by
// Detect (S4) for structured entities: DATE, TIME, MONEY, MEASUREMENT,
// PERCENT (folded into MEASUREMENT), PHONE, EMAIL, URL, REGULATION, and
// RANGE_INDICATOR.
//
// Go's regexp package is RE2-based: it guarantees linear time in input
// length with no backtracking, and disallows backreferences and
// variable-width lookbehind — exactly the property spec.md requires and
// the property a backtracking engine like dlclark/regexp2 cannot give. A
// single alternation of named groups plays the role of the "one compiled
// regex that dispatches to one of many named patterns on match": every
// branch is tried in the listed order at each position, and non-overlapping
// FindAll semantics give longest-match-wins for free wherever a single
// branch's own greedy quantifiers span a shorter competing match (e.g. "$2"
// inside "$2 million").
package structured

import (
	"errors"
	"regexp"

	"github.com/hyperjump/docintel/internal/models"
)

// ErrDegeneratePattern is returned by Compile when a configured pattern can
// match a zero-length string, which would violate the no-degenerate-match
// invariant Detect relies on.
var ErrDegeneratePattern = errors.New("structured: pattern set allows a zero-length match")

const pattern = `` +
	`(?P<DATE_ISO>\b\d{4}-\d{2}-\d{2}\b)` + `|` +
	`(?P<REGULATION>\b\d{1,2} CFR \d+(?:\.\d+)?\b)` + `|` +
	`(?P<RANGE_DASH_LEFT>\d+(?:\.\d+)?)(?P<RANGE_DASH_OP>\s*[-\x{2013}\x{2014}]\s*)(?P<RANGE_DASH_RIGHT>\d+(?:\.\d+)?)(?:\s*(?P<RANGE_DASH_UNIT>` + unitAlt + `))?` + `|` +
	`(?P<RANGE_WORD_LEFT>\d+(?:\.\d+)?)(?P<RANGE_WORD_OP>\s+(?:to|through|and)\s+)(?P<RANGE_WORD_RIGHT>\d+(?:\.\d+)?)(?:\s*(?P<RANGE_WORD_UNIT>` + unitAlt + `))?` + `|` +
	`(?P<DATE_LONG>(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept?|Oct|Nov|Dec)\.?\s+\d{1,2},?\s+\d{4})` + `|` +
	`(?P<DATE_NUMERIC>\b\d{1,2}/\d{1,2}/\d{4}\b)` + `|` +
	`(?P<MONEY>[$\x{20ac}\x{a3}\x{a5}]\s?\d+(?:,\d{3})*(?:\.\d+)?\s?(?:million|billion|thousand|[kKMB])?\b)` + `|` +
	`(?P<MEASUREMENT>\d+(?:\.\d+)?\s?(?:` + unitAlt + `))` + `|` +
	`(?P<DATE_YEAR>\b(?:19|20)\d{2}\b)` + `|` +
	`(?P<TIME_12H>\b\d{1,2}:\d{2}\s?(?:AM|PM|am|pm|A\.M\.|P\.M\.))` + `|` +
	`(?P<TIME_24H>\b[012]\d:[0-5]\d\b)` + `|` +
	`(?P<TIME_KEYWORD>\bnoon\b|\bmidnight\b)` + `|` +
	`(?P<PHONE>(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b)` + `|` +
	`(?P<EMAIL>[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})` + `|` +
	`(?P<URL>https?://[^\s<>"']+)`

const unitAlt = `%|percent(?:age)?|inch(?:es)?|in\.?|centimeters?|cm|millimeters?|mm|kilometers?|km|meters?|\bm\b|feet|foot|\bft\b|yards?|\byd\b|miles?|\bmi\b|kilograms?|\bkg\b|grams?|\bg\b|pounds?|lbs?|ounces?|\boz\b|celsius|\xc2\xb0c|fahrenheit|\xc2\xb0f|liters?|gallons?|\bgal\b|mph|km/h|m/s`

// RegexSet is the compiled, immutable structured pattern set. Safe for
// concurrent use by many goroutines once built.
type RegexSet struct {
	re *regexp.Regexp
}

// Compile builds the structured regex set, failing fast with
// ErrDegeneratePattern if any branch can match an empty string.
func Compile() (*RegexSet, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if re.MatchString("") {
		return nil, ErrDegeneratePattern
	}
	return &RegexSet{re: re}, nil
}

// kindForGroup maps a named group to its entity kind. Range and
// measurement-with-unit groups are resolved by the caller since they may
// expand into more than one RawEntity.
func kindForGroup(name string) (models.EntityKind, bool) {
	switch name {
	case "DATE_ISO", "DATE_LONG", "DATE_NUMERIC", "DATE_YEAR":
		return models.KindDate, true
	case "TIME_12H", "TIME_24H", "TIME_KEYWORD":
		return models.KindTime, true
	case "MONEY":
		return models.KindMoney, true
	case "MEASUREMENT":
		return models.KindMeasurement, true
	case "PHONE":
		return models.KindPhone, true
	case "EMAIL":
		return models.KindEmail, true
	case "URL":
		return models.KindURL, true
	case "REGULATION":
		return models.KindRegulation, true
	default:
		return "", false
	}
}

// Scan runs the structured regex set once over text and returns every
// RawEntity it finds. A compound range match ("30-37 inches") expands into
// two MEASUREMENT entities and one RANGE_INDICATOR entity.
func (r *RegexSet) Scan(text []byte) []models.RawEntity {
	names := r.re.SubexpNames()
	var out []models.RawEntity
	for _, loc := range r.re.FindAllSubmatchIndex(text, -1) {
		groups := make(map[string][2]int, len(names))
		for i := 1; i < len(names); i++ {
			if names[i] == "" {
				continue
			}
			s, e := loc[2*i], loc[2*i+1]
			if s < 0 {
				continue
			}
			groups[names[i]] = [2]int{s, e}
		}
		out = append(out, expandMatch(text, groups)...)
	}
	return out
}

func expandMatch(text []byte, groups map[string][2]int) []models.RawEntity {
	if _, ok := groups["RANGE_DASH_LEFT"]; ok {
		return expandRange(text, groups, "RANGE_DASH_LEFT", "RANGE_DASH_OP", "RANGE_DASH_RIGHT", "RANGE_DASH_UNIT")
	}
	if _, ok := groups["RANGE_WORD_LEFT"]; ok {
		return expandRange(text, groups, "RANGE_WORD_LEFT", "RANGE_WORD_OP", "RANGE_WORD_RIGHT", "RANGE_WORD_UNIT")
	}
	for name, span := range groups {
		kind, ok := kindForGroup(name)
		if !ok {
			continue
		}
		return []models.RawEntity{entityFromSpan(text, kind, name, span)}
	}
	return nil
}

func expandRange(text []byte, groups map[string][2]int, leftKey, opKey, rightKey, unitKey string) []models.RawEntity {
	left := groups[leftKey]
	op := groups[opKey]
	right := groups[rightKey]
	var rightSpan [2]int
	if unit, ok := groups[unitKey]; ok {
		rightSpan = [2]int{right[0], unit[1]}
	} else {
		rightSpan = right
	}
	return []models.RawEntity{
		entityFromSpan(text, models.KindMeasurement, "MEASUREMENT_RANGE_LEFT", left),
		entityFromSpan(text, models.KindRangeIndic, "RANGE_INDICATOR", op),
		entityFromSpan(text, models.KindMeasurement, "MEASUREMENT_RANGE_RIGHT", rightSpan),
	}
}

func entityFromSpan(text []byte, kind models.EntityKind, tag string, span [2]int) models.RawEntity {
	return models.RawEntity{
		Kind:        kind,
		Span:        models.Span{Start: span[0], End: span[1]},
		Text:        string(text[span[0]:span[1]]),
		DetectorTag: tag,
	}
}
