// Package normalize implements S5: per-kind canonicalization, deduplication,
// range consolidation, ID assignment, and the Markdown rewrite pass.
//
// The four phases run in the fixed order §4.6 specifies. Every phase is
// designed to degrade per-entity rather than abort: a canonicalization
// failure on one mention records a normalization_error on that entity and
// falls back to the original text as its canonical form, exactly as the
// teacher's extractors record a per-file error and move on rather than
// failing a whole batch.
package normalize

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/docintel/internal/control"
	"github.com/hyperjump/docintel/internal/models"
)

// Options carries the document-independent normalization configuration:
// the ambiguous numeric-date policy and the fiscal year anchor month.
type Options struct {
	IngestTimestamp       time.Time
	AmbiguousDatePolicy   string // "mdy" or "dmy"
	FiscalYearAnchorMonth int    // 1 = calendar year (default)
}

func (o Options) ingestYear() int {
	if o.IngestTimestamp.IsZero() {
		return time.Now().Year()
	}
	return o.IngestTimestamp.Year()
}

// DefaultOptions returns the spec's stated defaults.
func DefaultOptions() Options {
	return Options{AmbiguousDatePolicy: "mdy", FiscalYearAnchorMonth: 1}
}

// normResult is one raw entity's canonicalization outcome, kept around
// (rather than discarded after building the CanonicalEntity) because range
// consolidation needs the parsed measurementResult, not just its string
// form.
type normResult struct {
	raw        models.RawEntity
	key        string // dedup grouping key, scoped by kind
	normalized string // canonical display string
	metadata   map[string]any
	typed      any // kind-specific parsed result (e.g. measurementResult)
	err        error
}

// Normalize runs all four S5 phases over doc in place.
func Normalize(doc *models.Document, bundle *control.Bundle, opts Options) {
	if opts.IngestTimestamp.IsZero() {
		opts.IngestTimestamp = doc.IngestTimestamp
	}

	unitOverrides := findRangeUnitOverrides(doc.RawEntities)

	results := make([]normResult, len(doc.RawEntities))
	for i, raw := range doc.RawEntities {
		override := unitOverrides[i]
		results[i] = canonicalizeEntity(raw, bundle, opts, override)
		if results[i].err != nil {
			doc.Errors = append(doc.Errors, models.ErrorInfo{
				Stage:  "normalize",
				Kind:   string(raw.Kind),
				Detail: results[i].err.Error(),
			})
		}
	}

	entities := dedupe(results)
	entities = append(entities, consolidateRanges(results)...)
	assignIDs(entities)

	doc.CanonicalEntities = entities
	doc.MarkdownCanonicalized = rewriteMarkdown(doc.Markdown, entities)
}

// findRangeUnitOverrides scans for MEASUREMENT_RANGE_LEFT entities whose
// partner MEASUREMENT_RANGE_RIGHT carries a unit, and records that unit as
// the override for the left entity's index, implementing §4.6.3's
// unit-back-propagation rule ahead of the main canonicalization pass.
func findRangeUnitOverrides(raws []models.RawEntity) map[int]string {
	overrides := make(map[int]string)
	pendingLeftIdx := -1
	for i, r := range raws {
		switch r.DetectorTag {
		case "MEASUREMENT_RANGE_LEFT":
			pendingLeftIdx = i
		case "MEASUREMENT_RANGE_RIGHT":
			if pendingLeftIdx == -1 {
				continue
			}
			m := measurementSplit.FindStringSubmatch(r.Text)
			if m != nil && strings.TrimSpace(m[2]) != "" {
				overrides[pendingLeftIdx] = strings.TrimSpace(m[2])
			}
			pendingLeftIdx = -1
		}
	}
	return overrides
}

func canonicalizeEntity(raw models.RawEntity, bundle *control.Bundle, opts Options, unitOverride string) normResult {
	tables := bundle.Tables
	switch raw.Kind {
	case models.KindDate:
		d, err := normalizeDate(raw.Text, raw.DetectorTag, opts)
		if err != nil {
			return fallback(raw, err)
		}
		key := d.iso
		display := d.iso
		if !d.hasFullDate {
			key = "year:" + itoa(d.year)
			display = itoa(d.year)
		}
		return normResult{raw: raw, key: key, normalized: display, typed: d, metadata: map[string]any{
			"iso": d.iso, "year": d.year, "month": d.month, "day": d.day,
			"day_of_week": d.weekday, "quarter": d.quarter, "fiscal_year": d.fiscalYear,
			"relative_reference": d.relative,
		}}
	case models.KindTime:
		tm, err := normalizeTime(raw.Text, raw.DetectorTag)
		if err != nil {
			return fallback(raw, err)
		}
		return normResult{raw: raw, key: tm.hhmm24, normalized: tm.hhmm24, typed: tm, metadata: map[string]any{
			"hour": tm.hour, "minute": tm.minute, "minutes_since_midnight": tm.minutesSinceMidnight,
		}}
	case models.KindMoney:
		mn, err := normalizeMoney(raw.Text, tables)
		if err != nil {
			return fallback(raw, err)
		}
		key := floatKey(mn.amount) + " " + mn.currency
		return normResult{raw: raw, key: key, normalized: decimalString(mn.amount), typed: mn, metadata: map[string]any{
			"amount": mn.amount, "currency": mn.currency, "formatted": mn.formatted,
		}}
	case models.KindMeasurement, models.KindPercent:
		ms, err := normalizeMeasurement(raw.Text, tables, unitOverride)
		if err != nil {
			return fallback(raw, err)
		}
		key := floatKey(ms.siValue) + " " + ms.siUnit
		normalized := decimalString(ms.siValue) + " " + ms.siUnit
		displayValue := floatKey(ms.originalValue) + " " + ms.originalUnit
		return normResult{raw: raw, key: key, normalized: normalized, typed: ms, metadata: map[string]any{
			"value": ms.originalValue, "unit": ms.originalUnit,
			"measurement_type": string(ms.category), "si_value": ms.siValue, "si_unit": ms.siUnit,
			"display_value": displayValue,
		}}
	case models.KindPhone:
		ph, err := normalizePhone(raw.Text)
		if err != nil {
			return fallback(raw, err)
		}
		return normResult{raw: raw, key: ph.digits, normalized: ph.digits, typed: ph, metadata: map[string]any{
			"country_code": ph.country, "area_code": ph.areaCode, "number": ph.number,
			"type": ph.lineClass, "formatted_national": ph.formattedNational, "formatted_e164": ph.formattedE164,
		}}
	case models.KindRegulation:
		rg, err := normalizeRegulation(raw.Text, tables)
		if err != nil {
			return fallback(raw, err)
		}
		key := itoa(rg.title) + "." + itoa(rg.part) + "." + rg.section
		return normResult{raw: raw, key: key, normalized: raw.Text, typed: rg, metadata: map[string]any{
			"title": rg.title, "part": rg.part, "section": rg.section, "agency": rg.agency,
		}}
	case models.KindURL:
		u, err := normalizeURL(raw.Text)
		if err != nil {
			return fallback(raw, err)
		}
		return normResult{raw: raw, key: strings.ToLower(u), normalized: u, typed: u}
	case models.KindEmail:
		e, err := normalizeEmail(raw.Text)
		if err != nil {
			return fallback(raw, err)
		}
		return normResult{raw: raw, key: e, normalized: e, typed: e}
	case models.KindPerson:
		stripped := stripTitles(raw.Text, tables.TitlePrefixes)
		key := strings.ToLower(stripped)
		return normResult{raw: raw, key: key, normalized: stripped, metadata: map[string]any{}}
	case models.KindOrg:
		expanded := expandOrgAcronym(raw.Text, bundle.OrgAcronyms)
		key := strings.ToLower(expanded)
		return normResult{raw: raw, key: key, normalized: expanded, metadata: map[string]any{}}
	case models.KindGPE:
		a2, a3, ok := gpeMetadata(raw.Text, tables)
		meta := map[string]any{}
		key := strings.ToLower(raw.Text)
		if ok {
			meta["iso_alpha2"] = a2
			meta["iso_alpha3"] = a3
			key = a3
		}
		return normResult{raw: raw, key: key, normalized: raw.Text, metadata: meta}
	case models.KindLoc:
		meta := map[string]any{}
		if raw.Subcategory != "" {
			meta["subcategory"] = raw.Subcategory
		}
		return normResult{raw: raw, key: strings.ToLower(raw.Text), normalized: raw.Text, metadata: meta}
	default:
		return normResult{raw: raw, key: strings.ToLower(raw.Text), normalized: raw.Text, metadata: map[string]any{}}
	}
}

func fallback(raw models.RawEntity, err error) normResult {
	return normResult{
		raw:        raw,
		key:        "err:" + strings.ToLower(raw.Text),
		normalized: raw.Text,
		metadata:   map[string]any{"normalization_error": err.Error()},
		err:        err,
	}
}

// dedupe groups normResults into CanonicalEntity values, keyed by
// (kind, key), then applies the PERSON title/bare-name suffix collapse.
func dedupe(results []normResult) []models.CanonicalEntity {
	type group struct {
		entity  models.CanonicalEntity
		aliases map[string]bool
	}
	order := make([]string, 0, len(results))
	groups := make(map[string]*group)

	for _, r := range results {
		gk := string(r.raw.Kind) + "|" + r.key
		g, ok := groups[gk]
		if !ok {
			g = &group{
				entity: models.CanonicalEntity{
					Kind:       normalizedKindFor(r.raw.Kind),
					Normalized: r.normalized,
					Metadata:   r.metadata,
				},
				aliases: make(map[string]bool),
			}
			groups[gk] = g
			order = append(order, gk)
		}
		g.entity.Mentions = append(g.entity.Mentions, r.raw)
		if !g.aliases[r.raw.Text] {
			g.aliases[r.raw.Text] = true
			g.entity.Aliases = append(g.entity.Aliases, r.raw.Text)
		}
	}

	entities := make([]models.CanonicalEntity, 0, len(order))
	for _, gk := range order {
		entities = append(entities, groups[gk].entity)
	}
	return collapsePersonSuffixes(entities)
}

// normalizedKindFor folds PERCENT into MEASUREMENT per §4.5: there is no
// top-level percent category in the output.
func normalizedKindFor(k models.EntityKind) models.EntityKind {
	if k == models.KindPercent {
		return models.KindMeasurement
	}
	return k
}

// collapsePersonSuffixes merges a bare-name PERSON entity into a
// title-prefixed one when the bare name is a strict suffix (on a word
// boundary) of the longer form, per §4.6.2.
func collapsePersonSuffixes(entities []models.CanonicalEntity) []models.CanonicalEntity {
	var persons []int
	for i, e := range entities {
		if e.Kind == models.KindPerson {
			persons = append(persons, i)
		}
	}
	sort.Slice(persons, func(a, b int) bool {
		return len(entities[persons[a]].Normalized) > len(entities[persons[b]].Normalized)
	})

	merged := make(map[int]bool)
	for _, longIdx := range persons {
		if merged[longIdx] {
			continue
		}
		longName := strings.ToLower(entities[longIdx].Normalized)
		for _, shortIdx := range persons {
			if shortIdx == longIdx || merged[shortIdx] {
				continue
			}
			shortName := strings.ToLower(entities[shortIdx].Normalized)
			if shortName == longName {
				continue
			}
			if strings.HasSuffix(longName, shortName) {
				boundaryIdx := len(longName) - len(shortName) - 1
				if boundaryIdx >= 0 && longName[boundaryIdx] == ' ' {
					mergeEntities(&entities[longIdx], entities[shortIdx])
					merged[shortIdx] = true
				}
			}
		}
	}

	var out []models.CanonicalEntity
	for i, e := range entities {
		if !merged[i] {
			out = append(out, e)
		}
	}
	return out
}

func mergeEntities(into *models.CanonicalEntity, from models.CanonicalEntity) {
	into.Mentions = append(into.Mentions, from.Mentions...)
	sort.Slice(into.Mentions, func(a, b int) bool {
		return into.Mentions[a].Span.Start < into.Mentions[b].Span.Start
	})
	seen := make(map[string]bool, len(into.Aliases))
	for _, a := range into.Aliases {
		seen[a] = true
	}
	for _, a := range from.Aliases {
		if !seen[a] {
			seen[a] = true
			into.Aliases = append(into.Aliases, a)
		}
	}
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func floatKey(v float64) string {
	return trimNumber(roundTo(v, 6))
}

// decimalString renders v as a fixed-point decimal string with two
// fractional digits, the plain form §6.4 requires for MONEY/MEASUREMENT
// normalized fields (no thousands separators, no currency symbol, no unit).
func decimalString(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func roundTo(v float64, decimals int) float64 {
	scale := 1.0
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+sign(v)*0.5)) / scale
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
