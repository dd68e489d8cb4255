// Package detect implements S4: running the gazetteer automaton and the
// structured regex set over a document's Markdown, plus a supplementary
// PERSON regex, then resolving overlaps within each kind family.
//
// PERSON names are open-class and cannot be usefully pre-enumerated in a
// gazetteer the way ORG/LOC/GPE can (agency acronyms, country names, and
// landmark names are finite, enumerable sets; human names are not). Detect
// therefore supplements the Aho-Corasick gazetteer scan with a dedicated
// honorific-anchored regex, grounded on the honorific-plus-capitalized-name
// shape used by ferret-scan's cross-validator employee-record pattern.
package detect

import (
	"regexp"
	"sort"

	"github.com/hyperjump/docintel/internal/automaton"
	"github.com/hyperjump/docintel/internal/control"
	"github.com/hyperjump/docintel/internal/models"
)

// personPattern anchors on a title/honorific followed by one to three
// capitalized words; it intentionally does not try to recognize bare names
// without an honorific, which would flood false positives on any
// capitalized word at a sentence start.
var personPattern = regexp.MustCompile(`\b(?:Dr|Mr|Mrs|Ms|Prof|Sir|Dame|Rev|Hon)\.?\s+[A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2}`)

// Scan runs the gazetteer automaton, the PERSON regex, and the structured
// regex set over markdown and returns the overlap-resolved RawEntity stream.
// Detect never returns an error: pathological input still completes in
// linear time because every underlying engine is linear-time by
// construction (Aho-Corasick, RE2), so there is nothing to time out on
// within this function; callers apply their own per-document deadline.
func Scan(markdown []byte, bundle *control.Bundle) []models.RawEntity {
	var raw []models.RawEntity

	// SCANNING: gazetteer automaton walks the buffer once.
	for _, m := range bundle.Gazetteer.Scan(markdown) {
		gm, ok := m.Payload.(control.GazetteerMatch)
		if !ok {
			continue
		}
		raw = append(raw, entityFromMatch(markdown, gm.Kind, "gazetteer", gm.Subcategory, m))
	}

	// SCANNING: supplementary PERSON regex.
	for _, loc := range personPattern.FindAllIndex(markdown, -1) {
		raw = append(raw, models.RawEntity{
			Kind:        models.KindPerson,
			Span:        models.Span{Start: loc[0], End: loc[1]},
			Text:        string(markdown[loc[0]:loc[1]]),
			DetectorTag: "person_regex",
		})
	}

	// SCANNING: structured regex set (DATE/TIME/MONEY/MEASUREMENT/PERCENT/
	// PHONE/EMAIL/URL/REGULATION/RANGE_INDICATOR).
	raw = append(raw, bundle.Structured.Scan(markdown)...)

	// EMITTING: resolve overlaps within each kind family; cross-kind
	// overlaps are left untouched for S5 to reconcile.
	raw = resolveOverlaps(raw)

	// DONE.
	return raw
}

func entityFromMatch(markdown []byte, kind models.EntityKind, tag, subcategory string, m automaton.Match) models.RawEntity {
	return models.RawEntity{
		Kind:        kind,
		Span:        models.Span{Start: m.Start, End: m.End},
		Text:        string(markdown[m.Start:m.End]),
		DetectorTag: tag,
		Subcategory: subcategory,
	}
}

// resolveOverlaps groups entities by kind and applies: when matches share a
// start, keep the longest; when they overlap partially, keep the earlier
// start (then the longer). Sorting by (Start asc, End desc) and sweeping
// left-to-right, keeping an entity only when its start is at or past the
// previously kept entity's end, implements both rules in one pass: the
// first entity encountered at any start is already the longest at that
// start, and an entity whose start falls inside the previously kept span is
// by definition the later, shorter-reaching of the two.
func resolveOverlaps(entities []models.RawEntity) []models.RawEntity {
	byKind := make(map[models.EntityKind][]models.RawEntity)
	var kindOrder []models.EntityKind
	for _, e := range entities {
		if _, ok := byKind[e.Kind]; !ok {
			kindOrder = append(kindOrder, e.Kind)
		}
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}

	var out []models.RawEntity
	for _, k := range kindOrder {
		group := byKind[k]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Span.Start != group[j].Span.Start {
				return group[i].Span.Start < group[j].Span.Start
			}
			return group[i].Span.End > group[j].Span.End
		})
		lastEnd := -1
		for _, e := range group {
			if e.Span.Start < lastEnd {
				continue
			}
			out = append(out, e)
			lastEnd = e.Span.End
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}
