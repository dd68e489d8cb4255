// Package models defines the core data structures shared across the pipeline:
// documents, spans, entities, classification vectors, and the final document record.
package models

import "fmt"

// EntityKind enumerates the kinds of entities the pipeline detects.
type EntityKind string

const (
	KindPerson      EntityKind = "PERSON"
	KindOrg         EntityKind = "ORG"
	KindLoc         EntityKind = "LOC"
	KindGPE         EntityKind = "GPE"
	KindDate        EntityKind = "DATE"
	KindTime        EntityKind = "TIME"
	KindMoney       EntityKind = "MONEY"
	KindMeasurement EntityKind = "MEASUREMENT"
	KindPercent     EntityKind = "PERCENT" // detected only; normalized into KindMeasurement, never emitted at top level
	KindPhone       EntityKind = "PHONE"
	KindEmail       EntityKind = "EMAIL"
	KindURL         EntityKind = "URL"
	KindRegulation  EntityKind = "REGULATION"
	KindRangeIndic  EntityKind = "RANGE_INDICATOR"
)

// IDPrefix returns the document-scoped ID prefix for a kind, per the entity-kind table.
func IDPrefix(k EntityKind) string {
	switch k {
	case KindPerson:
		return "p"
	case KindOrg:
		return "org"
	case KindLoc:
		return "loc"
	case KindGPE:
		return "gpe"
	case KindDate, KindTime:
		return "d"
	case KindMoney:
		return "mon"
	case KindMeasurement, KindPercent:
		return "meas"
	case KindPhone:
		return "tel"
	case KindRegulation:
		return "reg"
	case KindURL:
		return "url"
	case KindEmail:
		return "mail"
	default:
		return "x"
	}
}

// Span is a half-open byte interval [Start, End) into a document's markdown buffer.
// Spans always land on UTF-8 character boundaries.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether s and o share any byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// RawEntity is a ground-truth record of what a detector saw at a specific byte range,
// prior to any normalization. markdown[Span.Start:Span.End] always equals Text.
type RawEntity struct {
	Kind        EntityKind
	Span        Span
	Text        string
	DetectorTag string // which automaton/pattern matched
	Subcategory string // optional, e.g. "us_government_agencies", "major_cities"
}

func (e RawEntity) String() string {
	return fmt.Sprintf("%s[%d:%d]=%q", e.Kind, e.Span.Start, e.Span.End, e.Text)
}

// CanonicalEntity is the normalized, ID-bearing record for a real-world referent
// within a document.
type CanonicalEntity struct {
	EntityID   string
	Kind       EntityKind
	Normalized string
	Aliases    []string
	Mentions   []RawEntity
	Metadata   map[string]any
}

// Count is the number of mentions.
func (c *CanonicalEntity) Count() int { return len(c.Mentions) }

// FirstStart returns the span start of the earliest mention, used for ID-assignment sort.
func (c *CanonicalEntity) FirstStart() int {
	best := -1
	for _, m := range c.Mentions {
		if best == -1 || m.Span.Start < best {
			best = m.Span.Start
		}
	}
	return best
}
