package normalize

import (
	"fmt"
	"sort"

	"github.com/hyperjump/docintel/internal/models"
)

// assignIDs sorts canonical entities by (first-mention start, kind) and
// assigns per-kind ordinals with the §4.6.4 prefixes, zero-padded to 3
// digits minimum.
func assignIDs(entities []models.CanonicalEntity) {
	sort.SliceStable(entities, func(i, j int) bool {
		si, sj := entities[i].FirstStart(), entities[j].FirstStart()
		if si != sj {
			return si < sj
		}
		return entities[i].Kind < entities[j].Kind
	})

	ordinals := make(map[string]int)
	for i := range entities {
		prefix := models.IDPrefix(entities[i].Kind)
		ordinals[prefix]++
		entities[i].EntityID = fmt.Sprintf("%s%03d", prefix, ordinals[prefix])
	}
}

// rewriteMarkdown replaces each canonical entity's mentions with the
// `||canonical_value||id||` marker, proceeding from the highest span start
// downward so earlier byte offsets are never invalidated mid-rewrite.
func rewriteMarkdown(markdown []byte, entities []models.CanonicalEntity) []byte {
	type replacement struct {
		span models.Span
		text []byte
	}
	var edits []replacement
	for _, e := range entities {
		marker := []byte("||" + e.Normalized + "||" + e.EntityID + "||")
		for _, mention := range e.Mentions {
			edits = append(edits, replacement{span: mention.Span, text: marker})
		}
	}
	sort.Slice(edits, func(i, j int) bool {
		return edits[i].span.Start > edits[j].span.Start
	})

	out := append([]byte(nil), markdown...)
	for _, e := range edits {
		if e.span.Start < 0 || e.span.End > len(out) || e.span.Start > e.span.End {
			continue
		}
		var rebuilt []byte
		rebuilt = append(rebuilt, out[:e.span.Start]...)
		rebuilt = append(rebuilt, e.text...)
		rebuilt = append(rebuilt, out[e.span.End:]...)
		out = rebuilt
	}
	return out
}
