// Package structure implements S2: a single scan over a document's Markdown
// that derives lightweight structural facts without any entity work.
//
// The scan is grounded on the single-pass, per-line pattern-scoring shape
// used by ferret-scan's StructureDetector: walk the lines once, test each
// against a small set of precompiled patterns, and accumulate flags rather
// than building a parse tree. Nothing here needs backtracking or lookahead,
// so the teacher's stdlib regexp usage carries over unchanged.
package structure

import (
	"bytes"
	"regexp"

	"github.com/hyperjump/docintel/internal/models"
)

var (
	headerPattern     = regexp.MustCompile(`^#{1,6}\s`)
	bulletPattern     = regexp.MustCompile(`^\s*[-*+]\s`)
	numberedPattern   = regexp.MustCompile(`^\s*\d+[.)]\s`)
	tablePattern      = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	codeFencePattern  = regexp.MustCompile("^\\s*```")
	frontMatterRunes  = []byte("---")
)

// languageKeywords maps a coarse language guess to a few signature tokens.
// This is deliberately shallow: S2's budget is <0.5ms per document and it
// only needs to distinguish "looks like code" categories, not lex a grammar.
var languageKeywords = map[string][]string{
	"go":         {"func ", "package ", ":= "},
	"python":     {"def ", "import ", "elif "},
	"javascript": {"function ", "const ", "=>"},
	"sql":        {"SELECT ", "FROM ", "WHERE "},
}

// Derive scans markdown once and returns the populated StructureFlags.
func Derive(markdown []byte) models.StructureFlags {
	var flags models.StructureFlags

	if bytes.HasPrefix(bytes.TrimLeft(markdown, string(rune(0xFEFF))), frontMatterRunes) {
		flags.HasFrontMatter = true
	}

	lines := bytes.Split(markdown, []byte("\n"))
	for _, line := range lines {
		s := string(line)
		if !flags.HasHeaders && headerPattern.MatchString(s) {
			flags.HasHeaders = true
		}
		if !flags.HasLists && (bulletPattern.MatchString(s) || numberedPattern.MatchString(s)) {
			flags.HasLists = true
		}
		if !flags.HasTables && tablePattern.MatchString(s) {
			flags.HasTables = true
		}
		if !flags.HasCodeFences && codeFencePattern.MatchString(s) {
			flags.HasCodeFences = true
		}
	}

	flags.LanguageGuess = guessLanguage(markdown)
	return flags
}

// guessLanguage counts keyword hits per language and returns the best match,
// or "" when no language scores above zero. Ties favor the language whose
// keywords were registered first by iterating a fixed, deterministic order.
func guessLanguage(markdown []byte) string {
	order := []string{"go", "python", "javascript", "sql"}
	best := ""
	bestScore := 0
	for _, lang := range order {
		score := 0
		for _, kw := range languageKeywords[lang] {
			score += bytes.Count(markdown, []byte(kw))
		}
		if score > bestScore {
			bestScore = score
			best = lang
		}
	}
	return best
}
