// Package automaton implements a multi-pattern Aho-Corasick matcher used by
// Control to build the Domain, DocType, and Gazetteer automatons.
//
// Construction follows the classic trie-plus-failure-link shape: insert every
// pattern into a byte trie, then BFS the trie breadth-first assigning each
// node a failure link to the longest proper suffix that is also a trie
// prefix, unioning output sets along the way. Scan then walks the input once,
// following failure links on mismatch, never re-reading a byte.
package automaton

import "strings"

// node is one state of the trie/automaton.
type node struct {
	next map[byte]*node
	fail *node
	out  []patternEnd
}

func newNode() *node {
	return &node{next: make(map[byte]*node)}
}

type patternEnd struct {
	length       int
	wholeToken   bool
	payload      any
}

// Match is one hit reported by Scan, with byte offsets into the original,
// case-preserved input buffer.
type Match struct {
	Start   int
	End     int // half-open, Start < End
	Payload any
}

// Automaton is an immutable, concurrency-safe multi-pattern matcher. Once
// built it is never mutated; many goroutines may call Scan concurrently.
type Automaton struct {
	root *node
	size int
}

// Builder accumulates patterns before a single Build call freezes them into
// an Automaton. A Builder is not safe for concurrent use; build it once,
// single-threaded, at process start, then share the resulting Automaton.
type Builder struct {
	root *node
	n    int
}

// NewBuilder returns an empty pattern builder.
func NewBuilder() *Builder {
	return &Builder{root: newNode()}
}

// AddPattern inserts text (matched case-insensitively) with an opaque
// payload returned on match. When wholeToken is true, a match is only
// reported if the byte before the match start and the byte after the match
// end (when present) are not ASCII word characters — this is the anchoring
// spec.md describes as synthetic non-word sentinels at both ends, implemented
// here as a boundary check at emission time rather than literal sentinel
// bytes threaded through the trie, which would otherwise require rewriting
// scanned text and remapping offsets back to the original buffer.
func (b *Builder) AddPattern(text string, wholeToken bool, payload any) error {
	if text == "" {
		return errEmptyPattern
	}
	lower := strings.ToLower(text)
	cur := b.root
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nxt, ok := cur.next[c]
		if !ok {
			nxt = newNode()
			cur.next[c] = nxt
		}
		cur = nxt
	}
	cur.out = append(cur.out, patternEnd{length: len(lower), wholeToken: wholeToken, payload: payload})
	b.n++
	return nil
}

var errEmptyPattern = patternError("automaton: empty pattern")

type patternError string

func (e patternError) Error() string { return string(e) }

// Build freezes the trie into an immutable Automaton by computing failure
// links breadth-first and unioning output sets along failure chains.
func (b *Builder) Build() *Automaton {
	queue := make([]*node, 0, len(b.root.next))
	for _, child := range b.root.next {
		child.fail = b.root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for c, child := range cur.next {
			f := cur.fail
			for f != nil {
				if next, ok := f.next[c]; ok {
					child.fail = next
					break
				}
				f = f.fail
			}
			if child.fail == nil {
				child.fail = b.root
			}
			if len(child.fail.out) > 0 {
				child.out = append(child.out, child.fail.out...)
			}
			queue = append(queue, child)
		}
	}
	return &Automaton{root: b.root, size: b.n}
}

// Size returns the number of patterns compiled into the automaton.
func (a *Automaton) Size() int { return a.size }

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Scan runs a single pass over text and returns every match, in increasing
// end-position order (equivalently, the order the automaton discovers them).
// Cost is O(n + z) in input length n and match count z.
func (a *Automaton) Scan(text []byte) []Match {
	var matches []Match
	cur := a.root
	for i := 0; i < len(text); i++ {
		c := lowerByte(text[i])
		for cur != a.root {
			if _, ok := cur.next[c]; ok {
				break
			}
			cur = cur.fail
		}
		if next, ok := cur.next[c]; ok {
			cur = next
		} else {
			cur = a.root
		}
		if len(cur.out) == 0 {
			continue
		}
		for _, pe := range cur.out {
			start := i - pe.length + 1
			if start < 0 {
				continue
			}
			if pe.wholeToken {
				if start > 0 && isWordByte(lowerByte(text[start-1])) {
					continue
				}
				if i+1 < len(text) && isWordByte(lowerByte(text[i+1])) {
					continue
				}
			}
			matches = append(matches, Match{Start: start, End: i + 1, Payload: pe.payload})
		}
	}
	return matches
}
