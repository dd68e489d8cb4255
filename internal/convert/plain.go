package convert

import (
	"strings"
	"unicode/utf8"
)

// PlainConverter passes plain text and Markdown sources through unchanged,
// validating UTF-8, adapted from the teacher's extractPlain.
type PlainConverter struct{}

func (c *PlainConverter) Convert(content []byte) (Result, error) {
	if !utf8.Valid(content) {
		content = []byte(strings.ToValidUTF8(string(content), "�"))
	}
	return Result{Markdown: content, MIMEDetected: "text/plain"}, nil
}
