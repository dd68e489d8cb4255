package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

const odtContentXMLPath = "content.xml"

// odtParaTag matches a whole <text:p>...</text:p> element, including its
// attributes, the same way wParaTag isolates <w:p> blocks in docx.go.
var odtParaTag = regexp.MustCompile(`(?s)<text:p[ >].*?</text:p>`)

// odtInnerTag strips any remaining OpenDocument markup (span styling,
// line-break elements, and similar) left inside a paragraph after the
// paragraph boundary itself has been captured.
var odtInnerTag = regexp.MustCompile(`<[^>]+>`)

// ODTConverter extracts paragraph text from OpenDocument Text's content.xml,
// grouping by <text:p> boundaries the same way DOCXConverter groups by
// <w:p>. OpenDocument's schema differs enough from OOXML's (content.xml
// instead of word/document.xml, text:p instead of w:p) that it needs its
// own regex set rather than reusing DOCXConverter's.
type ODTConverter struct{}

func (c *ODTConverter) Convert(content []byte) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{}, fmt.Errorf("not a zip: %w", err)
	}

	var contentXML []byte
	for _, f := range zr.File {
		if f.Name != odtContentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Result{}, fmt.Errorf("open %s: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return Result{}, fmt.Errorf("read %s: %w", f.Name, err)
		}
		_ = rc.Close()
		contentXML = buf.Bytes()
		break
	}
	if contentXML == nil {
		return Result{}, fmt.Errorf("%s not found", odtContentXMLPath)
	}

	paragraphs := odtParaTag.FindAllString(string(contentXML), -1)
	var blocks []string
	for _, p := range paragraphs {
		text := odtInnerTag.ReplaceAllString(p, "")
		if s := strings.TrimSpace(text); s != "" {
			blocks = append(blocks, s)
		}
	}

	return Result{
		Markdown:     []byte(strings.Join(blocks, "\n\n")),
		MIMEDetected: "application/vnd.oasis.opendocument.text",
	}, nil
}
