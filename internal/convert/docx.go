package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

const docxDocumentXMLPath = "word/document.xml"
const docxContentTypesPath = "[Content_Types].xml"
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// wtTag matches <w:t>text</w:t> (and any attributes) inside word/document.xml.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// wParaTag matches a whole paragraph element so paragraph boundaries become
// Markdown blank-line breaks rather than being flattened to single spaces.
var wParaTag = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)

var docxPartNameRe = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
var docxPartNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

// DOCXConverter extracts <w:t> text nodes from word/document.xml, grouping
// by <w:p> paragraph boundaries so Markdown structure survives, adapted
// from the teacher's extractDOCX (which flattened everything to one line;
// flattening loses the structural facts S2 looks for, so paragraphs are
// now preserved as blank-line-separated blocks).
type DOCXConverter struct{}

func (c *DOCXConverter) Convert(content []byte) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{}, fmt.Errorf("not a zip: %w", err)
	}

	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docPath {
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
		docXML = buf.Bytes()
		break
	}
	if docXML == nil {
		return Result{}, fmt.Errorf("%s not found", docPath)
	}

	paragraphs := wParaTag.FindAllString(string(docXML), -1)
	var blocks []string
	for _, p := range paragraphs {
		parts := wtTag.FindAllStringSubmatch(p, -1)
		if len(parts) == 0 {
			continue
		}
		var b strings.Builder
		for i, m := range parts {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(m[1])
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			blocks = append(blocks, s)
		}
	}

	return Result{
		Markdown:     []byte(strings.Join(blocks, "\n\n")),
		MIMEDetected: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, nil
}

func findDocxMainDocumentPath(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != docxContentTypesPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return ""
		}
		_ = rc.Close()

		content := buf.String()
		if m := docxPartNameRe.FindStringSubmatch(content); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
		if m := docxPartNameRe2.FindStringSubmatch(content); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
		return ""
	}
	return ""
}
