// Package convert adapts heterogeneous input formats into UTF-8 Markdown
// bytes for Ingest (S1). This is the "external converter" spec.md treats as
// an out-of-core collaborator, specified only at its interface: Ingest calls
// a Converter and never inspects format-specific internals.
//
// The concrete converters are adapted from the teacher's internal/extract
// package, which already solved PDF/DOCX/XLSX/PPTX/ODP/ODS text extraction;
// the difference here is that each converter now returns Markdown (with at
// least paragraph breaks and, for tabular formats, pipe-table syntax)
// instead of bare extracted text, since downstream Structure (S2) looks for
// Markdown structural cues.
package convert

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ConversionError is returned when a converter cannot produce Markdown from
// the given bytes.
type ConversionError struct {
	Format string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert: %s: %v", e.Format, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Result is what a Converter produces.
type Result struct {
	Markdown          []byte
	PageCountEstimate int
	MIMEDetected      string
}

// Converter turns raw source bytes into a Result. Implementations must not
// perform network I/O; URL sources are fetched by the caller before the
// bytes reach a Converter.
type Converter interface {
	Convert(content []byte) (Result, error)
}

// Registry dispatches to a Converter by file extension, mirroring the
// teacher's Extractor.ExtractBytes switch.
type Registry struct {
	byExt map[string]Converter
}

// NewRegistry returns a Registry pre-populated with every converter this
// package implements.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Converter)}
	pdf := &PDFConverter{}
	docx := &DOCXConverter{}
	odt := &ODTConverter{}
	excel := &ExcelConverter{}
	html := &HTMLConverter{}
	plain := &PlainConverter{}

	r.byExt[".pdf"] = pdf
	r.byExt[".docx"] = docx
	r.byExt[".odt"] = odt
	r.byExt[".xlsx"] = excel
	r.byExt[".html"] = html
	r.byExt[".htm"] = html
	r.byExt[".txt"] = plain
	r.byExt[".md"] = plain
	r.byExt[".markdown"] = plain
	r.byExt[".rst"] = plain
	return r
}

// ConvertPath dispatches by the file extension of path, falling back to the
// plain-text converter for unknown extensions — matching the teacher's
// unknown-extension fallback.
func (r *Registry) ConvertPath(path string, content []byte) (Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	c, ok := r.byExt[ext]
	if !ok {
		c = &PlainConverter{}
	}
	res, err := c.Convert(content)
	if err != nil {
		return Result{}, &ConversionError{Format: ext, Err: err}
	}
	return res, nil
}
