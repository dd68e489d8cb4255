package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFConverter extracts plain text per page via ledongthuc/pdf and joins
// pages with blank lines, which Markdown treats as paragraph breaks.
type PDFConverter struct{}

func (c *PDFConverter) Convert(content []byte) (Result, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{}, fmt.Errorf("open PDF: %w", err)
	}
	var buf strings.Builder
	numPages := r.NumPage()
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Result{}, fmt.Errorf("extract page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		if i < numPages-1 {
			buf.WriteString("\n\n")
		}
	}
	return Result{
		Markdown:          []byte(strings.TrimSpace(buf.String())),
		PageCountEstimate: numPages,
		MIMEDetected:      "application/pdf",
	}, nil
}
