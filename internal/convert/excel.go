package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelConverter renders each worksheet as a Markdown pipe table, adapted
// from the teacher's extractExcel (which joined cells with tabs into plain
// text; pipe-table syntax lets S2's table detector recognize the output).
type ExcelConverter struct{}

func (c *ExcelConverter) Convert(content []byte) (Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Result{}, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return Result{}, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		buf.WriteString("## " + sheet + "\n\n")
		writeMarkdownTable(&buf, rows)
		buf.WriteString("\n\n")
	}
	return Result{
		Markdown:     []byte(strings.TrimSpace(buf.String())),
		MIMEDetected: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

func writeMarkdownTable(buf *strings.Builder, rows [][]string) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		buf.WriteString("| " + strings.Join(padded, " | ") + " |\n")
		if i == 0 {
			sep := make([]string, width)
			for j := range sep {
				sep[j] = "---"
			}
			buf.WriteString("| " + strings.Join(sep, " | ") + " |\n")
		}
	}
}
