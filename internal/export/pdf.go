package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"pustakam/internal/book"
)

// renderPDF builds a simple A4 document: a title page, then one page run per
// chapter. Markdown markup is flattened; PDF output favors readability over
// faithful rendering.
func renderPDF(project *book.Project) ([]byte, error) {
	project.SortModules()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.MultiCell(0, 12, latin1(project.Title), "", "C", false)
	if project.Description != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, latin1(project.Description), "", "L", false)
	}

	for _, module := range project.Modules {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		heading := fmt.Sprintf("Chapter %d: %s", module.OrderIndex+1, module.Title)
		pdf.MultiCell(0, 9, latin1(heading), "", "L", false)
		pdf.Ln(4)

		pdf.SetFont("Helvetica", "", 11)
		if module.Status == book.ModuleCompleted && module.Content != "" {
			for _, paragraph := range strings.Split(stripMarkdown(module.Content), "\n\n") {
				paragraph = strings.TrimSpace(paragraph)
				if paragraph == "" {
					continue
				}
				pdf.MultiCell(0, 5.5, latin1(paragraph), "", "L", false)
				pdf.Ln(3)
			}
		} else {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 5.5, incompleteNotice, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// latin1 maps text onto the character set of the built-in PDF fonts,
// replacing anything unrepresentable.
func latin1(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r < 0x100 {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
