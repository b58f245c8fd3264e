package loader

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"askdoc/src/core/document"
)

// tableSep flags lines whose internal spacing suggests tabular layout, so
// tables survive chunking as a contiguous block instead of being interleaved
// with prose.
var tableSep = regexp.MustCompile(`(\s{2,}|\t)`)

func isTableLine(line string) bool {
	return tableSep.MatchString(line) && len(strings.TrimSpace(line)) > 10
}

// loadPDF extracts one unit per page. Prose and table-ish lines are grouped
// into separate labeled sections; pages with no extractable text are
// skipped.
func loadPDF(path string) ([]document.Unit, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &document.LoadError{Source: path, Err: fmt.Errorf("open PDF: %w", err)}
	}
	defer f.Close()

	source := filepath.Base(path)
	var units []document.Unit

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &document.LoadError{Source: path, Err: fmt.Errorf("extract page %d: %w", pageNum, err)}
		}

		combined := sectionPage(text)
		if combined == "" {
			continue
		}

		units = append(units, document.Unit{
			Text: combined,
			Metadata: map[string]any{
				document.MetaPage:   pageNum,
				document.MetaSource: source,
			},
		})
	}

	return units, nil
}

// sectionPage splits a page's text into a prose section and a table section.
func sectionPage(text string) string {
	var textLines, tableLines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		if isTableLine(line) {
			tableLines = append(tableLines, line)
		} else {
			textLines = append(textLines, line)
		}
	}

	var sb strings.Builder
	if len(textLines) > 0 {
		sb.WriteString("### Text Content ###\n")
		sb.WriteString(strings.Join(textLines, "\n"))
		sb.WriteString("\n")
	}
	if len(tableLines) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("### Table Content ###\n")
		sb.WriteString(strings.Join(tableLines, "\n"))
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}
