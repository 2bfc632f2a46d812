package packdoc

import (
	"fmt"
	"io"
	"strconv"

	docx "github.com/fumiama/go-docx"
)

// sizes are in half-points
const (
	docxTitleSize   = 52
	docxSubtitle    = 32
	docxCoverSize   = 24
	docxHeadingSize = 30
	docxBodySize    = 22
	docxTableSize   = 20
	docxFooterSize  = 16
)

// RenderDOCX writes the same sections as RenderPDF as a Word document.
func RenderDOCX(w io.Writer, in Input) error {
	doc := docx.New().WithDefaultTheme()

	title, lines := coverLines(in)
	addParagraph(doc, "Payment Recovery Strategy Pack", docxTitleSize, true, "center")
	addParagraph(doc, title, docxSubtitle, false, "center")
	for _, l := range lines {
		addParagraph(doc, l, docxCoverSize, false, "center")
	}
	doc.AddParagraph().AddPageBreaks()

	for _, sec := range buildSections(in) {
		addParagraph(doc, sec.Title, docxHeadingSize, true, "start")
		for _, p := range sec.Paragraphs {
			if p != "" {
				addParagraph(doc, p, docxBodySize, false, "start")
			}
		}
		for _, item := range sec.Bullets {
			addParagraph(doc, "• "+item, docxBodySize, false, "start")
		}
		if sec.Table != nil {
			addTable(doc, sec.Table)
		}
	}

	addParagraph(doc, footerText(in), docxFooterSize, false, "center")

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("render docx: %w", err)
	}
	return nil
}

func addParagraph(doc *docx.Docx, text string, size int, bold bool, align string) {
	run := doc.AddParagraph().Justification(align).AddText(text).Size(strconv.Itoa(size))
	if bold {
		run.Bold()
	}
}

func addTable(doc *docx.Docx, t *table) {
	rows := append([][]string{t.Header}, t.Rows...)
	tbl := doc.AddTable(len(rows), len(t.Header), 0, nil)
	for i, row := range tbl.TableRows {
		for j, cell := range row.TableCells {
			if j >= len(rows[i]) {
				continue
			}
			run := cell.AddParagraph().AddText(rows[i][j]).Size(strconv.Itoa(docxTableSize))
			if i == 0 {
				run.Bold()
			}
		}
	}
}
