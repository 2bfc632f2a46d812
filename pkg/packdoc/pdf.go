package packdoc

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
)

const (
	fontFamily   = "Helvetica"
	lineHeight   = 6.0
	pageMargin   = 20.0
	bottomMargin = 20.0
)

// RenderPDF writes the pack to w. Any drawing error is returned and
// nothing useful should be persisted by the caller.
func RenderPDF(w io.Writer, in Input) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.AliasNbPages("")
	pdf.SetTitle(in.Strategy.CaseTitle, true)
	pdf.SetAuthor("Tradie Recovery", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	footer := tr(footerText(in))

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 5, footer, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	drawCover(pdf, tr, in)

	pdf.AddPage()
	for _, sec := range buildSections(in) {
		drawSection(pdf, tr, sec)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func drawCover(pdf *gofpdf.Fpdf, tr func(string) string, in Input) {
	title, lines := coverLines(in)

	pdf.AddPage()
	pdf.SetFillColor(30, 41, 59)
	pdf.Rect(0, 0, 210, 90, "F")

	pdf.SetY(35)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(fontFamily, "B", 26)
	pdf.CellFormat(0, 12, tr("Payment Recovery Strategy Pack"), "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 14)
	pdf.MultiCell(0, 8, tr(title), "", "C", false)

	pdf.SetY(110)
	pdf.SetTextColor(30, 41, 59)
	pdf.SetFont(fontFamily, "", 12)
	for _, l := range lines {
		pdf.CellFormat(0, 9, tr(l), "", 1, "C", false, 0, "")
	}
}

func drawSection(pdf *gofpdf.Fpdf, tr func(string) string, sec section) {
	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 15)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 9, tr(sec.Title), "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 11)
	pdf.SetTextColor(40, 40, 40)
	for _, p := range sec.Paragraphs {
		if p == "" {
			continue
		}
		pdf.MultiCell(0, lineHeight, tr(p), "", "L", false)
		pdf.Ln(2)
	}
	for _, b := range sec.Bullets {
		pdf.SetX(24)
		pdf.MultiCell(0, lineHeight, tr("- "+b), "", "L", false)
	}
	if sec.Table != nil {
		drawTable(pdf, tr, sec.Table)
	}
}

func drawTable(pdf *gofpdf.Fpdf, tr func(string) string, t *table) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(226, 232, 240)
	for i, h := range t.Header {
		pdf.CellFormat(t.Widths[i], 8, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 10)
	_, pageH := pdf.GetPageSize()

	for _, row := range t.Rows {
		// row height follows the tallest wrapped cell
		lines := 1
		for i, cell := range row {
			if n := len(pdf.SplitLines([]byte(tr(cell)), t.Widths[i]-2)); n > lines {
				lines = n
			}
		}
		h := lineHeight * float64(lines)

		x, y := pdf.GetXY()
		if y+h > pageH-bottomMargin {
			pdf.AddPage()
			x, y = pdf.GetXY()
		}

		cx := x
		for i, cell := range row {
			pdf.Rect(cx, y, t.Widths[i], h, "D")
			pdf.SetXY(cx, y)
			pdf.MultiCell(t.Widths[i], lineHeight, tr(cell), "", "L", false)
			cx += t.Widths[i]
		}
		pdf.SetXY(x, y+h)
	}
}
