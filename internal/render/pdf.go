package render

import "github.com/go-pdf/fpdf"

const (
	pdfMargin     = 15.0
	pdfBodySize   = 12.0
	pdfLineHeight = 5.5
)

// writePDF lays the blocks out on fixed A4 pages. Paragraph text flows
// through the engine's wrapping; block starts and table rows check the
// remaining vertical space themselves and open a new page when the next line
// no longer fits.
func writePDF(path string, blocks []Block, info *StudentInfo) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.AddPage()

	pageWidth, pageHeight := doc.GetPageSize()
	usable := pageWidth - 2*pdfMargin

	ensureSpace := func(height float64) {
		if doc.GetY()+height > pageHeight-pdfMargin {
			doc.AddPage()
		}
	}

	for _, line := range letterheadLines(info) {
		ensureSpace(pdfLineHeight)
		doc.SetFont("Helvetica", "B", 11)
		doc.Write(pdfLineHeight, line.Label+": ")
		doc.SetFont("Helvetica", "", 11)
		doc.Write(pdfLineHeight, line.Value)
		doc.Ln(pdfLineHeight)
	}
	if info != nil && len(letterheadLines(info)) > 0 {
		doc.Ln(pdfLineHeight)
	}

	for _, block := range blocks {
		switch block.Kind {
		case BlockHeading:
			ensureSpace(headingSizePDF(block.Level) / 2)
			doc.SetFont("Helvetica", "B", headingSizePDF(block.Level))
			doc.SetTextColor(31, 56, 100)
			doc.MultiCell(usable, headingSizePDF(block.Level)/2, block.Text, "", "L", false)
			doc.SetTextColor(0, 0, 0)
			doc.Ln(2)
		case BlockCode:
			doc.SetFont("Courier", "", 10)
			for _, line := range block.Lines {
				ensureSpace(4.5)
				doc.MultiCell(usable, 4.5, line, "", "L", false)
			}
			doc.Ln(2)
		case BlockTable:
			writePDFTable(doc, block, usable, ensureSpace)
			doc.Ln(2)
		case BlockRule:
			ensureSpace(pdfLineHeight)
			doc.SetDrawColor(120, 120, 120)
			y := doc.GetY() + pdfLineHeight/2
			doc.Line(pdfMargin, y, pageWidth-pdfMargin, y)
			doc.SetDrawColor(0, 0, 0)
			doc.SetY(y + pdfLineHeight/2)
		case BlockListItem:
			ensureSpace(pdfLineHeight)
			doc.SetFont("Helvetica", "", pdfBodySize)
			doc.Write(pdfLineHeight, "- ")
			writePDFSpans(doc, block.Spans)
			doc.Ln(pdfLineHeight)
		default:
			ensureSpace(pdfLineHeight)
			writePDFSpans(doc, block.Spans)
			doc.Ln(pdfLineHeight)
			doc.Ln(2)
		}
	}

	return doc.OutputFileAndClose(path)
}

func writePDFSpans(doc *fpdf.Fpdf, spans []Span) {
	for _, span := range spans {
		style := ""
		if span.Bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, pdfBodySize)
		doc.Write(pdfLineHeight, span.Text)
	}
}

func writePDFTable(doc *fpdf.Fpdf, block Block, usable float64, ensureSpace func(float64)) {
	if len(block.Header) == 0 {
		return
	}

	colWidth := usable / float64(len(block.Header))
	const rowHeight = 7.0

	ensureSpace(rowHeight)
	doc.SetFont("Helvetica", "B", pdfBodySize)
	for _, cell := range block.Header {
		doc.CellFormat(colWidth, rowHeight, cell, "1", 0, "L", false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", pdfBodySize)
	for _, row := range block.Rows {
		ensureSpace(rowHeight)
		for _, cell := range row {
			doc.CellFormat(colWidth, rowHeight, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
}

func headingSizePDF(level int) float64 {
	switch level {
	case 1:
		return 18
	case 2:
		return 16
	case 3:
		return 14
	default:
		return 12
	}
}
