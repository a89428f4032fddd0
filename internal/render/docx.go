package render

import (
	"os"
	"strings"

	docx "github.com/fumiama/go-docx"
)

const (
	docxHeadingColor = "1F3864"
	docxMonospace    = "Courier New"
	docxTableWidth   = 8500
)

// writeDOCX emits the blocks as a flowable word-processing document. No
// manual pagination: headings, tables, list items and monospace runs map
// directly onto document elements.
func writeDOCX(path string, blocks []Block, info *StudentInfo) error {
	doc := docx.New().WithDefaultTheme()

	lines := letterheadLines(info)
	for _, line := range lines {
		paragraph := doc.AddParagraph()
		paragraph.AddText(line.Label + ": ").Bold()
		paragraph.AddText(line.Value)
	}
	if len(lines) > 0 {
		doc.AddParagraph()
	}

	for _, block := range blocks {
		switch block.Kind {
		case BlockHeading:
			paragraph := doc.AddParagraph()
			paragraph.AddText(block.Text).
				Size(headingSizeDOCX(block.Level)).
				Bold().
				Color(docxHeadingColor)
		case BlockCode:
			for _, line := range block.Lines {
				paragraph := doc.AddParagraph()
				paragraph.AddText(line).Font(docxMonospace, docxMonospace, docxMonospace, "")
			}
		case BlockTable:
			writeDOCXTable(doc, block)
		case BlockRule:
			paragraph := doc.AddParagraph()
			paragraph.AddText(strings.Repeat("—", 24)).Color("787878")
		case BlockListItem:
			paragraph := doc.AddParagraph()
			paragraph.AddText("- ")
			writeDOCXSpans(paragraph, block.Spans)
		default:
			paragraph := doc.AddParagraph()
			writeDOCXSpans(paragraph, block.Spans)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := doc.WriteTo(file); err != nil {
		return err
	}

	return nil
}

func writeDOCXSpans(paragraph *docx.Paragraph, spans []Span) {
	for _, span := range spans {
		run := paragraph.AddText(span.Text)
		if span.Bold {
			run.Bold()
		}
	}
}

func writeDOCXTable(doc *docx.Docx, block Block) {
	if len(block.Header) == 0 {
		return
	}

	table := doc.AddTable(len(block.Rows)+1, len(block.Header), docxTableWidth, nil)
	for column, cell := range block.Header {
		table.TableRows[0].TableCells[column].AddParagraph().AddText(cell).Bold()
	}
	for index, row := range block.Rows {
		for column, cell := range row {
			table.TableRows[index+1].TableCells[column].AddParagraph().AddText(cell)
		}
	}
}

func headingSizeDOCX(level int) string {
	switch level {
	case 1:
		return "36"
	case 2:
		return "32"
	case 3:
		return "28"
	default:
		return "26"
	}
}
