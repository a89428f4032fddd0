package render

import (
	"regexp"
	"strings"
)

// BlockKind discriminates the structural elements produced by ParseBlocks.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockCode
	BlockTable
	BlockRule
)

// Span is a run of inline text, optionally bold.
type Span struct {
	Text string
	Bold bool
}

// Block is one structural element of a parsed document.
type Block struct {
	Kind   BlockKind
	Level  int        // heading level, 1-9
	Text   string     // heading text
	Spans  []Span     // paragraph / list item content
	Lines  []string   // verbatim code block lines
	Header []string   // table header cells
	Rows   [][]string // table data rows
}

type parseState int

const (
	stateNormal parseState = iota
	stateCode
	stateTable
)

const fenceMarker = "```"

var (
	headingPattern = regexp.MustCompile(`^(#+)\s+(.*)$`)
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// ParseBlocks walks the content line by line, tracking whether it is inside a
// fenced code block or buffering pipe-table rows, and emits typed blocks. A
// table still buffered at end of input is flushed.
func ParseBlocks(content string) []Block {
	var (
		blocks    []Block
		codeLines []string
		tableRows []string
	)
	state := stateNormal

	flushTable := func() {
		if len(tableRows) == 0 {
			return
		}
		if block, ok := buildTable(tableRows); ok {
			blocks = append(blocks, block)
		}
		tableRows = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if state == stateCode {
			if strings.Contains(trimmed, fenceMarker) {
				blocks = append(blocks, Block{Kind: BlockCode, Lines: codeLines})
				codeLines = nil
				state = stateNormal
				continue
			}
			codeLines = append(codeLines, line)
			continue
		}

		if state == stateTable {
			if isTableRow(trimmed) {
				tableRows = append(tableRows, trimmed)
				continue
			}
			flushTable()
			state = stateNormal
			// fall through: the current line is re-processed in normal mode
		}

		switch {
		case trimmed == "":
			continue
		case strings.Contains(trimmed, fenceMarker):
			state = stateCode
		case isTableRow(trimmed):
			tableRows = append(tableRows, trimmed)
			state = stateTable
		default:
			blocks = append(blocks, normalBlock(trimmed))
		}
	}

	if state == stateCode && len(codeLines) > 0 {
		blocks = append(blocks, Block{Kind: BlockCode, Lines: codeLines})
	}
	flushTable()

	return blocks
}

func normalBlock(line string) Block {
	if isRuleLine(line) {
		return Block{Kind: BlockRule}
	}

	if match := headingPattern.FindStringSubmatch(line); match != nil {
		level := len(match[1])
		if level <= 9 {
			return Block{Kind: BlockHeading, Level: level, Text: strings.TrimSpace(match[2])}
		}
		// deeper than 9 degrades to a plain paragraph
		return Block{Kind: BlockParagraph, Spans: SplitBold(line)}
	}

	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return Block{Kind: BlockListItem, Spans: SplitBold(strings.TrimSpace(line[2:]))}
	}

	return Block{Kind: BlockParagraph, Spans: SplitBold(line)}
}

// isRuleLine reports whether the line is a horizontal rule such as --- or ***.
func isRuleLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	return strings.Trim(line, "-") == "" || strings.Trim(line, "*") == "" || strings.Trim(line, "_") == ""
}

func isTableRow(line string) bool {
	return len(line) >= 2 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
}

// isSeparatorRow reports whether the row is a markdown header separator such
// as |---|---|.
func isSeparatorRow(line string) bool {
	return strings.Contains(line, "-") && strings.Trim(line, "-|: ") == ""
}

func splitCells(row string) []string {
	parts := strings.Split(strings.Trim(row, "|"), "|")
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		cells = append(cells, strings.TrimSpace(part))
	}
	return cells
}

// buildTable converts buffered pipe rows into a table block. The first row is
// the header; separator rows are skipped; a data row whose cell count does
// not match the header is dropped.
func buildTable(rows []string) (Block, bool) {
	if len(rows) == 0 {
		return Block{}, false
	}

	header := splitCells(rows[0])
	block := Block{Kind: BlockTable, Header: header}

	for _, row := range rows[1:] {
		if isSeparatorRow(row) {
			continue
		}
		cells := splitCells(row)
		if len(cells) != len(header) {
			continue
		}
		block.Rows = append(block.Rows, cells)
	}

	return block, true
}

// SplitBold splits a line into spans around paired **...** markers,
// preserving order and any plain segments between them.
func SplitBold(text string) []Span {
	matches := boldPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Span{{Text: text}}
	}

	var spans []Span
	last := 0
	for _, match := range matches {
		if match[0] > last {
			spans = append(spans, Span{Text: text[last:match[0]]})
		}
		spans = append(spans, Span{Text: text[match[2]:match[3]], Bold: true})
		last = match[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}

	return spans
}
