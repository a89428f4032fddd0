package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBlocksHeadings(t *testing.T) {
	blocks := ParseBlocks("# Title\n### Sub\n######### Deep")

	require.Len(t, blocks, 3)
	require.Equal(t, BlockHeading, blocks[0].Kind)
	require.Equal(t, 1, blocks[0].Level)
	require.Equal(t, "Title", blocks[0].Text)
	require.Equal(t, 3, blocks[1].Level)
	require.Equal(t, 9, blocks[2].Level)
}

func TestParseBlocksHeadingBeyondNineDegrades(t *testing.T) {
	blocks := ParseBlocks("########## too deep")

	require.Len(t, blocks, 1)
	require.Equal(t, BlockParagraph, blocks[0].Kind)
}

func TestParseBlocksHashWithoutSpaceIsParagraph(t *testing.T) {
	blocks := ParseBlocks("#hashtag")

	require.Len(t, blocks, 1)
	require.Equal(t, BlockParagraph, blocks[0].Kind)
}

func TestParseBlocksListItems(t *testing.T) {
	blocks := ParseBlocks("- Point A\n* Point B with **bold text**")

	require.Len(t, blocks, 2)
	require.Equal(t, BlockListItem, blocks[0].Kind)
	require.Equal(t, []Span{{Text: "Point A"}}, blocks[0].Spans)
	require.Equal(t, []Span{
		{Text: "Point B with "},
		{Text: "bold text", Bold: true},
	}, blocks[1].Spans)
}

func TestParseBlocksHorizontalRule(t *testing.T) {
	blocks := ParseBlocks("intro\n\n----\n\nbody")

	require.Len(t, blocks, 3)
	require.Equal(t, BlockParagraph, blocks[0].Kind)
	require.Equal(t, BlockRule, blocks[1].Kind)
	require.Equal(t, BlockParagraph, blocks[2].Kind)
}

func TestParseBlocksShortDashRunIsParagraph(t *testing.T) {
	blocks := ParseBlocks("--")

	require.Len(t, blocks, 1)
	require.Equal(t, BlockParagraph, blocks[0].Kind)
}

func TestParseBlocksBlankLinesSkipped(t *testing.T) {
	blocks := ParseBlocks("one\n\n\ntwo")
	require.Len(t, blocks, 2)
}

func TestParseBlocksCodeFence(t *testing.T) {
	content := "before\n```\nStart -> A -> B\n  indented | not a table\n```\nafter"
	blocks := ParseBlocks(content)

	require.Len(t, blocks, 3)
	require.Equal(t, BlockCode, blocks[1].Kind)
	require.Equal(t, []string{"Start -> A -> B", "  indented | not a table"}, blocks[1].Lines)
	require.Equal(t, BlockParagraph, blocks[2].Kind)
}

func TestParseBlocksUnclosedCodeFenceFlushes(t *testing.T) {
	blocks := ParseBlocks("```\nline one\nline two")

	require.Len(t, blocks, 1)
	require.Equal(t, BlockCode, blocks[0].Kind)
	require.Equal(t, []string{"line one", "line two"}, blocks[0].Lines)
}

func TestParseBlocksTable(t *testing.T) {
	content := "| Metric | Value | Unit |\n|---|---|---|\n| Speed | 100 | km/h |\n| Weight | 50 | kg |"
	blocks := ParseBlocks(content)

	require.Len(t, blocks, 1)
	table := blocks[0]
	require.Equal(t, BlockTable, table.Kind)
	require.Equal(t, []string{"Metric", "Value", "Unit"}, table.Header)
	require.Len(t, table.Rows, 2)
	require.Equal(t, []string{"Speed", "100", "km/h"}, table.Rows[0])
}

func TestParseBlocksTableDropsMismatchedRow(t *testing.T) {
	content := "| A | B | C |\n|---|---|---|\n| 1 | 2 | 3 |\n| only | two |\n| 4 | 5 | 6 |"
	blocks := ParseBlocks(content)

	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Rows, 2)
}

func TestParseBlocksTableFlushedByFollowingText(t *testing.T) {
	content := "| A | B |\n| 1 | 2 |\nplain text after"
	blocks := ParseBlocks(content)

	require.Len(t, blocks, 2)
	require.Equal(t, BlockTable, blocks[0].Kind)
	require.Equal(t, []string{"A", "B"}, blocks[0].Header)
	require.Equal(t, [][]string{{"1", "2"}}, blocks[0].Rows)
	require.Equal(t, BlockParagraph, blocks[1].Kind)
}

func TestParseBlocksTableFlushedAtEndOfInput(t *testing.T) {
	blocks := ParseBlocks("| A | B |\n| 1 | 2 |")

	require.Len(t, blocks, 1)
	require.Equal(t, BlockTable, blocks[0].Kind)
}

func TestSplitBold(t *testing.T) {
	spans := SplitBold("a **b** c **d**")
	require.Equal(t, []Span{
		{Text: "a "},
		{Text: "b", Bold: true},
		{Text: " c "},
		{Text: "d", Bold: true},
	}, spans)
}

func TestSplitBoldNoMarkers(t *testing.T) {
	require.Equal(t, []Span{{Text: "plain"}}, SplitBold("plain"))
}

func TestSplitBoldUnpairedMarkers(t *testing.T) {
	require.Equal(t, []Span{{Text: "a ** b"}}, SplitBold("a ** b"))
}
