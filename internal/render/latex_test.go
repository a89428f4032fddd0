package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanLatexArrowChain(t *testing.T) {
	cleaned := CleanLatex(`$$\text{A} \to \text{C} \to \text{E}$$`)
	require.Equal(t, "A -> C -> E", cleaned)
}

func TestCleanLatexMultilineMathBlock(t *testing.T) {
	cleaned := CleanLatex("before $$line one\nline two$$ after")
	require.Equal(t, "before line one\nline two after", cleaned)
}

func TestCleanLatexBracketDelimiters(t *testing.T) {
	cleaned := CleanLatex(`\[E = mc^2\]`)
	require.Equal(t, "E = mc^2", cleaned)
}

func TestCleanLatexLeavesPlainTextAlone(t *testing.T) {
	input := "A normal sentence with $5 and a | pipe."
	require.Equal(t, input, CleanLatex(input))
}

func TestCleanLatexUnpairedDelimitersUntouched(t *testing.T) {
	input := `$$ only one pair marker`
	require.Equal(t, input, CleanLatex(input))
}
