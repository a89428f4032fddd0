package render

import (
	"regexp"
	"strings"
)

var (
	mathBlockPattern   = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	textWrapPattern    = regexp.MustCompile(`\\text\{(.*?)\}`)
	mathBracketPattern = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
)

// CleanLatex strips the small set of LaTeX artifacts the generator is known
// to emit. The four rewrites run in a fixed order and nothing else is
// touched; this is deliberately not general LaTeX handling.
func CleanLatex(content string) string {
	content = mathBlockPattern.ReplaceAllString(content, "$1")
	content = textWrapPattern.ReplaceAllString(content, "$1")
	content = strings.ReplaceAll(content, `\to`, "->")
	content = mathBracketPattern.ReplaceAllString(content, "$1")

	return content
}
