package answer

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Tier identifies which stage of the extraction ladder produced a result.
type Tier int

const (
	// TierParsed means the cleaned response was valid JSON as-is.
	TierParsed Tier = iota
	// TierRecovered means a JSON object was pulled out of surrounding prose.
	TierRecovered
	// TierFallback means no JSON was found and the raw text became the answer.
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierParsed:
		return "parsed"
	case TierRecovered:
		return "recovered"
	default:
		return "fallback"
	}
}

// Extraction pairs the recovered record with the tier that produced it, so
// callers and tests can tell a clean parse from a salvage.
type Extraction struct {
	Result AssignmentResult
	Tier   Tier
}

const (
	fallbackTitle    = "Assignment Submission"
	fallbackQuestion = "Assignment"
	fallbackSummary  = "See the answer section."
	fallbackNote     = "The model response was not valid structured data; the raw output is included as the answer."
)

// Extract turns an arbitrary model response into an AssignmentResult. It is
// total over all inputs, including the empty string: first a strict parse of
// the fence-stripped text, then a greedy first-'{'..last-'}' recovery, then a
// fallback record carrying the raw text verbatim as the answer.
//
// Known limitation: the greedy brace span maximises the captured range (last
// '}' rather than first), but an answer whose own text contains unbalanced
// braces, e.g. source code, can still corrupt recovery. Such inputs land in
// the fallback tier or produce a truncated record.
func Extract(raw, prompt string) Extraction {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if result, ok := parseObject(cleaned); ok {
		return Extraction{Result: finalize(result, raw), Tier: TierParsed}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if result, ok := parseObject(raw[start : end+1]); ok {
			return Extraction{Result: finalize(result, raw), Tier: TierRecovered}
		}
	}

	fallback := AssignmentResult{
		Title:    fallbackTitle,
		Question: fallbackQuestion,
		Answer:   raw,
		Summary:  fallbackSummary,
		Note:     fallbackNote,
	}
	if strings.TrimSpace(prompt) != "" {
		fallback.Question = prompt
	}

	return Extraction{Result: finalize(fallback, raw), Tier: TierFallback}
}

// parseObject attempts a strict parse and rejects any top-level value that is
// not a JSON object.
func parseObject(s string) (AssignmentResult, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return AssignmentResult{}, false
	}

	var result AssignmentResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return AssignmentResult{}, false
	}

	return result, true
}

func finalize(result AssignmentResult, raw string) AssignmentResult {
	if strings.TrimSpace(result.ID) == "" {
		result.ID = uuid.NewString()
	}
	if result.Answer == "" {
		result.Answer = raw
	}

	return result
}
