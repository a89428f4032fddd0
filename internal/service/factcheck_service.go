package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/answer"
	"github.com/cheatwell/cheatwell-api/pkg/ai"
	"github.com/cheatwell/cheatwell-api/pkg/tavily"
)

// ErrFactCheckDisabled indicates no verification backend is configured.
var ErrFactCheckDisabled = errors.New("fact checking is not configured")

const (
	maxClaims    = 8
	maxCitations = 5
)

var (
	numericCitationPattern = regexp.MustCompile(`\[\d+\]`)
	authorCitationPattern  = regexp.MustCompile(`\([A-Z][a-z]+,\s\d{4}\)`)
)

// FactCheckService verifies factual claims in a generated answer and
// scores how trustworthy it is.
type FactCheckService interface {
	Verify(ctx context.Context, result answer.AssignmentResult) (*answer.Verification, error)
}

type factCheckService struct {
	completer     ai.Completer
	search        Searcher
	minConfidence float64
	logger        zerolog.Logger
}

// NewFactCheckService constructs the fact checker. search may be nil;
// claims then stay unverified instead of failing the check.
func NewFactCheckService(completer ai.Completer, search Searcher, minConfidence float64, logger zerolog.Logger) FactCheckService {
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = 0.6
	}
	return &factCheckService{
		completer:     completer,
		search:        search,
		minConfidence: minConfidence,
		logger:        logger.With().Str("component", "factcheck_service").Logger(),
	}
}

func (s *factCheckService) Verify(ctx context.Context, result answer.AssignmentResult) (*answer.Verification, error) {
	if s.completer == nil {
		return nil, ErrFactCheckDisabled
	}

	claims, err := s.extractClaims(ctx, result.Answer)
	if err != nil {
		return nil, err
	}

	checks := make([]answer.ClaimCheck, 0, len(claims))
	supported, unverified := 0, 0
	for _, claim := range claims {
		check := s.checkClaim(ctx, claim)
		switch check.Status {
		case answer.ClaimSupported:
			supported++
		case answer.ClaimUnverified:
			unverified++
		}
		checks = append(checks, check)
	}

	score := 1.0
	if len(checks) > 0 {
		score = (float64(supported) + 0.5*float64(unverified)) / float64(len(checks))
	}

	verification := &answer.Verification{
		TrustScore: score,
		Claims:     checks,
		Citations:  checkCitations(result.Answer),
		IsReliable: score >= s.minConfidence,
	}

	s.logger.Info().
		Float64("trust_score", score).
		Int("claims", len(checks)).
		Bool("reliable", verification.IsReliable).
		Msg("answer verified")

	return verification, nil
}

// extractClaims asks the model for the answer's checkable factual
// statements as a JSON string array.
func (s *factCheckService) extractClaims(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("nothing to verify")
	}

	system := fmt.Sprintf("Extract the %d most important verifiable factual claims from the user's text. "+
		"Reply with a JSON array of short claim strings and nothing else.", maxClaims)

	raw, err := s.completer.Complete(ctx, system, text)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	claims, err := parseClaimArray(raw)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	if len(claims) > maxClaims {
		claims = claims[:maxClaims]
	}
	return claims, nil
}

// checkClaim researches one claim and asks the model for a verdict.
// Any failure along the way degrades the claim to unverified.
func (s *factCheckService) checkClaim(ctx context.Context, claim string) answer.ClaimCheck {
	check := answer.ClaimCheck{Claim: claim, Status: answer.ClaimUnverified}

	if s.search == nil {
		check.Reasoning = "no search provider configured"
		return check
	}

	resp, err := s.search.Search(ctx, tavily.SearchRequest{Query: claim, MaxResults: 3, IncludeAnswer: true})
	if err != nil {
		s.logger.Warn().Err(err).Str("claim", claim).Msg("claim research failed")
		check.Reasoning = "research unavailable"
		return check
	}

	var evidence strings.Builder
	if resp.Answer != "" {
		evidence.WriteString(resp.Answer)
		evidence.WriteString("\n")
	}
	source := ""
	for _, hit := range resp.Results {
		if source == "" {
			source = hit.URL
		}
		evidence.WriteString(hit.Content)
		evidence.WriteString("\n")
	}

	system := "You are a careful fact checker. Given a claim and evidence, reply with a JSON object " +
		`{"status":"supported"|"contradicted"|"unverified","reasoning":"..."} and nothing else.`
	user := fmt.Sprintf("Claim: %s\n\nEvidence:\n%s", claim, evidence.String())

	raw, err := s.completer.Complete(ctx, system, user)
	if err != nil {
		s.logger.Warn().Err(err).Str("claim", claim).Msg("claim verdict failed")
		check.Reasoning = "verdict unavailable"
		return check
	}

	var verdict struct {
		Status    string `json:"status"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &verdict); err != nil {
		check.Reasoning = "verdict was not parseable"
		return check
	}

	switch strings.ToLower(verdict.Status) {
	case "supported":
		check.Status = answer.ClaimSupported
	case "contradicted":
		check.Status = answer.ClaimContradicted
	case "unverified":
		check.Status = answer.ClaimUnverified
	}
	check.Reasoning = verdict.Reasoning
	check.Source = source
	return check
}

// checkCitations scans the answer for citation markers. Without the
// original bibliography they cannot be resolved, so they are flagged
// for the student to verify.
func checkCitations(text string) []answer.CitationCheck {
	seen := map[string]bool{}
	var checks []answer.CitationCheck

	for _, pattern := range []*regexp.Regexp{numericCitationPattern, authorCitationPattern} {
		for _, match := range pattern.FindAllString(text, -1) {
			if seen[match] || len(checks) >= maxCitations {
				continue
			}
			seen[match] = true
			checks = append(checks, answer.CitationCheck{
				Citation: match,
				Status:   answer.ClaimUnverified,
				Note:     "citation present but not resolved against a bibliography",
			})
		}
	}

	return checks
}

// parseClaimArray tolerates fenced or prose-wrapped JSON arrays.
func parseClaimArray(raw string) ([]string, error) {
	cleaned := stripFences(raw)

	var claims []string
	if err := json.Unmarshal([]byte(cleaned), &claims); err == nil {
		return claims, nil
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &claims); err == nil {
			return claims, nil
		}
	}

	return nil, fmt.Errorf("claim list was not parseable")
}

func stripFences(raw string) string {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	return strings.TrimSpace(raw)
}
