package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/dto"
	"github.com/cheatwell/cheatwell-api/internal/observability"
	"github.com/cheatwell/cheatwell-api/pkg/tavily"
)

// ErrResearchDisabled indicates no search provider is configured.
var ErrResearchDisabled = errors.New("research provider is not configured")

const defaultMaxResults = 5

// Searcher abstracts the web search provider.
type Searcher interface {
	Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error)
}

// ResearchService performs cached web research for a topic.
type ResearchService interface {
	Research(ctx context.Context, query string, maxResults int) (dto.ResearchResponse, error)
}

type researchService struct {
	search    Searcher
	cache     *redis.Client
	ttl       time.Duration
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewResearchService constructs the research service. search may be
// nil when no provider is configured; cache may be nil to disable
// caching.
func NewResearchService(search Searcher, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ResearchService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &researchService{
		search:    search,
		cache:     cache,
		ttl:       ttl,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "research_service").Logger(),
	}
}

func (s *researchService) Research(ctx context.Context, query string, maxResults int) (dto.ResearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return dto.ResearchResponse{}, fmt.Errorf("research query must not be empty")
	}
	if s.search == nil {
		return dto.ResearchResponse{}, ErrResearchDisabled
	}
	if maxResults <= 0 || maxResults > 10 {
		maxResults = defaultMaxResults
	}

	if cached, ok := s.fetchCache(ctx, query, maxResults); ok {
		cached.Cached = true
		observability.ResearchLookups().WithLabelValues("hit").Inc()
		return cached, nil
	}

	resp, err := s.search.Search(ctx, tavily.SearchRequest{
		Query:         query,
		MaxResults:    maxResults,
		SearchDepth:   "advanced",
		IncludeAnswer: true,
	})
	if err != nil {
		observability.ResearchLookups().WithLabelValues("error").Inc()
		return dto.ResearchResponse{}, fmt.Errorf("web search failed: %w", err)
	}

	result := s.assemble(query, resp)
	s.writeCache(ctx, query, maxResults, result)
	observability.ResearchLookups().WithLabelValues("miss").Inc()

	return result, nil
}

// assemble flattens the search hits into one prompt-ready context
// string. Snippets pass through the HTML sanitizer because search
// providers occasionally return markup fragments.
func (s *researchService) assemble(query string, resp *tavily.SearchResponse) dto.ResearchResponse {
	var builder strings.Builder
	if answer := strings.TrimSpace(resp.Answer); answer != "" {
		builder.WriteString(answer)
		builder.WriteString("\n\n")
	}

	sources := make([]dto.ResearchSource, 0, len(resp.Results))
	for i, hit := range resp.Results {
		snippet := strings.TrimSpace(s.sanitizer.Sanitize(hit.Content))
		if snippet == "" {
			continue
		}
		sources = append(sources, dto.ResearchSource{
			Title:   hit.Title,
			URL:     hit.URL,
			Snippet: snippet,
			Score:   hit.Score,
		})
		builder.WriteString(fmt.Sprintf("[%d] %s (%s)\n%s\n\n", i+1, hit.Title, hit.URL, snippet))
	}

	return dto.ResearchResponse{
		Query:   query,
		Context: strings.TrimSpace(builder.String()),
		Sources: sources,
	}
}

func (s *researchService) fetchCache(ctx context.Context, query string, maxResults int) (dto.ResearchResponse, bool) {
	if s.cache == nil {
		return dto.ResearchResponse{}, false
	}

	payload, err := s.cache.Get(ctx, researchCacheKey(query, maxResults)).Result()
	if err != nil {
		return dto.ResearchResponse{}, false
	}

	var result dto.ResearchResponse
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode research cache")
		return dto.ResearchResponse{}, false
	}
	return result, true
}

func (s *researchService) writeCache(ctx context.Context, query string, maxResults int, result dto.ResearchResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode research cache")
		return
	}

	if err := s.cache.Set(ctx, researchCacheKey(query, maxResults), payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write research cache")
	}
}

func researchCacheKey(query string, maxResults int) string {
	return fmt.Sprintf("research:%d:%s", maxResults, strings.ToLower(query))
}
