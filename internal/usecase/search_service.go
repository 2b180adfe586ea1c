package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/boycottwatch/backend/internal/domain"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	CacheTTL time.Duration
	Matching MatchConfig
}

// SearchService resolves free-text queries against the brand catalog.
// Flow: normalize -> match -> check cache -> enrich on miss -> parse -> cache.
type SearchService struct {
	catalog   domain.CatalogSource
	cache     domain.InsightCache
	generator domain.EnrichmentGenerator
	matcher   *Matcher
	cacheTTL  time.Duration
}

// NewSearchService creates a new search service with dependencies
func NewSearchService(
	catalog domain.CatalogSource,
	cache domain.InsightCache,
	generator domain.EnrichmentGenerator,
	config SearchServiceConfig,
) *SearchService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &SearchService{
		catalog:   catalog,
		cache:     cache,
		generator: generator,
		matcher:   NewMatcher(config.Matching),
		cacheTTL:  cacheTTL,
	}
}

// Resolve looks up the best catalog match for a query and enriches it.
// Unrecognized queries return domain.ErrNotRecognized without touching the
// generator; every enrichment-side failure degrades to the record's own
// catalog data instead of surfacing an error.
func (s *SearchService) Resolve(ctx context.Context, query string) (*domain.BrandInsight, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	records := s.catalog.Records()
	queryNorm := NormalizeText(query)
	cacheKey := Fingerprint(queryNorm)

	match := s.matcher.Match(query, records)
	if match.Tier == domain.TierNone {
		return nil, domain.ErrNotRecognized
	}

	// Cache hit short-circuits the generator call. Matching is pure and
	// cheap, so only the enrichment is cached.
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		return &domain.BrandInsight{
			Match:      match,
			Enrichment: *cached,
			Source:     domain.SourceCache,
		}, nil
	}

	raw, err := s.generator.Enrich(ctx, match.Record)
	if err != nil {
		log.Printf("[SEARCH] enrichment failed for %q, falling back to catalog data: %v", match.Record.Name, err)
		return &domain.BrandInsight{
			Match: match,
			Enrichment: domain.EnrichmentResult{
				Summary:         match.Record.BoycottReason,
				Recommendations: match.Record.Alternatives,
			},
			Source: domain.SourceFallback,
		}, nil
	}

	enrichment := ParseEnrichment(raw, match.Record)

	if err := s.cache.Set(ctx, cacheKey, &enrichment, s.cacheTTL); err != nil {
		log.Printf("[SEARCH] cache store failed for %q: %v", query, err)
	}

	return &domain.BrandInsight{
		Match:      match,
		Enrichment: enrichment,
		Source:     domain.SourceGenerator,
	}, nil
}

// MatchAll returns the ranked catalog matches for a query without enrichment.
func (s *SearchService) MatchAll(query string) []domain.MatchResult {
	return s.matcher.MatchAll(query, s.catalog.Records())
}
