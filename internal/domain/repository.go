package domain

import (
	"context"
	"time"
)

// InsightCache defines the interface for caching enrichment results
type InsightCache interface {
	Get(ctx context.Context, key string) (*EnrichmentResult, error)
	Set(ctx context.Context, key string, value *EnrichmentResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EnrichmentGenerator defines the interface for the external generative text
// service. Enrich returns the raw text payload; structure extraction is the
// response parser's job.
type EnrichmentGenerator interface {
	Enrich(ctx context.Context, record *BrandRecord) (string, error)
}

// QuestionAnswerer produces free-form assistant answers to consumer questions
// about the boycott movement.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// CatalogSource supplies the read-only brand catalog. Implementations must
// return a snapshot that stays valid while concurrent reloads happen.
type CatalogSource interface {
	Records() []BrandRecord
}
