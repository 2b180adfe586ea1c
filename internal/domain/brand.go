package domain

// BrandRecord is a single entry in the boycott catalog. Records are immutable
// after load; a catalog reload replaces the whole collection, never an entry.
type BrandRecord struct {
	Name          string   `json:"brand"`
	Category      string   `json:"category"`
	BoycottReason string   `json:"boycott_reason"`
	Alternatives  []string `json:"alternatives"`
}

// MatchTier identifies which matching rule produced a score.
type MatchTier string

const (
	TierExact    MatchTier = "EXACT"
	TierContains MatchTier = "CONTAINS"
	TierFuzzy    MatchTier = "FUZZY"
	TierCategory MatchTier = "CATEGORY"
	TierNone     MatchTier = "NONE"
)

// MatchResult is the outcome of scoring one query against the catalog.
// Record points into the shared read-only catalog and must not be mutated.
type MatchResult struct {
	Record *BrandRecord `json:"record,omitempty"`
	Score  int          `json:"score"`
	Tier   MatchTier    `json:"tier"`
}

// EnrichmentResult holds the structured fields extracted from generated text.
// Immutable once returned; Recommendations keeps its original order.
type EnrichmentResult struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// Insight sources
const (
	SourceGenerator = "generator"
	SourceCache     = "cache"
	SourceFallback  = "fallback"
)

// BrandInsight is the full resolution result: the matched record plus its
// enrichment and where the enrichment came from.
type BrandInsight struct {
	Match      MatchResult      `json:"match"`
	Enrichment EnrichmentResult `json:"enrichment"`
	Source     string           `json:"source"`
}
