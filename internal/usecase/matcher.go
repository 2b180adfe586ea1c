package usecase

import (
	"log"
	"math"
	"sort"
	"strings"

	"github.com/boycottwatch/backend/internal/domain"
)

// Default scoring constants. These weights come straight from the catalog
// curators' tuning; they are configurable, not invariants.
const (
	defaultExactScore     = 100
	defaultContainsScore  = 85
	defaultFuzzyWeight    = 80
	defaultCategoryScore  = 60
	defaultFuzzyThreshold = 0.8
)

// MatchConfig holds configuration for the matcher
type MatchConfig struct {
	ExactScore         int
	ContainsScore      int
	FuzzyWeight        int
	CategoryScore      int
	FuzzyThreshold     float64
	EnableDebugLogging bool
}

// Matcher scores catalog entries against a normalized query using ordered
// tiers: exact name match, substring containment, edit-distance similarity,
// then category containment. Pure; safe for concurrent use.
type Matcher struct {
	exactScore         int
	containsScore      int
	fuzzyWeight        int
	categoryScore      int
	fuzzyThreshold     float64
	enableDebugLogging bool
}

// NewMatcher creates a matcher with the given configuration, filling in
// defaults for zero values.
func NewMatcher(config MatchConfig) *Matcher {
	m := &Matcher{
		exactScore:         config.ExactScore,
		containsScore:      config.ContainsScore,
		fuzzyWeight:        config.FuzzyWeight,
		categoryScore:      config.CategoryScore,
		fuzzyThreshold:     config.FuzzyThreshold,
		enableDebugLogging: config.EnableDebugLogging,
	}
	if m.exactScore <= 0 {
		m.exactScore = defaultExactScore
	}
	if m.containsScore <= 0 {
		m.containsScore = defaultContainsScore
	}
	if m.fuzzyWeight <= 0 {
		m.fuzzyWeight = defaultFuzzyWeight
	}
	if m.categoryScore <= 0 {
		m.categoryScore = defaultCategoryScore
	}
	if m.fuzzyThreshold <= 0 || m.fuzzyThreshold > 1 {
		m.fuzzyThreshold = defaultFuzzyThreshold
	}
	return m
}

// Match returns the single best-ranked result for the query, or a TierNone
// result when the catalog is empty or no rule fired for any entry.
func (m *Matcher) Match(query string, catalog []domain.BrandRecord) domain.MatchResult {
	results := m.MatchAll(query, catalog)
	if len(results) == 0 {
		return domain.MatchResult{Tier: domain.TierNone}
	}
	return results[0]
}

// MatchAll scores every catalog entry and returns the firing ones ordered by
// score descending. Ties break toward the longer catalog name, then toward
// the earlier catalog position (the sort is stable).
func (m *Matcher) MatchAll(query string, catalog []domain.BrandRecord) []domain.MatchResult {
	queryNorm := NormalizeText(query)
	if queryNorm == "" {
		return nil
	}

	var results []domain.MatchResult
	for i := range catalog {
		record := &catalog[i]
		score, tier := m.scoreEntry(queryNorm, record)
		if tier == domain.TierNone {
			continue
		}
		if m.enableDebugLogging {
			log.Printf("[MATCH] %q vs %q: tier=%s score=%d", queryNorm, record.Name, tier, score)
		}
		results = append(results, domain.MatchResult{Record: record, Score: score, Tier: tier})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return len(results[a].Record.Name) > len(results[b].Record.Name)
	})

	return results
}

// scoreEntry evaluates the tiers in priority order; the first rule that fires
// wins for this entry.
func (m *Matcher) scoreEntry(queryNorm string, record *domain.BrandRecord) (int, domain.MatchTier) {
	nameNorm := NormalizeText(record.Name)

	if queryNorm == nameNorm {
		return m.exactScore, domain.TierExact
	}
	if nameNorm != "" && (strings.Contains(nameNorm, queryNorm) || strings.Contains(queryNorm, nameNorm)) {
		return m.containsScore, domain.TierContains
	}
	if ratio := similarityRatio(queryNorm, nameNorm); ratio >= m.fuzzyThreshold {
		return int(math.Floor(ratio * float64(m.fuzzyWeight))), domain.TierFuzzy
	}
	if categoryNorm := NormalizeText(record.Category); categoryNorm != "" && strings.Contains(categoryNorm, queryNorm) {
		return m.categoryScore, domain.TierCategory
	}
	return 0, domain.TierNone
}

// similarityRatio is a normalized edit-distance similarity in [0,1]:
// 1 - dist/maxLen, so identical strings score 1.0.
func similarityRatio(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 1
	}
	longest := len([]rune(s1))
	if l2 := len([]rune(s2)); l2 > longest {
		longest = l2
	}
	dist := levenshteinDistance(s1, s2)
	return 1 - float64(dist)/float64(longest)
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
