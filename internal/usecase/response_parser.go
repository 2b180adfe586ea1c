package usecase

import (
	"strings"

	"github.com/boycottwatch/backend/internal/domain"
)

// The generator is prompted to reply with labeled sections. Labels are
// matched case-sensitively against these exact spellings.
const summaryLabel = "Summary:"

var recommendationLabels = []string{"Recommendations:", "Recommendation:"}

const (
	summaryBudget    = 200
	truncationMarker = "..."
)

// ParseEnrichment extracts the summary and recommendation list from the
// generator's loosely structured reply. Missing or garbled sections fall back
// to the record's own boycott reason and alternatives, so the result is never
// empty when the catalog has data. It does not fail on any input.
func ParseEnrichment(raw string, record *domain.BrandRecord) domain.EnrichmentResult {
	result := domain.EnrichmentResult{}
	if record != nil {
		result.Summary = record.BoycottReason
		result.Recommendations = record.Alternatives
	}

	if summary := extractSummary(raw); summary != "" {
		result.Summary = truncateSummary(summary)
	}
	if recs := extractRecommendations(raw); len(recs) > 0 {
		result.Recommendations = recs
	}

	return result
}

// extractSummary returns the text between the summary label and the next
// recommendations label (or end of input), or "" when the label is absent.
func extractSummary(raw string) string {
	_, after, found := strings.Cut(raw, summaryLabel)
	if !found {
		return ""
	}
	for _, label := range recommendationLabels {
		if idx := strings.Index(after, label); idx >= 0 {
			after = after[:idx]
		}
	}
	return strings.TrimSpace(after)
}

// extractRecommendations splits the recommendations section on commas,
// trimming whitespace and discarding empty fragments.
func extractRecommendations(raw string) []string {
	var section string
	for _, label := range recommendationLabels {
		if _, after, found := strings.Cut(raw, label); found {
			section = after
			break
		}
	}
	if section == "" {
		return nil
	}

	var recs []string
	for _, part := range strings.Split(section, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			recs = append(recs, trimmed)
		}
	}
	return recs
}

// truncateSummary caps an overlong summary at the character budget, cutting
// at a word boundary when one falls in the second half of the budget. The
// budget counts runes, not bytes, so multibyte text is never split mid-rune.
func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryBudget {
		return s
	}
	cut := runes[:summaryBudget-len([]rune(truncationMarker))]
	for i := len(cut) - 1; i > summaryBudget/2; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return string(cut) + truncationMarker
}
