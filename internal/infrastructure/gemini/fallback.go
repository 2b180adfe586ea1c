package gemini

import (
	"fmt"
	"strings"

	"github.com/boycottwatch/backend/internal/domain"
)

// FallbackText builds a deterministic, category-aware stand-in for generated
// text. It uses the same labeled layout the real generator is prompted for,
// so the response parser extracts it the same way.
func FallbackText(record *domain.BrandRecord) string {
	return fmt.Sprintf("Summary: %s\nRecommendations: %s",
		categorySummary(record),
		strings.Join(record.Alternatives, ", "),
	)
}

// FallbackAnswer builds a deterministic answer for FAQ questions when no API
// key is configured. Keyword checks pick the closest canned topic.
func FallbackAnswer(question string) string {
	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "alternative"):
		return "Every boycotted brand in the catalog lists vetted alternatives. " +
			"Search for the brand to see them, and prefer local or independent options where you can."
	case strings.Contains(lower, "why") || strings.Contains(lower, "reason"):
		return "Each catalog entry records the specific reason the brand was listed for boycott. " +
			"Search for the brand to see its reason and the sources behind it."
	case strings.Contains(lower, "boycott"):
		return "Consumer boycotts work by redirecting everyday spending away from listed brands. " +
			"Use the search to check a brand before buying, and switch to one of its listed alternatives."
	}
	return "I can help you check whether a brand is on the boycott list, why it was listed, " +
		"and which alternatives exist. Try searching for a brand name."
}

// categorySummary frames the catalog's boycott reason with a descriptor for
// the record's category.
func categorySummary(record *domain.BrandRecord) string {
	descriptor := "multinational company"
	category := strings.ToLower(record.Category)
	switch {
	case strings.Contains(category, "food") || strings.Contains(category, "restaurant"):
		descriptor = "global food and restaurant chain"
	case strings.Contains(category, "beverage"):
		descriptor = "multinational beverage corporation"
	case strings.Contains(category, "tech"):
		descriptor = "technology company"
	case strings.Contains(category, "clothing") || strings.Contains(category, "fashion"):
		descriptor = "global fashion brand"
	case strings.Contains(category, "entertainment"):
		descriptor = "entertainment company"
	case strings.Contains(category, "consumer"):
		descriptor = "consumer goods conglomerate"
	}

	summary := fmt.Sprintf("%s is a %s currently listed for boycott", record.Name, descriptor)
	if record.BoycottReason != "" {
		summary = fmt.Sprintf("%s: %s", summary, record.BoycottReason)
	}
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return summary
}
