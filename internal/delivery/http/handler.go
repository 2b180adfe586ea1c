package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/boycottwatch/backend/internal/domain"
	"github.com/boycottwatch/backend/internal/usecase"
)

const defaultMatchLimit = 10

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search    *usecase.SearchService
	catalog   domain.CatalogSource
	assistant domain.QuestionAnswerer
}

// NewHandler creates a new HTTP handler
func NewHandler(search *usecase.SearchService, catalog domain.CatalogSource, assistant domain.QuestionAnswerer) *Handler {
	return &Handler{
		search:    search,
		catalog:   catalog,
		assistant: assistant,
	}
}

// searchRequest is the body of POST /api/v1/search
type searchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// brandMatch is one ranked catalog match in a search response
type brandMatch struct {
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	BoycottReason string   `json:"boycott_reason"`
	Alternatives  []string `json:"alternatives"`
	Score         int      `json:"score"`
	Tier          string   `json:"tier"`
}

// searchResponse is the enriched best match plus the ranked candidate list
type searchResponse struct {
	Query           string       `json:"query"`
	Brand           string       `json:"brand"`
	Category        string       `json:"category"`
	BoycottReason   string       `json:"boycott_reason"`
	Alternatives    []string     `json:"alternatives"`
	Summary         string       `json:"summary"`
	Recommendations []string     `json:"recommendations"`
	Score           int          `json:"score"`
	Tier            string       `json:"tier"`
	Source          string       `json:"source"`
	Matches         []brandMatch `json:"matches"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "boycottwatch-backend",
		"version": "1.0.0",
	})
}

// Search resolves a free-text brand query against the boycott catalog
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	insight, err := h.search.Resolve(c.Request.Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		case errors.Is(err, domain.ErrNotRecognized):
			c.JSON(http.StatusNotFound, gin.H{
				"query": req.Query,
				"error": "brand not recognized",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		}
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultMatchLimit
	}

	matches := h.search.MatchAll(req.Query)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	record := insight.Match.Record
	resp := searchResponse{
		Query:           req.Query,
		Brand:           record.Name,
		Category:        record.Category,
		BoycottReason:   record.BoycottReason,
		Alternatives:    record.Alternatives,
		Summary:         insight.Enrichment.Summary,
		Recommendations: insight.Enrichment.Recommendations,
		Score:           insight.Match.Score,
		Tier:            string(insight.Match.Tier),
		Source:          insight.Source,
		Matches:         make([]brandMatch, 0, len(matches)),
	}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, brandMatch{
			Brand:         m.Record.Name,
			Category:      m.Record.Category,
			BoycottReason: m.Record.BoycottReason,
			Alternatives:  m.Record.Alternatives,
			Score:         m.Score,
			Tier:          string(m.Tier),
		})
	}

	c.JSON(http.StatusOK, resp)
}

// faqRequest is the body of POST /api/v1/faq
type faqRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskFAQ answers a free-form consumer question about the boycott movement
func (h *Handler) AskFAQ(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	answer, err := h.assistant.Answer(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// ListBrands returns every brand name in the catalog
func (h *Handler) ListBrands(c *gin.Context) {
	records := h.catalog.Records()
	brands := make([]string, 0, len(records))
	for _, record := range records {
		brands = append(brands, record.Name)
	}

	c.JSON(http.StatusOK, gin.H{
		"brands": brands,
		"total":  len(brands),
	})
}

// SearchBrands serves name autocompletion: brands whose normalized name
// contains the query, capped at 10.
func (h *Handler) SearchBrands(c *gin.Context) {
	query := usecase.NormalizeText(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"brands": []string{}, "total": 0})
		return
	}

	var matching []string
	for _, record := range h.catalog.Records() {
		name := usecase.NormalizeText(record.Name)
		if strings.Contains(name, query) {
			matching = append(matching, record.Name)
		}
	}

	total := len(matching)
	if len(matching) > defaultMatchLimit {
		matching = matching[:defaultMatchLimit]
	}
	if matching == nil {
		matching = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"brands": matching,
		"total":  total,
	})
}
