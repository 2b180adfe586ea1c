package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boycottwatch/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-1.5-flash"
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second

	// Error payloads larger than this are truncated before inspection.
	maxErrorBodySize = 4096
)

// Config holds configuration for the Gemini client. An empty APIKey is valid:
// the client then serves deterministic canned text instead of calling out.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxAttempts int
	BaseDelay   time.Duration
}

// Client calls the Gemini generateContent API to produce explanatory text for
// a matched brand. Quota errors are retried with exponential backoff; every
// other error class propagates immediately.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	maxAttempts int
	baseDelay   time.Duration
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := config.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	// The free tier allows 15 requests per minute; keep a small burst so a
	// handful of concurrent resolutions do not queue behind each other.
	limiter := rate.NewLimiter(rate.Limit(0.25), 5)

	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		apiKey:      config.APIKey,
		baseURL:     baseURL,
		model:       model,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		rateLimiter: limiter,
	}
}

// SetDebug enables per-attempt request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Enrich asks the generator for explanatory text about a brand. Without an
// API key it short-circuits to the canned category-aware fallback — that path
// is part of the contract, not an error. On a quota error it retries up to
// the attempt budget with doubling delays; the final attempt's error is
// surfaced. The backoff sleep blocks only the calling goroutine and aborts
// promptly on context cancellation.
func (c *Client) Enrich(ctx context.Context, record *domain.BrandRecord) (string, error) {
	if record == nil {
		return "", domain.ErrInvalidRequest
	}

	if c.apiKey == "" {
		c.debugLog("[GEMINI] no API key configured, using canned response for %q", record.Name)
		return FallbackText(record), nil
	}

	return c.generateWithRetry(ctx, buildPrompt(record))
}

// Answer handles a free-form consumer question about the boycott movement.
// Same contract as Enrich: keyless mode serves deterministic canned text, and
// only quota errors are retried.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrInvalidRequest
	}

	if c.apiKey == "" {
		c.debugLog("[GEMINI] no API key configured, using canned answer")
		return FallbackAnswer(question), nil
	}

	return c.generateWithRetry(ctx, buildQuestionPrompt(question))
}

// generateWithRetry runs the attempt loop shared by Enrich and Answer
func (c *Client) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			log.Printf("[GEMINI] quota exceeded, retrying in %v (attempt %d/%d)", delay, attempt+1, c.maxAttempts)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", domain.ErrEnrichmentUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		text, err := c.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !errors.Is(err, domain.ErrEnrichmentQuota) {
			return "", err
		}
	}

	return "", lastErr
}

// generate performs a single generateContent call
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEnrichmentUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	params := url.Values{}
	params.Add("key", c.apiKey)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEnrichmentUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "BoycottWatch/1.0")

	c.debugLog("[GEMINI] POST %s model=%s", endpoint, c.model)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEnrichmentUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", classifyError(resp.StatusCode, string(payload))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	text := genResp.text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty candidate text", domain.ErrMalformedResponse)
	}

	return text, nil
}

// classifyError maps a non-OK response to an error class. A "too many
// requests" status combined with a quota marker means the quota condition;
// everything else counts as the provider being unavailable.
func classifyError(statusCode int, body string) error {
	if statusCode == http.StatusTooManyRequests && isQuotaPayload(body) {
		return fmt.Errorf("%w: status %d", domain.ErrEnrichmentQuota, statusCode)
	}
	return fmt.Errorf("%w: status %d", domain.ErrEnrichmentUnavailable, statusCode)
}

// isQuotaPayload checks the error payload for the markers Gemini uses on
// rate/quota rejections.
func isQuotaPayload(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "resource_exhausted")
}

// buildPrompt asks for the labeled sections the response parser expects
func buildPrompt(record *domain.BrandRecord) string {
	return fmt.Sprintf(`Analyze this brand information and provide:
1. A simple, clear summary of why this brand is boycotted (max 2 sentences)
2. A short recommendation for each listed alternative (max 1 sentence each)

Brand: %s
Category: %s
Boycott Reason: %s
Alternatives: %s

Format your response as:
Summary: [your summary here]
Recommendations: [alternative1: recommendation1], [alternative2: recommendation2], etc.`,
		record.Name,
		record.Category,
		record.BoycottReason,
		strings.Join(record.Alternatives, ", "),
	)
}

// buildQuestionPrompt frames a free-form FAQ question for the assistant
func buildQuestionPrompt(question string) string {
	return fmt.Sprintf(`You are a helpful assistant for consumers who want to understand brand
boycotts and find ethical alternatives. Answer the user's question clearly
and practically in 2-4 short paragraphs. Stick to verifiable information
about brands, boycott campaigns, and alternatives; say so when you do not
know.

Question: %s`, question)
}

// debugLog logs only when debug mode is enabled
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf(format, args...)
	}
}

// generateRequest is the generateContent request payload
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the subset of the generateContent reply we consume
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// text concatenates the parts of the first candidate
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
