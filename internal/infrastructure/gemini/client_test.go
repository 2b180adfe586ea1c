package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boycottwatch/backend/internal/domain"
)

func testRecord() *domain.BrandRecord {
	return &domain.BrandRecord{
		Name:          "McDonalds",
		Category:      "Food & Restaurants",
		BoycottReason: "Listed for boycott",
		Alternatives:  []string{"Local Diner", "Home Cooking"},
	}
}

func writeSuccess(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	body := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		APIKey:    "test-api-key",
		BaseURL:   baseURL,
		BaseDelay: 1 * time.Millisecond,
	})
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{APIKey: "test-api-key"})

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.Equal(t, defaultModel, client.model)
	assert.Equal(t, defaultMaxAttempts, client.maxAttempts)
	assert.Equal(t, defaultBaseDelay, client.baseDelay)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient(Config{APIKey: "test-api-key"})

	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestEnrich_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "McDonalds")

		writeSuccess(t, w, "Summary: Test.\nRecommendations: A, B")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	text, err := client.Enrich(context.Background(), testRecord())

	require.NoError(t, err)
	assert.Equal(t, "Summary: Test.\nRecommendations: A, B", text)
}

func TestEnrich_QuotaRetry(t *testing.T) {
	const baseDelay = 20 * time.Millisecond

	var mu sync.Mutex
	var arrivals []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		n := len(arrivals)
		mu.Unlock()

		if n < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"status": "RESOURCE_EXHAUSTED", "message": "quota exceeded"}}`))
			return
		}
		writeSuccess(t, w, "Summary: Recovered.")
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:    "test-api-key",
		BaseURL:   server.URL,
		BaseDelay: baseDelay,
	})

	text, err := client.Enrich(context.Background(), testRecord())

	require.NoError(t, err)
	assert.Equal(t, "Summary: Recovered.", text)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, arrivals, 3)

	// Delays double between attempts: the first retry waits at least the base
	// delay, the second at least twice that.
	firstGap := arrivals[1].Sub(arrivals[0])
	secondGap := arrivals[2].Sub(arrivals[1])
	assert.GreaterOrEqual(t, firstGap, baseDelay)
	assert.GreaterOrEqual(t, secondGap, 2*baseDelay)
	assert.Greater(t, secondGap, firstGap)
}

func TestEnrich_QuotaExhausted(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "quota exceeded for this project"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Enrich(context.Background(), testRecord())

	assert.ErrorIs(t, err, domain.ErrEnrichmentQuota)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestEnrich_ServerErrorNotRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Enrich(context.Background(), testRecord())

	assert.ErrorIs(t, err, domain.ErrEnrichmentUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "non-quota errors must not be retried")
}

func TestEnrich_RateLimitWithoutQuotaMarker(t *testing.T) {
	// A 429 without a quota marker in the body is treated as the provider
	// being unavailable, so it is not retried.
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "slow down"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Enrich(context.Background(), testRecord())

	assert.ErrorIs(t, err, domain.ErrEnrichmentUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestEnrich_MalformedResponse(t *testing.T) {
	t.Run("undecodable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Enrich(context.Background(), testRecord())
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})

	t.Run("empty candidate text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"candidates": []}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Enrich(context.Background(), testRecord())
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})
}

func TestEnrich_NoAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	text, err := client.Enrich(context.Background(), testRecord())

	require.NoError(t, err)
	assert.Equal(t, FallbackText(testRecord()), text)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "keyless client must not call out")
}

func TestEnrich_NilRecord(t *testing.T) {
	client := NewClient(Config{APIKey: "test-api-key"})

	_, err := client.Enrich(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestEnrich_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:    "test-api-key",
		BaseURL:   server.URL,
		BaseDelay: 10 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.Enrich(ctx, testRecord())

	assert.ErrorIs(t, err, domain.ErrEnrichmentUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must abort the backoff sleep")
}

func TestAnswer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "How do boycotts work?")

		writeSuccess(t, w, "They redirect spending.")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	answer, err := client.Answer(context.Background(), "How do boycotts work?")

	require.NoError(t, err)
	assert.Equal(t, "They redirect spending.", answer)
}

func TestAnswer_NoAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	answer, err := client.Answer(context.Background(), "What alternatives exist?")

	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer("What alternatives exist?"), answer)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "keyless client must not call out")
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	client := NewClient(Config{APIKey: "test-api-key"})

	for _, question := range []string{"", "   "} {
		_, err := client.Answer(context.Background(), question)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	}
}

func TestFallbackAnswer(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"alternatives topic", "What alternatives exist for soda?", "alternatives"},
		{"reason topic", "Why is this brand listed?", "reason"},
		{"boycott topic", "How does a boycott help?", "boycott"},
		{"unknown topic", "Hello there", "searching for a brand name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, strings.ToLower(FallbackAnswer(tt.question)), tt.want)
		})
	}
}

func TestFallbackText(t *testing.T) {
	text := FallbackText(testRecord())

	assert.True(t, strings.HasPrefix(text, "Summary: "))
	assert.Contains(t, text, "McDonalds")
	assert.Contains(t, text, "Listed for boycott")
	assert.Contains(t, text, "Recommendations: Local Diner, Home Cooking")
	assert.Contains(t, text, "food and restaurant chain")
}

func TestCategorySummary(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"Food & Restaurants", "food and restaurant chain"},
		{"Beverages", "beverage corporation"},
		{"Technology", "technology company"},
		{"Clothing", "fashion brand"},
		{"Entertainment", "entertainment company"},
		{"Consumer Goods", "consumer goods conglomerate"},
		{"Unknown", "multinational company"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			record := &domain.BrandRecord{Name: "Brand", Category: tt.category}
			assert.Contains(t, categorySummary(record), tt.want)
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"429 with quota marker", 429, `{"message": "quota exceeded"}`, domain.ErrEnrichmentQuota},
		{"429 with resource_exhausted", 429, `{"status": "RESOURCE_EXHAUSTED"}`, domain.ErrEnrichmentQuota},
		{"429 without marker", 429, `{"message": "slow down"}`, domain.ErrEnrichmentUnavailable},
		{"500", 500, "", domain.ErrEnrichmentUnavailable},
		{"403", 403, "", domain.ErrEnrichmentUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError(tt.status, tt.body), tt.want)
		})
	}
}
