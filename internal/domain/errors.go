package domain

import "errors"

var (
	// ErrNotRecognized is returned when a query matches no catalog entry.
	// It is a classification, not a failure.
	ErrNotRecognized = errors.New("brand not recognized")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrEnrichmentQuota is returned when the text generator reports a
	// rate/quota condition. Retried internally by the client.
	ErrEnrichmentQuota = errors.New("enrichment quota exceeded")

	// ErrEnrichmentUnavailable is returned when the text generator is
	// unreachable or misconfigured. Not retried.
	ErrEnrichmentUnavailable = errors.New("enrichment service unavailable")

	// ErrMalformedResponse is returned when the generator replied but the
	// payload carried no usable text.
	ErrMalformedResponse = errors.New("malformed generator response")
)
