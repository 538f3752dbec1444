package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Extraction Errors.

	// ErrUnsupportedFormat indicates no extractor handles the file type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptDocument indicates the file could not be parsed.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrEmptyContent indicates extraction produced no text.
	ErrEmptyContent = errors.New("empty content")

	// Provider Errors.

	// ErrEmbeddingFailure indicates an embedding call failed.
	// A document cannot be indexed without its vector.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrTransientProvider indicates a retryable HTTP-level provider failure.
	ErrTransientProvider = errors.New("transient provider error")

	// ErrMissingAPIKey indicates a cloud provider was selected without a key.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no answer generator is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Store Errors.

	// ErrStoreUnavailable indicates the search store cannot be reached.
	ErrStoreUnavailable = errors.New("search store unavailable")

	// ErrStoreWrite indicates the store rejected a document write.
	ErrStoreWrite = errors.New("store write failure")

	// ErrVectorSearchUnavailable indicates the vector leg of a query failed.
	// Fusion proceeds with the lexical ranking only.
	ErrVectorSearchUnavailable = errors.New("vector search unavailable")

	// Crawl Errors.

	// ErrFrontierFetch indicates a crawled page could not be fetched.
	ErrFrontierFetch = errors.New("frontier fetch failure")

	// ErrSitemapUnavailable indicates the sitemap could not be loaded.
	ErrSitemapUnavailable = errors.New("sitemap unavailable")

	// ErrNotHTML indicates a fetched resource is not an HTML page.
	ErrNotHTML = errors.New("not html")
)

// ProviderError carries a non-success HTTP response from an external provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Unwrap classifies rate limiting and server errors as transient.
func (e *ProviderError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError {
		return ErrTransientProvider
	}
	return nil
}

// StoreError carries the reason a search store reported for a failed write.
type StoreError struct {
	ID     string
	Reason string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store write %s: %s", e.ID, e.Reason)
}

// Unwrap returns ErrStoreWrite.
func (e *StoreError) Unwrap() error {
	return ErrStoreWrite
}
