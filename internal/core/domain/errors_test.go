package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrCorruptDocument", ErrCorruptDocument},
		{"ErrEmptyContent", ErrEmptyContent},
		{"ErrEmbeddingFailure", ErrEmbeddingFailure},
		{"ErrTransientProvider", ErrTransientProvider},
		{"ErrMissingAPIKey", ErrMissingAPIKey},
		{"ErrStoreWrite", ErrStoreWrite},
		{"ErrVectorSearchUnavailable", ErrVectorSearchUnavailable},
		{"ErrFrontierFetch", ErrFrontierFetch},
		{"ErrSitemapUnavailable", ErrSitemapUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_WrappedStillMatch(t *testing.T) {
	err := fmt.Errorf("extract report.pdf: %w", ErrCorruptDocument)
	assert.True(t, errors.Is(err, ErrCorruptDocument))
	assert.False(t, errors.Is(err, ErrEmptyContent))
}

func TestProviderError_Unwrap(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := &ProviderError{Provider: "openai", StatusCode: tt.status, Body: "nope"}
			assert.Equal(t, tt.transient, errors.Is(err, ErrTransientProvider))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestProviderError_As(t *testing.T) {
	var wrapped error = fmt.Errorf("describe: %w", &ProviderError{Provider: "openai", StatusCode: 400, Body: "bad image"})

	var pe *ProviderError
	assert.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, 400, pe.StatusCode)
}

func TestStoreError(t *testing.T) {
	err := &StoreError{ID: "doc-1", Reason: "mapper_parsing_exception"}
	assert.True(t, errors.Is(err, ErrStoreWrite))
	assert.Equal(t, "store write doc-1: mapper_parsing_exception", err.Error())
}
