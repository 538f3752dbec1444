package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

func TestPostJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		w.Write([]byte(`{"answer":"ja"}`))
	}))
	defer server.Close()

	var out struct {
		Answer string `json:"answer"`
	}
	err := PostJSON(context.Background(), server.Client(), "test", server.URL,
		map[string]string{"Authorization": "Bearer k"}, map[string]string{"q": "x"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ja", out.Answer)
}

func TestPostJSON_StatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer server.Close()

			err := PostJSON(context.Background(), server.Client(), "test", server.URL, nil, struct{}{}, nil)
			var pe *domain.ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.Contains(t, pe.Body, "nope")
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestDo_TransportFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := PostJSON(context.Background(), http.DefaultClient, "test", url, nil, struct{}{}, nil)
	assert.True(t, IsTransient(err))
}

func TestDo_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := PostJSON(ctx, server.Client(), "test", server.URL, nil, struct{}{}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsTransient(err))
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	assert.NoError(t, Ping(context.Background(), server.Client(), "test", server.URL+"/models", nil))
	assert.Error(t, Ping(context.Background(), server.Client(), "test", server.URL+"/other", nil))
}
