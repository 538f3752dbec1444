package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

func TestFromGoogle(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, FromGoogle(ctx, "gemini", nil))

	err := FromGoogle(ctx, "gemini", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"})
	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "quota", pe.Body)
	assert.True(t, errors.Is(err, domain.ErrTransientProvider))

	err = FromGoogle(ctx, "gemini", &googleapi.Error{Code: http.StatusBadRequest, Body: `{"error":"bad"}`})
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, `{"error":"bad"}`, pe.Body)
	assert.False(t, errors.Is(err, domain.ErrTransientProvider))

	err = FromGoogle(ctx, "gemini", errors.New("connection reset"))
	assert.True(t, errors.Is(err, domain.ErrTransientProvider))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = FromGoogle(cancelled, "gemini", errors.New("rpc error"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, domain.ErrTransientProvider))
}
