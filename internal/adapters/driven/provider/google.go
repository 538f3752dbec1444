package provider

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// FromGoogle classifies an error returned by a Google API client.
// HTTP failures become *domain.ProviderError; other failures are
// transient unless the context ended.
func FromGoogle(ctx context.Context, name string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", name, ctxErr)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := gerr.Message
		if body == "" {
			body = gerr.Body
		}
		return &domain.ProviderError{Provider: name, StatusCode: gerr.Code, Body: body}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrTransientProvider, name, err)
}
