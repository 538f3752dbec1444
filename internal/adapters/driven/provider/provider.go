// Package provider holds the HTTP plumbing shared by the AI provider adapters.
// Failures are classified the same way for every provider: transport
// errors wrap domain.ErrTransientProvider and non-success responses become
// *domain.ProviderError.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

const (
	// maxResponseBytes bounds a provider reply.
	maxResponseBytes = 32 << 20

	// maxErrorBody bounds the response text kept in a ProviderError.
	maxErrorBody = 2048
)

// Do sends req and returns the body of a 2xx reply.
// A request cancelled through its context returns the context error so
// callers can tell a timeout from a transport failure.
func Do(client *http.Client, name string, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", name, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTransientProvider, name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", name, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s: read response: %w", domain.ErrTransientProvider, name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := string(body)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &domain.ProviderError{Provider: name, StatusCode: resp.StatusCode, Body: text}
	}
	return body, nil
}

// PostJSON marshals payload, posts it to url and decodes a 2xx reply into out.
func PostJSON(
	ctx context.Context,
	client *http.Client,
	name, url string,
	headers map[string]string,
	payload, out any,
) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, err := Do(client, name, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", name, err)
	}
	return nil
}

// Ping issues a GET to url and reports any failure.
func Ping(ctx context.Context, client *http.Client, name, url string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create ping request: %w", name, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if _, err := Do(client, name, req); err != nil {
		return fmt.Errorf("%s: ping failed: %w", name, err)
	}
	return nil
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, domain.ErrTransientProvider)
}
