package driven

import "context"

// VisionRequest is a single image description request.
type VisionRequest struct {
	// System is the instruction sent as the system prompt.
	System string

	// Prompt is the user text sent with the image.
	Prompt string

	// Image is a PNG-encoded image.
	Image []byte

	// MaxTokens bounds the reply length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}

// VisionService describes images with a vision-capable model.
//
// Implementations return *domain.ProviderError for non-success HTTP
// responses and wrap transport failures in domain.ErrTransientProvider,
// so callers can decide whether to retry.
type VisionService interface {
	Describe(ctx context.Context, req VisionRequest) (string, error)
}

// ImageCaptioner produces captions for images, hiding retries and throttling.
// It never fails: any problem yields an empty caption.
type ImageCaptioner interface {
	Describe(ctx context.Context, image []byte, site, hint string) string
}
