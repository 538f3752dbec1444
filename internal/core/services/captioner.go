package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/imaging"
	"github.com/nordvik-labs/kilde/internal/logger"
)

// Ensure Captioner implements the interface.
var _ driven.ImageCaptioner = (*Captioner)(nil)

const (
	captionUserPrompt  = "Beskriv bildet kort. Ta med synlig tekst ved behov."
	captionMaxTokens   = 200
	captionTemperature = 0.2
)

// Captioner wraps a VisionService with a concurrency gate, downscaling,
// per-attempt timeouts and bounded retries. It never returns an error.
type Captioner struct {
	vision  driven.VisionService
	prompts driven.PromptStore
	cfg     domain.CaptionConfig
	gate    *semaphore.Weighted

	// sleep waits between attempts. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCaptioner creates a captioner. vision may be nil, in which case every
// call returns an empty caption. The gate is shared by all callers of the
// returned value.
func NewCaptioner(vision driven.VisionService, cfg domain.CaptionConfig, prompts driven.PromptStore) *Captioner {
	gate := cfg.MaxConcurrency
	if gate < 1 {
		gate = domain.DefaultCaptionGate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultCaptionTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Captioner{
		vision:  vision,
		prompts: prompts,
		cfg:     cfg,
		gate:    semaphore.NewWeighted(int64(gate)),
		sleep:   sleepContext,
	}
}

// Enabled reports whether captions can be produced at all.
func (c *Captioner) Enabled() bool {
	return c != nil && c.cfg.ImageCaptions && c.vision != nil
}

// Describe returns a short caption for image, or "" when captioning is
// disabled, the provider rejects the request or retries run out. Rate
// limits and server errors are retried like transport failures.
func (c *Captioner) Describe(ctx context.Context, image []byte, site, hint string) string {
	if !c.Enabled() || len(image) == 0 {
		return ""
	}

	if err := c.gate.Acquire(ctx, 1); err != nil {
		return ""
	}
	defer c.gate.Release(1)

	data, err := imaging.DownscalePNG(image, c.cfg.MaxWidth)
	if err == nil {
		data, err = imaging.ToPNG(data)
	}
	if err != nil {
		logger.Warn("caption: unreadable image: %v", err)
		return ""
	}

	req := driven.VisionRequest{
		System:      c.systemPrompt(site, hint),
		Prompt:      captionUserPrompt,
		Image:       data,
		MaxTokens:   captionMaxTokens,
		Temperature: captionTemperature,
	}

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		text, err := c.describeOnce(ctx, req)
		if err == nil {
			return strings.TrimSpace(text)
		}
		if ctx.Err() != nil {
			return ""
		}

		var pe *domain.ProviderError
		if errors.As(err, &pe) && !errors.Is(err, domain.ErrTransientProvider) {
			logger.Warn("caption: HTTP %d: %s", pe.StatusCode, pe.Body)
			return ""
		}
		if attempt == c.cfg.MaxRetries {
			logger.Warn("caption: giving up after %d attempts: %v", attempt+1, err)
			break
		}

		logger.Warn("caption: retry %d/%d: %v", attempt+1, c.cfg.MaxRetries, err)
		if err := c.sleep(ctx, retryDelay(err, attempt)); err != nil {
			return ""
		}
	}
	return ""
}

// describeOnce runs one attempt bounded by the per-attempt timeout.
func (c *Captioner) describeOnce(ctx context.Context, req driven.VisionRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	return c.vision.Describe(attemptCtx, req)
}

func (c *Captioner) systemPrompt(site, hint string) string {
	system := loadPrompt(c.prompts, driven.PromptCaptionSystem)
	if site = strings.TrimSpace(site); site != "" {
		system += " Nettsidens kontekst er: " + site + "."
	}
	if hint = strings.TrimSpace(hint); hint != "" {
		system += " Oppgave: " + hint + "."
	}
	return system
}

// retryDelay returns the wait before the next attempt. A timed-out attempt
// is retried at once; transport failures back off in seconds and anything
// else in shorter steps.
func retryDelay(err error, attempt int) time.Duration {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return 0
	case errors.Is(err, domain.ErrTransientProvider):
		return time.Duration(1+2*attempt) * time.Second
	default:
		return time.Duration(400+600*attempt) * time.Millisecond
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
