// Package gemini provides an LLM and vision service adapter using the
// Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nordvik-labs/kilde/internal/adapters/driven/provider"
	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService    = (*LLMService)(nil)
	_ driven.VisionService = (*LLMService)(nil)
)

// DefaultLLMModel is used when no model is configured.
const DefaultLLMModel = "gemini-1.5-flash"

const providerName = "gemini"

// LLMConfig holds configuration for the Gemini LLM service.
type LLMConfig struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the model to use (default: gemini-1.5-flash).
	Model string
}

// LLMService provides chat and image descriptions using Gemini.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", domain.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &LLMService{client: client, model: cfg.Model}, nil
}

// generativeModel returns a model handle configured for one call.
// Handles carry per-call settings so they are never shared.
func (s *LLMService) generativeModel(system string, maxTokens int, temperature float64) *genai.GenerativeModel {
	m := s.client.GenerativeModel(s.model)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if maxTokens > 0 {
		m.SetMaxOutputTokens(int32(maxTokens))
	}
	if temperature > 0 {
		m.SetTemperature(float32(temperature))
	}
	return m
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m := s.generativeModel("", opts.MaxTokens, opts.Temperature)
	m.StopSequences = opts.StopWords
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	return responseText(ctx, resp, err)
}

// Chat conducts a multi-turn conversation. System messages become the
// system instruction and assistant turns map to the "model" role.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	var history []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "assistant":
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(history) == 0 {
		return "", fmt.Errorf("gemini: %w: no user message", domain.ErrInvalidInput)
	}

	m := s.generativeModel(strings.Join(system, "\n\n"), opts.MaxTokens, opts.Temperature)
	cs := m.StartChat()
	last := history[len(history)-1]
	cs.History = history[:len(history)-1]
	resp, err := cs.SendMessage(ctx, last.Parts...)
	return responseText(ctx, resp, err)
}

// Describe sends the prompt with the PNG image inline.
func (s *LLMService) Describe(ctx context.Context, req driven.VisionRequest) (string, error) {
	m := s.generativeModel(req.System, req.MaxTokens, req.Temperature)
	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt), genai.ImageData("png", req.Image))
	return responseText(ctx, resp, err)
}

func responseText(ctx context.Context, resp *genai.GenerateContentResponse, err error) (string, error) {
	if err != nil {
		return "", provider.FromGoogle(ctx, providerName, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return out.String(), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping asks the API for the model metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", provider.FromGoogle(ctx, providerName, err))
	}
	return nil
}

// Close releases the client connection.
func (s *LLMService) Close() error {
	return s.client.Close()
}
