// Package ollama provides an LLM and vision service adapter using a local Ollama server.
package ollama

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/nordvik-labs/kilde/internal/adapters/driven/provider"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService    = (*LLMService)(nil)
	_ driven.VisionService = (*LLMService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2-vision"
	DefaultLLMTimeout = 300 * time.Second

	providerName = "ollama"
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama server URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use. Vision requires a multimodal model.
	Model string

	// Timeout is the request timeout (default: 300s). Local inference is slow.
	Timeout time.Duration
}

// LLMService provides chat and image descriptions using Ollama.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *modelOptions `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type modelOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// chatResponse is the Ollama /api/chat non-streaming response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.chat(ctx, []chatMessage{{Role: "user", Content: prompt}}, &modelOptions{
		NumPredict:  opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.StopWords,
	})
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	msgs := make([]chatMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}
	return s.chat(ctx, msgs, &modelOptions{NumPredict: opts.MaxTokens, Temperature: opts.Temperature})
}

// Describe attaches the image to the user message.
func (s *LLMService) Describe(ctx context.Context, req driven.VisionRequest) (string, error) {
	return s.chat(ctx, []chatMessage{
		{Role: "system", Content: req.System},
		{Role: "user", Content: req.Prompt, Images: []string{base64.StdEncoding.EncodeToString(req.Image)}},
	}, &modelOptions{NumPredict: req.MaxTokens, Temperature: req.Temperature})
}

func (s *LLMService) chat(ctx context.Context, msgs []chatMessage, opts *modelOptions) (string, error) {
	var resp chatResponse
	err := provider.PostJSON(ctx, s.client, providerName, s.baseURL+"/api/chat", nil, chatRequest{
		Model:    s.model,
		Messages: msgs,
		Options:  opts,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the Ollama server is reachable.
func (s *LLMService) Ping(ctx context.Context) error {
	return provider.Ping(ctx, s.client, providerName, s.baseURL+"/api/tags", nil)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
