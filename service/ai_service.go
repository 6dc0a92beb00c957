package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tieubaoca/pitchdeck-be/config"
	"go.uber.org/zap"
)

const DefaultSystemPrompt = "You are a helpful assistant that outputs JSON."

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

var ErrNoProvider = errors.New("no AI provider configured")

// AIService sends one prompt and decodes the model answer as a JSON object.
type AIService interface {
	Provider() string
	StructuredResponse(ctx context.Context, prompt, systemPrompt string) (map[string]any, error)
}

// NewAIService picks the backend from cfg: Gemini when a Gemini key is set,
// otherwise OpenAI when an OpenAI key is set, otherwise a provider that fails
// every call.
func NewAIService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (AIService, error) {
	if keys := cfg.GeminiKeys(); len(keys) > 0 {
		return NewGeminiService(ctx, keys, cfg.GeminiModel, logger)
	}
	if cfg.OpenAIAPIKey != "" {
		return NewOpenAIService(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	}
	logger.Warn("no API key found (GEMINI_API_KEY or OPENAI_API_KEY), analysis calls will return empty results")
	return noopAIService{}, nil
}

type noopAIService struct{}

func (noopAIService) Provider() string { return ProviderNone }

func (noopAIService) StructuredResponse(context.Context, string, string) (map[string]any, error) {
	return nil, ErrNoProvider
}

// decodeJSONObject parses model output, tolerating markdown code fences.
func decodeJSONObject(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("empty model response")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("model response is not a JSON object: %w", err)
	}
	if out == nil {
		return nil, errors.New("model response is JSON null")
	}
	return out, nil
}
