package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type GeminiService struct {
	apiKeys    []string
	currentKey int
	client     *genai.Client
	modelName  string
	logger     *zap.Logger
	mu         sync.Mutex
}

func NewGeminiService(ctx context.Context, apiKeys []string, modelName string, logger *zap.Logger) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:   apiKeys,
		modelName: modelName,
		logger:    logger,
	}

	if err := service.initClient(ctx); err != nil {
		return nil, err
	}
	return service, nil
}

// initClient must be called with mu held or before the service is shared.
func (s *GeminiService) initClient(ctx context.Context) error {
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.apiKeys) < 2 {
		return nil
	}
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		s.logger.Warn("failed to close gemini client", zap.Error(err))
	}
	return s.initClient(ctx)
}

func (s *GeminiService) model(systemPrompt string) *genai.GenerativeModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.ResponseMIMEType = "application/json"
	return model
}

func (s *GeminiService) Provider() string { return ProviderGemini }

func (s *GeminiService) StructuredResponse(ctx context.Context, prompt, systemPrompt string) (map[string]any, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	resp, err := s.model(systemPrompt).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		// Try the next API key once before giving up.
		if rotateErr := s.rotateAPIKey(ctx); rotateErr != nil {
			return nil, rotateErr
		}
		resp, err = s.model(systemPrompt).GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
	}

	if len(resp.Candidates) == 0 {
		return nil, errors.New("no response generated")
	}

	var content strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
		// Candidates are alternatives; the first one with content wins.
		if content.Len() > 0 {
			break
		}
	}

	return decodeJSONObject(content.String())
}

func (s *GeminiService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Close()
}
