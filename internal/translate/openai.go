package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/akorchak/lingopad/internal/config"
)

// Engine translates through an OpenAI-compatible chat endpoint (ollama,
// llama.cpp server, vLLM). Each ordered language pair resolves to a backend
// model name; resolution is lazy and cached so repeated sessions reuse the
// warmed model.
type Engine struct {
	client   *openai.Client
	pairs    map[string]string
	fallback string

	mu       sync.Mutex
	resolved map[string]string
}

// NewEngine builds a translation engine from runtime config.
func NewEngine(cfg config.TranslationConfig) *Engine {
	clientCfg := openai.DefaultConfig("lingopad")
	clientCfg.BaseURL = strings.TrimRight(cfg.BackendURL, "/")

	pairs := make(map[string]string, len(cfg.ModelPairs))
	for key, model := range cfg.ModelPairs {
		pairs[key] = model
	}

	return &Engine{
		client:   openai.NewClientWithConfig(clientCfg),
		pairs:    pairs,
		fallback: cfg.FallbackModel,
		resolved: make(map[string]string),
	}
}

// Translate converts text from source to target. Identity pairs and empty
// input return without any backend call.
func (e *Engine) Translate(ctx context.Context, text string, source string, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if source == target {
		return text, nil
	}

	model, err := e.resolveModel(source, target)
	if err != nil {
		return "", err
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You are a translation engine. Translate the user's text from %s to %s. Reply with the translation only, no commentary.",
					source, target,
				),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	})
	if err != nil {
		if isModelMissing(err) {
			return "", &ModelNotFoundError{Source: source, Target: target, Model: model}
		}
		return "", fmt.Errorf("translate %s→%s: %w", source, target, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translate %s→%s: backend returned no choices", source, target)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// resolveModel maps an ordered pair to its backend model name, caching the
// result. Unmapped pairs use the fallback model when one is configured.
func (e *Engine) resolveModel(source string, target string) (string, error) {
	key := source + ">" + target

	e.mu.Lock()
	defer e.mu.Unlock()

	if model, ok := e.resolved[key]; ok {
		return model, nil
	}

	model, ok := e.pairs[key]
	if !ok || model == "" {
		model = e.fallback
	}
	if model == "" {
		return "", &ModelNotFoundError{Source: source, Target: target, Model: key}
	}

	e.resolved[key] = model
	return model, nil
}

// isModelMissing classifies backend errors that mean the model is not pulled.
func isModelMissing(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 404 {
			return true
		}
		message := strings.ToLower(apiErr.Message)
		return strings.Contains(message, "model") &&
			(strings.Contains(message, "not found") || strings.Contains(message, "does not exist"))
	}
	return false
}
