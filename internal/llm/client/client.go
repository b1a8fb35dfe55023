// Package client builds eino chat models for the configured provider and runs
// single, non-streaming completions against them.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"apivault/internal/models"
)

const claudeMaxTokens = 4096

var ErrEmptyResponse = errors.New("provider returned no message")

type Config struct {
	Provider models.Provider
	APIKey   string
	// Model overrides Provider.DefaultModel when set.
	Model string
	// HTTPClient is used by OpenAI-compatible and Gemini providers. Nil
	// means http.DefaultClient.
	HTTPClient *http.Client
}

// Factory builds a chat model. ChatService takes one so tests can swap in a
// fake model.
type Factory func(ctx context.Context, cfg Config) (model.BaseChatModel, error)

// NewChatModel builds the eino chat model matching cfg.Provider.Kind.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = cfg.Provider.DefaultModel
	}

	switch cfg.Provider.Kind {
	case models.ProviderKindOpenAI, "":
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:     apiKey,
			BaseURL:    cfg.Provider.BaseURL,
			Model:      modelName,
			HTTPClient: cfg.HTTPClient,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", cfg.Provider.ID, err)
		}
		return cm, nil

	case models.ProviderKindAnthropic:
		conf := &claude.Config{
			APIKey:    apiKey,
			Model:     modelName,
			MaxTokens: claudeMaxTokens,
		}
		if cfg.Provider.BaseURL != "" {
			baseURL := cfg.Provider.BaseURL
			conf.BaseURL = &baseURL
		}
		cm, err := claude.NewChatModel(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", cfg.Provider.ID, err)
		}
		return cm, nil

	case models.ProviderKindGemini:
		clientConfig := &genai.ClientConfig{
			APIKey:     apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: cfg.HTTPClient,
		}
		if cfg.Provider.BaseURL != "" {
			clientConfig.HTTPOptions.BaseURL = cfg.Provider.BaseURL
		}
		gc, err := genai.NewClient(ctx, clientConfig)
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		cm, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client: gc,
			Model:  modelName,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", cfg.Provider.ID, err)
		}
		return cm, nil
	}
	return nil, fmt.Errorf("unsupported provider kind: %s", cfg.Provider.Kind)
}

// BuildMessages prepends the system prompt to the transcript.
func BuildMessages(systemPrompt string, transcript []models.ChatMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(transcript)+1)
	out = append(out, schema.SystemMessage(systemPrompt))
	for _, m := range transcript {
		switch m.Role {
		case models.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		case models.RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}

// Complete runs one non-streaming generation and returns the reply text.
func Complete(ctx context.Context, cm model.BaseChatModel, messages []*schema.Message) (string, error) {
	out, err := cm.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", ErrEmptyResponse
	}
	return out.Content, nil
}
