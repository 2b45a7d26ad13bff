// Package openai turns one conversational utterance into name-mode search
// criteria via an OpenAI-compatible chat completions API. The multi-turn
// dialogue that gathers criteria over several messages lives in the assistant
// service that calls this; here a single utterance is extracted in one shot.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/domain"
)

const systemPrompt = `You extract school search criteria from a parent's message.
Respond with JSON only, using these fields when present in the message:
institutionTypeName, provinceName, districtName, propertyNames (array),
minFee, maxFee, minAge, maxAge. Institution types and places are Turkish
display names (e.g. "Ortaokul", "İstanbul"). Omit fields the message does not
mention. Never guess a province or institution type that is not stated.`

// Config holds the extraction provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// Extractor calls an OpenAI-compatible chat model with a JSON response format.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewExtractor creates a criteria extractor.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Extract runs one extraction call. Provider failures wrap
// domain.ErrAssistantUnavailable so transport maps them to 502.
func (e *Extractor) Extract(ctx context.Context, utterance string) (domain.SearchCriteria, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: utterance},
		},
	})
	if err != nil {
		return domain.SearchCriteria{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return domain.SearchCriteria{}, fmt.Errorf("empty completion response: %w", domain.ErrAssistantUnavailable)
	}

	var c domain.SearchCriteria
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &c); err != nil {
		e.logger.Warn("unparsable extraction output",
			zap.String("content", resp.Choices[0].Message.Content),
			zap.Error(err),
		)
		return domain.SearchCriteria{}, fmt.Errorf("parse extraction output: %w", domain.ErrAssistantUnavailable)
	}
	return c, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrAssistantUnavailable for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrAssistantUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("assistant API error %d: %w", reqErr.HTTPStatusCode, wrap)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("assistant API error: %s: %w", apiErr.Message, wrap)
	}
	return fmt.Errorf("assistant API: %v: %w", err, wrap)
}
