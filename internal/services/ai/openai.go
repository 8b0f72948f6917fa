package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/synth-respondents-go/internal/config"
)

// OpenAIBackend calls the OpenAI chat completions API
type OpenAIBackend struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

// NewOpenAIBackend creates the backend. A non-empty BaseURL points it at another host.
func NewOpenAIBackend(cfg config.BackendEndpoint, logger *logrus.Logger) *OpenAIBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// Name implements Backend
func (b *OpenAIBackend) Name() string { return NameOpenAI }

// DefaultModel implements Backend
func (b *OpenAIBackend) DefaultModel() string { return b.model }

// Generate implements Backend
func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (Result, error) {
	model := modelOrDefault(b, req.Model)
	b.logger.WithFields(logrus.Fields{
		"backend":     NameOpenAI,
		"model":       model,
		"temperature": req.Temperature,
	}).Debug("Sending chat completion")

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return Result{}, &BackendError{Backend: NameOpenAI, StatusCode: statusOf(err), Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Result{}, &BackendError{Backend: NameOpenAI, Err: fmt.Errorf("empty completion")}
	}

	return Result{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
