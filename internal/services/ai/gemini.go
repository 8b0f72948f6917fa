package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/synth-respondents-go/internal/config"
)

// GeminiBackend calls the Google Gemini API
type GeminiBackend struct {
	client *genai.Client
	model  string
	logger *logrus.Logger
}

// NewGeminiBackend creates the backend. Close releases the underlying client.
func NewGeminiBackend(ctx context.Context, cfg config.BackendEndpoint, logger *logrus.Logger) (*GeminiBackend, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiBackend{client: client, model: model, logger: logger}, nil
}

// Name implements Backend
func (b *GeminiBackend) Name() string { return NameGemini }

// DefaultModel implements Backend
func (b *GeminiBackend) DefaultModel() string { return b.model }

// Generate implements Backend
func (b *GeminiBackend) Generate(ctx context.Context, req Request) (Result, error) {
	// GenerativeModel carries its sampling settings, so each call gets its own
	name := modelOrDefault(b, req.Model)
	model := b.client.GenerativeModel(name)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	b.logger.WithFields(logrus.Fields{
		"backend":     NameGemini,
		"model":       name,
		"temperature": req.Temperature,
	}).Debug("Sending generate content")

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		status := 0
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		return Result{}, &BackendError{Backend: NameGemini, StatusCode: status, Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, &BackendError{Backend: NameGemini, Err: fmt.Errorf("no candidates returned")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return Result{}, &BackendError{Backend: NameGemini, Err: fmt.Errorf("empty content")}
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return Result{Text: sb.String(), TokensUsed: tokens}, nil
}

// Close releases the client
func (b *GeminiBackend) Close() error {
	return b.client.Close()
}
