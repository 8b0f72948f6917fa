package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/synth-respondents-go/internal/config"
)

const defaultAttemptTimeout = 30 * time.Second

// CompatibleBackend talks to any OpenAI-compatible /chat/completions endpoint
// over plain HTTP
type CompatibleBackend struct {
	baseURL        string
	apiKey         string
	model          string
	attemptTimeout time.Duration
	httpClient     *http.Client
	logger         *logrus.Logger
}

// NewCompatibleBackend creates a compatible backend
func NewCompatibleBackend(cfg config.BackendEndpoint, logger *logrus.Logger) *CompatibleBackend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	attempt := defaultAttemptTimeout
	if timeout < attempt {
		attempt = timeout
	}

	logger.WithFields(logrus.Fields{
		"baseURL": cfg.BaseURL,
		"model":   cfg.Model,
	}).Info("Loading compatible endpoint")

	return &CompatibleBackend{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		attemptTimeout: attempt,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

// Name implements Backend
func (b *CompatibleBackend) Name() string { return NameCompatible }

// DefaultModel implements Backend
func (b *CompatibleBackend) DefaultModel() string { return b.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements Backend
func (b *CompatibleBackend) Generate(ctx context.Context, req Request) (Result, error) {
	model := modelOrDefault(b, req.Model)
	jsonData, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Create HTTP request with a timeout context for this specific attempt
	reqCtx, cancel := context.WithTimeout(ctx, b.attemptTimeout)
	defer cancel()

	url := b.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", b.apiKey))

	b.logger.WithFields(logrus.Fields{
		"backend": NameCompatible,
		"model":   model,
		"url":     url,
	}).Debug("Sending chat completion")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, &BackendError{Backend: NameCompatible, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &BackendError{Backend: NameCompatible, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		b.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Compatible request failed")
		return Result{}, &BackendError{
			Backend:    NameCompatible,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, &BackendError{Backend: NameCompatible, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if result.Error.Message != "" {
		return Result{}, &BackendError{Backend: NameCompatible, Err: fmt.Errorf("api error: %s", result.Error.Message)}
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return Result{}, &BackendError{Backend: NameCompatible, Err: fmt.Errorf("empty completion")}
	}

	return Result{
		Text:       result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}
