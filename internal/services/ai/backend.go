// Package ai wraps the text-generation backends behind one interface.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Backend names
const (
	NameOpenAI     = "openai"
	NameGemini     = "gemini"
	NameCompatible = "compatible"
)

// ErrNoBackend is returned when no backend credential was supplied
var ErrNoBackend = errors.New("no text-generation backend configured")

// Request is a single generation call
type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Result is the generated text and the tokens it cost
type Result struct {
	Text       string
	TokensUsed int
}

// Backend generates text from a prompt
type Backend interface {
	Name() string
	// DefaultModel is used when a request leaves Model empty
	DefaultModel() string
	Generate(ctx context.Context, req Request) (Result, error)
}

// BackendError wraps a failed generation call
type BackendError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend failed with status %d: %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s backend failed: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed. Client errors other than
// rate limiting are permanent.
func (e *BackendError) Retryable() bool {
	if e.StatusCode == 429 {
		return true
	}
	return e.StatusCode < 400 || e.StatusCode >= 500
}

func modelOrDefault(b Backend, model string) string {
	if model != "" {
		return model
	}
	return b.DefaultModel()
}
