package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/synth-respondents-go/internal/config"
	"github.com/synth-respondents-go/pkg/logger"
)

type stubBackend struct {
	name string
}

func (s stubBackend) Name() string         { return s.name }
func (s stubBackend) DefaultModel() string { return s.name + "-model" }
func (s stubBackend) Generate(ctx context.Context, req Request) (Result, error) {
	return Result{Text: s.name}, nil
}

func TestBackendErrorRetryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{429, true},
		{400, false},
		{401, false},
		{404, false},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		err := &BackendError{Backend: NameOpenAI, StatusCode: tt.status, Err: errors.New("x")}
		if got := err.Retryable(); got != tt.want {
			t.Errorf("status %d: Retryable() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCompatibleBackendGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Ну, вклад у меня есть."}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	b := NewCompatibleBackend(config.BackendEndpoint{
		APIKey:  "secret",
		BaseURL: srv.URL + "/v1/",
		Model:   "local-model",
		Timeout: 5 * time.Second,
	}, logger.NewDiscard())

	res, err := b.Generate(context.Background(), Request{Prompt: "Есть ли вклад?", Temperature: 0.4, MaxTokens: 100})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Text != "Ну, вклад у меня есть." || res.TokensUsed != 42 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got.Model != "local-model" || got.Temperature != 0.4 || got.MaxTokens != 100 {
		t.Fatalf("unexpected request body %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("expected one user message, got %+v", got.Messages)
	}
}

func TestCompatibleBackendClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	b := NewCompatibleBackend(config.BackendEndpoint{APIKey: "k", BaseURL: srv.URL}, logger.NewDiscard())
	_, err := b.Generate(context.Background(), Request{Prompt: "p"})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.StatusCode != http.StatusUnauthorized || be.Retryable() {
		t.Fatalf("expected permanent 401, got %+v", be)
	}
}

func TestCompatibleBackendEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	b := NewCompatibleBackend(config.BackendEndpoint{APIKey: "k", BaseURL: srv.URL}, logger.NewDiscard())
	_, err := b.Generate(context.Background(), Request{Prompt: "p"})
	var be *BackendError
	if !errors.As(err, &be) || !be.Retryable() {
		t.Fatalf("expected retryable BackendError, got %v", err)
	}
}

func TestOpenAIBackendAgainstStubServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Кредитов не беру."},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`))
	}))
	defer srv.Close()

	b := NewOpenAIBackend(config.BackendEndpoint{APIKey: "k", BaseURL: srv.URL, Model: "gpt-test"}, logger.NewDiscard())
	res, err := b.Generate(context.Background(), Request{Prompt: "p", Temperature: 0.5})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Text != "Кредитов не беру." || res.TokensUsed != 8 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNewRegistryWithoutCredentials(t *testing.T) {
	cfg := &config.Config{}
	_, err := NewRegistry(context.Background(), cfg, nil, logger.NewDiscard())
	if !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
}

func TestRegistryPrimaryFallsBackToSecondary(t *testing.T) {
	r, err := NewRegistryFromBackends(NameOpenAI, NameGemini, logger.NewDiscard(), stubBackend{NameGemini})
	if err != nil {
		t.Fatalf("NewRegistryFromBackends failed: %v", err)
	}
	if r.Primary().Name() != NameGemini {
		t.Fatalf("expected gemini as primary, got %s", r.Primary().Name())
	}
	if r.Secondary() != nil {
		t.Fatal("expected no secondary with a single backend")
	}
	if r.Failover(r.Primary()).Name() != NameGemini {
		t.Fatal("single backend should fail over to itself")
	}
}

func TestRegistryFailoverAlternates(t *testing.T) {
	r, err := NewRegistryFromBackends(NameOpenAI, NameGemini, logger.NewDiscard(),
		stubBackend{NameOpenAI}, stubBackend{NameGemini}, stubBackend{NameCompatible})
	if err != nil {
		t.Fatalf("NewRegistryFromBackends failed: %v", err)
	}
	first := r.Choose("")
	if first.Name() != NameOpenAI {
		t.Fatalf("expected openai, got %s", first.Name())
	}
	second := r.Failover(first)
	if second.Name() != NameGemini {
		t.Fatalf("expected gemini, got %s", second.Name())
	}
	if r.Failover(second).Name() != NameOpenAI {
		t.Fatal("expected failover back to primary")
	}
	if r.Choose(NameCompatible).Name() != NameCompatible {
		t.Fatal("explicit preference should win")
	}
}

func TestRegistryFailoverFromThirdBackend(t *testing.T) {
	r, err := NewRegistryFromBackends(NameOpenAI, NameGemini, logger.NewDiscard(),
		stubBackend{NameOpenAI}, stubBackend{NameGemini}, stubBackend{NameCompatible})
	if err != nil {
		t.Fatalf("NewRegistryFromBackends failed: %v", err)
	}

	third := r.Choose(NameCompatible)
	next := r.Failover(third)
	if next.Name() != NameOpenAI {
		t.Fatalf("expected failover from compatible to openai, got %s", next.Name())
	}
	if r.Failover(next).Name() != NameGemini {
		t.Fatal("expected the primary to hand over to the secondary")
	}
	if r.Failover(nil).Name() != NameOpenAI {
		t.Fatal("expected nil to resolve to the primary")
	}
}

func TestNewGeminiBackendDefaults(t *testing.T) {
	b, err := NewGeminiBackend(context.Background(), config.BackendEndpoint{APIKey: "k"}, logger.NewDiscard())
	if err != nil {
		t.Fatalf("NewGeminiBackend failed: %v", err)
	}
	defer b.Close()

	if b.Name() != NameGemini {
		t.Fatalf("expected name %s, got %s", NameGemini, b.Name())
	}
	if b.DefaultModel() != "gemini-1.5-flash" {
		t.Fatalf("expected default model gemini-1.5-flash, got %s", b.DefaultModel())
	}
}

func TestNewGeminiBackendCustomModel(t *testing.T) {
	b, err := NewGeminiBackend(context.Background(), config.BackendEndpoint{APIKey: "k", Model: "gemini-1.5-pro"}, logger.NewDiscard())
	if err != nil {
		t.Fatalf("NewGeminiBackend failed: %v", err)
	}
	defer b.Close()

	if b.DefaultModel() != "gemini-1.5-pro" {
		t.Fatalf("expected configured model, got %s", b.DefaultModel())
	}
	if modelOrDefault(b, "") != "gemini-1.5-pro" || modelOrDefault(b, "other") != "other" {
		t.Fatal("request model should override the configured one")
	}
}

func TestGeminiBackendGenerateWrapsErrors(t *testing.T) {
	b, err := NewGeminiBackend(context.Background(), config.BackendEndpoint{APIKey: "k"}, logger.NewDiscard())
	if err != nil {
		t.Fatalf("NewGeminiBackend failed: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Generate(ctx, Request{Prompt: "p", Temperature: 0.3, MaxTokens: 50})
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Backend != NameGemini {
		t.Fatalf("expected gemini backend in error, got %s", be.Backend)
	}
}

func TestNewRegistryWithGeminiOnly(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backends.Primary = NameOpenAI
	cfg.Backends.Gemini = config.BackendEndpoint{APIKey: "k"}

	r, err := NewRegistry(context.Background(), cfg, nil, logger.NewDiscard())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	defer r.Close()

	if r.Primary().Name() != NameGemini {
		t.Fatalf("expected gemini as primary, got %s", r.Primary().Name())
	}
}

type countingWaiter struct {
	calls []string
	err   error
}

func (c *countingWaiter) Wait(ctx context.Context, backend string) error {
	c.calls = append(c.calls, backend)
	return c.err
}

func TestLimitedWaitsBeforeCall(t *testing.T) {
	w := &countingWaiter{}
	l := NewLimited(stubBackend{NameGemini}, w)
	res, err := l.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil || res.Text != NameGemini {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
	if len(w.calls) != 1 || w.calls[0] != NameGemini {
		t.Fatalf("expected one wait for gemini, got %v", w.calls)
	}

	w.err = context.DeadlineExceeded
	_, err = l.Generate(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected limiter error, got %v", err)
	}
}
