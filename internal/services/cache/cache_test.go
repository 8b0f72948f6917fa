package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/synth-respondents-go/internal/config"
	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/logger"
)

func testPersona() *models.Persona {
	return &models.Persona{ID: "p1", Age: 35, Gender: "женский", Education: "высшее"}
}

func TestFingerprintDistinguishesInputs(t *testing.T) {
	p := testPersona()
	q := models.Question{ID: "q1", Text: "Есть ли вклад?", Type: models.QuestionOpen}
	base := Fingerprint(p, q, "gpt", "openai", 0.5)

	if base != Fingerprint(p, q, "gpt", "openai", 0.5) {
		t.Fatal("fingerprint must be stable")
	}

	other := *p
	other.Age = 36
	variants := map[string]string{
		"persona":     Fingerprint(&other, q, "gpt", "openai", 0.5),
		"question":    Fingerprint(p, models.Question{ID: "q2", Text: q.Text}, "gpt", "openai", 0.5),
		"model":       Fingerprint(p, q, "gpt-2", "openai", 0.5),
		"backend":     Fingerprint(p, q, "gpt", "gemini", 0.5),
		"temperature": Fingerprint(p, q, "gpt", "openai", 0.6),
	}
	for name, fp := range variants {
		if fp == base {
			t.Errorf("changing %s should change the fingerprint", name)
		}
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(logger.NewDiscard())
	key := Fingerprint(testPersona(), models.Question{ID: "q1", Text: "t"}, "m", "b", 0.1)

	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set(ctx, key, "m", "ответ"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := c.Get(ctx, key); !ok || got != "ответ" {
		t.Fatalf("expected hit, got %q %v", got, ok)
	}
	if c.Len(ctx) != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len(ctx))
	}
	c.Clear(ctx)
	if c.Len(ctx) != 0 {
		t.Fatal("expected empty cache after Clear")
	}
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewCache(&config.Config{}, nil, "run", logger.NewDiscard())
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	c.Set(ctx, "k", "m", "v")
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("disabled cache should never hit")
	}
}

func TestRedisCacheRequiresClient(t *testing.T) {
	cfg := &config.Config{Cache: config.CacheConfig{Enabled: true, Type: "redis"}}
	if _, err := NewCache(cfg, nil, "run", logger.NewDiscard()); err == nil {
		t.Fatal("expected error without redis client")
	}
}

func TestRedisCacheIsRunScoped(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	a := NewRedisCache(client, "personagen", "run-a", logger.NewDiscard())
	b := NewRedisCache(client, "personagen", "run-b", logger.NewDiscard())

	if err := a.Set(ctx, "k", "m", "ответ"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := a.Get(ctx, "k"); !ok || got != "ответ" {
		t.Fatalf("expected hit, got %q %v", got, ok)
	}
	if _, ok := b.Get(ctx, "k"); ok {
		t.Fatal("other run must not see the entry")
	}
	if a.Len(ctx) != 1 || b.Len(ctx) != 0 {
		t.Fatalf("unexpected lengths %d %d", a.Len(ctx), b.Len(ctx))
	}
	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if mr.Exists("personagen:run-a:cache") {
		t.Fatal("expected run hash deleted")
	}
}
