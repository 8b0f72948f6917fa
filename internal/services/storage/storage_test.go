package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/synth-respondents-go/internal/config"
	"github.com/synth-respondents-go/internal/middleware"
	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/logger"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	personas := []models.Persona{{ID: "a", Age: 30}, {ID: "b", Age: 60}}
	if err := s.SavePersonas(ctx, personas); err != nil {
		t.Fatalf("SavePersonas failed: %v", err)
	}
	got, err := s.Personas(ctx)
	if err != nil || len(got) != 2 || got[0].ID != "a" || got[1].Age != 60 {
		t.Fatalf("unexpected personas %+v, %v", got, err)
	}

	for _, a := range []models.Answer{
		{ID: 3, PersonaID: "a", Text: "три"},
		{ID: 1, PersonaID: "a", Text: "один"},
		{ID: 2, PersonaID: "b", Text: "два"},
	} {
		if err := s.AppendAnswer(ctx, a); err != nil {
			t.Fatalf("AppendAnswer failed: %v", err)
		}
	}

	history, err := s.History(ctx, "a")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 || history[0].ID != 1 || history[1].ID != 3 {
		t.Fatalf("expected history ordered by id, got %+v", history)
	}
	if h, _ := s.History(ctx, "missing"); len(h) != 0 {
		t.Fatalf("expected empty history, got %+v", h)
	}

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if p, _ := s.Personas(ctx); len(p) != 0 {
		t.Fatal("expected personas purged on Close")
	}
	if h, _ := s.History(ctx, "a"); len(h) != 0 {
		t.Fatal("expected history purged on Close")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(logger.NewDiscard()))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// a key from another run must survive the purge
	mr.Set("personagen:other:personas", "x")

	exerciseStore(t, NewRedisStoreWithClient(client, "personagen", "run-1", logger.NewDiscard()))

	if !mr.Exists("personagen:other:personas") {
		t.Fatal("purge must stay within the run prefix")
	}
}

func TestManagerRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Storage: config.StorageConfig{
		Type:  "redis",
		Redis: config.RedisConfig{Addr: mr.Addr(), Prefix: "personagen"},
	}}

	m, err := NewManager(cfg, "run-2", middleware.NewMetrics(), logger.NewDiscard())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if m.GetRedisClient() == nil {
		t.Fatal("expected redis client")
	}
	ctx := context.Background()
	if err := m.AppendAnswer(ctx, models.Answer{ID: 1, PersonaID: "p"}); err != nil {
		t.Fatalf("AppendAnswer failed: %v", err)
	}
	if !mr.Exists("personagen:run-2:history:p") {
		t.Fatal("expected run-scoped history key")
	}
	if err := m.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if mr.Exists("personagen:run-2:history:p") {
		t.Fatal("expected history purged")
	}
}

func TestManagerRejectsUnknownType(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Type: "sqlite"}}
	if _, err := NewManager(cfg, "run", nil, logger.NewDiscard()); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}
