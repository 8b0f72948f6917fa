// Package storage keeps the personas and answer histories of a single run.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/synth-respondents-go/internal/config"
	"github.com/synth-respondents-go/internal/middleware"
	"github.com/synth-respondents-go/internal/models"
)

// Store defines session storage operations
type Store interface {
	SavePersonas(ctx context.Context, personas []models.Persona) error
	Personas(ctx context.Context) ([]models.Persona, error)
	AppendAnswer(ctx context.Context, answer models.Answer) error
	// History returns the answers of one persona ordered by answer id
	History(ctx context.Context, personaID string) ([]models.Answer, error)
	// Close purges everything the run stored
	Close(ctx context.Context) error
}

// Manager selects the storage backend and records metrics for every operation
type Manager struct {
	store       Store
	logger      *logrus.Logger
	metrics     *middleware.Metrics
	redisClient *redis.Client
}

// NewManager creates a new storage manager scoped to runID
func NewManager(cfg *config.Config, runID string, metrics *middleware.Metrics, logger *logrus.Logger) (*Manager, error) {
	manager := &Manager{
		logger:  logger,
		metrics: metrics,
	}

	switch cfg.Storage.Type {
	case "redis":
		redisStore, err := NewRedisStore(cfg, runID, logger)
		if err != nil {
			return nil, err
		}
		manager.store = redisStore
		manager.redisClient = redisStore.client
	case "", "memory":
		manager.store = NewMemoryStore(logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	return manager, nil
}

func (m *Manager) observe(operation string, start time.Time, err error) {
	if m.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.metrics.RecordStorageOperation(operation, status, time.Since(start))
}

func (m *Manager) SavePersonas(ctx context.Context, personas []models.Persona) error {
	start := time.Now()
	err := m.store.SavePersonas(ctx, personas)
	m.observe("save_personas", start, err)
	return err
}

func (m *Manager) Personas(ctx context.Context) ([]models.Persona, error) {
	start := time.Now()
	personas, err := m.store.Personas(ctx)
	m.observe("personas", start, err)
	return personas, err
}

func (m *Manager) AppendAnswer(ctx context.Context, answer models.Answer) error {
	start := time.Now()
	err := m.store.AppendAnswer(ctx, answer)
	m.observe("append_answer", start, err)
	return err
}

func (m *Manager) History(ctx context.Context, personaID string) ([]models.Answer, error) {
	start := time.Now()
	history, err := m.store.History(ctx, personaID)
	m.observe("history", start, err)
	return history, err
}

func (m *Manager) Close(ctx context.Context) error {
	err := m.store.Close(ctx)
	if m.redisClient != nil {
		if cerr := m.redisClient.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// GetRedisClient returns the Redis client if available
func (m *Manager) GetRedisClient() *redis.Client {
	return m.redisClient
}

// RedisStore implements storage using Redis under "<prefix>:<run id>:"
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *logrus.Logger
}

// NewRedisStore connects to redis and scopes every key to runID
func NewRedisStore(cfg *config.Config, runID string, logger *logrus.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.Redis.Addr,
		Password: cfg.Storage.Redis.Password,
		DB:       cfg.Storage.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.Storage.Redis.Prefix, runID, logger), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix, runID string, logger *logrus.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: fmt.Sprintf("%s:%s", prefix, runID),
		logger: logger,
	}
}

func (r *RedisStore) key(parts ...string) string {
	k := r.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (r *RedisStore) SavePersonas(ctx context.Context, personas []models.Persona) error {
	if len(personas) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(personas))
	for _, p := range personas {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	key := r.key("personas")
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, values...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save personas: %w", err)
	}
	return nil
}

func (r *RedisStore) Personas(ctx context.Context) ([]models.Persona, error) {
	items, err := r.client.LRange(ctx, r.key("personas"), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	personas := make([]models.Persona, 0, len(items))
	for _, item := range items {
		var p models.Persona
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	return personas, nil
}

func (r *RedisStore) AppendAnswer(ctx context.Context, answer models.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return r.client.RPush(ctx, r.key("history", answer.PersonaID), data).Err()
}

func (r *RedisStore) History(ctx context.Context, personaID string) ([]models.Answer, error) {
	items, err := r.client.LRange(ctx, r.key("history", personaID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	answers := make([]models.Answer, 0, len(items))
	for _, item := range items {
		var a models.Answer
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	sortByID(answers)
	return answers, nil
}

// Close deletes every key of the run. The client stays open.
func (r *RedisStore) Close(ctx context.Context) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+":*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan run keys: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to purge run keys: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	r.logger.WithFields(logrus.Fields{
		"prefix": r.prefix,
		"keys":   deleted,
	}).Debug("Run storage purged")
	return nil
}

// MemoryStore implements storage using in-memory cache
type MemoryStore struct {
	mu        sync.Mutex
	personas  []models.Persona
	histories *cache.Cache
	logger    *logrus.Logger
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{
		histories: cache.New(cache.NoExpiration, 0),
		logger:    logger,
	}
}

func (m *MemoryStore) SavePersonas(ctx context.Context, personas []models.Persona) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.personas = append([]models.Persona(nil), personas...)
	return nil
}

func (m *MemoryStore) Personas(ctx context.Context) ([]models.Persona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Persona(nil), m.personas...), nil
}

func (m *MemoryStore) AppendAnswer(ctx context.Context, answer models.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var history []models.Answer
	if val, found := m.histories.Get(answer.PersonaID); found {
		history = val.([]models.Answer)
	}
	m.histories.Set(answer.PersonaID, append(history, answer), cache.NoExpiration)
	return nil
}

func (m *MemoryStore) History(ctx context.Context, personaID string) ([]models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	val, found := m.histories.Get(personaID)
	if !found {
		return nil, nil
	}
	answers := append([]models.Answer(nil), val.([]models.Answer)...)
	sortByID(answers)
	return answers, nil
}

func (m *MemoryStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.personas = nil
	m.histories.Flush()
	return nil
}

func sortByID(answers []models.Answer) {
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
}
