package ai

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/synth-respondents-go/internal/config"
)

// Registry holds the configured backends and the primary/secondary preference
type Registry struct {
	backends  map[string]Backend
	primary   string
	secondary string
	logger    *logrus.Logger
}

// NewRegistry builds every backend that has credentials. It fails with ErrNoBackend
// when none has. A non-nil limiter throttles each backend separately.
func NewRegistry(ctx context.Context, cfg *config.Config, limiter Waiter, logger *logrus.Logger) (*Registry, error) {
	var backends []Backend

	if cfg.Backends.OpenAI.APIKey != "" {
		backends = append(backends, NewOpenAIBackend(cfg.Backends.OpenAI, logger))
	}
	if cfg.Backends.Gemini.APIKey != "" {
		gemini, err := NewGeminiBackend(ctx, cfg.Backends.Gemini, logger)
		if err != nil {
			return nil, err
		}
		backends = append(backends, gemini)
	}
	if cfg.Backends.Compatible.APIKey != "" {
		if cfg.Backends.Compatible.BaseURL == "" {
			return nil, fmt.Errorf("compatible backend requires base_url")
		}
		backends = append(backends, NewCompatibleBackend(cfg.Backends.Compatible, logger))
	}

	if limiter != nil {
		for i, b := range backends {
			backends[i] = NewLimited(b, limiter)
		}
	}

	return NewRegistryFromBackends(cfg.Backends.Primary, cfg.Backends.Secondary, logger, backends...)
}

// NewRegistryFromBackends builds a registry from ready backends. An unconfigured
// primary is replaced by the secondary, then by any remaining backend.
func NewRegistryFromBackends(primary, secondary string, logger *logrus.Logger, backends ...Backend) (*Registry, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackend
	}

	r := &Registry{
		backends: make(map[string]Backend, len(backends)),
		logger:   logger,
	}
	for _, b := range backends {
		r.backends[b.Name()] = b
	}

	names := r.Names()
	r.primary = pick(r.backends, primary, secondary, names)
	r.secondary = ""
	if secondary != r.primary {
		if _, ok := r.backends[secondary]; ok {
			r.secondary = secondary
		}
	}
	if r.secondary == "" {
		for _, name := range names {
			if name != r.primary {
				r.secondary = name
				break
			}
		}
	}

	logger.WithFields(logrus.Fields{
		"backends":  names,
		"primary":   r.primary,
		"secondary": r.secondary,
	}).Info("Backend registry initialized")

	return r, nil
}

func pick(backends map[string]Backend, primary, secondary string, names []string) string {
	if _, ok := backends[primary]; ok {
		return primary
	}
	if _, ok := backends[secondary]; ok {
		return secondary
	}
	return names[0]
}

// Names returns the configured backend names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a backend by name
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.backends[name]
	return b, ok
}

// Primary returns the preferred backend
func (r *Registry) Primary() Backend {
	return r.backends[r.primary]
}

// Secondary returns the fallback backend, or nil when only one is configured
func (r *Registry) Secondary() Backend {
	if r.secondary == "" {
		return nil
	}
	return r.backends[r.secondary]
}

// Choose resolves a backend preference. An empty or unknown preference selects the primary.
func (r *Registry) Choose(preference string) Backend {
	if b, ok := r.backends[preference]; ok {
		return b
	}
	return r.Primary()
}

// Failover returns the backend to use after current failed. The primary hands over
// to the secondary and every other backend hands over to the primary. With a single
// backend it returns current again.
func (r *Registry) Failover(current Backend) Backend {
	if current == nil || current.Name() != r.primary {
		return r.Primary()
	}
	if s := r.Secondary(); s != nil {
		return s
	}
	return current
}

// Close releases backends that hold connections
func (r *Registry) Close() error {
	var firstErr error
	for _, b := range r.backends {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
