package middleware

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/synth-respondents-go/internal/config"
)

// BackendRateLimiter throttles requests per backend
type BackendRateLimiter struct {
	enabled  bool
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rpm      int
	burst    int
	logger   *logrus.Logger
}

// NewRateLimiter creates a new rate limiter. It returns nil when rate limiting is
// disabled so callers can skip the wrapper entirely.
func NewRateLimiter(cfg *config.Config, logger *logrus.Logger) *BackendRateLimiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return &BackendRateLimiter{
		enabled:  true,
		limiters: make(map[string]*rate.Limiter),
		rpm:      cfg.RateLimit.RequestsPerMinute,
		burst:    cfg.RateLimit.Burst,
		logger:   logger,
	}
}

// Wait blocks until the backend may be called again or ctx is done
func (r *BackendRateLimiter) Wait(ctx context.Context, backend string) error {
	if r == nil || !r.enabled {
		return nil
	}

	limiter := r.getLimiter(backend)
	if limiter.Allow() {
		return nil
	}

	r.logger.WithFields(logrus.Fields{
		"backend": backend,
	}).Debug("Rate limit reached, waiting")

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// getLimiter gets or creates a rate limiter for a backend
func (r *BackendRateLimiter) getLimiter(backend string) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[backend]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := r.limiters[backend]; exists {
		return limiter
	}

	// Rate per second = RPM / 60
	rps := float64(r.rpm) / 60.0
	burst := r.burst
	if burst < 1 {
		burst = 1
	}
	limiter = rate.NewLimiter(rate.Limit(rps), burst)
	r.limiters[backend] = limiter

	return limiter
}
