package ai

import (
	"context"
	"io"
)

// Waiter blocks until a request to the named backend may proceed
type Waiter interface {
	Wait(ctx context.Context, backend string) error
}

// Limited throttles a backend through a Waiter before every call
type Limited struct {
	Backend
	waiter Waiter
}

// NewLimited wraps b
func NewLimited(b Backend, waiter Waiter) *Limited {
	return &Limited{Backend: b, waiter: waiter}
}

// Generate waits for the limiter, then delegates
func (l *Limited) Generate(ctx context.Context, req Request) (Result, error) {
	if err := l.waiter.Wait(ctx, l.Backend.Name()); err != nil {
		return Result{}, &BackendError{Backend: l.Backend.Name(), Err: err}
	}
	return l.Backend.Generate(ctx, req)
}

// Close closes the wrapped backend when it holds resources
func (l *Limited) Close() error {
	if c, ok := l.Backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
