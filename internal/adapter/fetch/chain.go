package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"relaybot/internal/domain"
	"relaybot/internal/progress"
)

// Method is one interchangeable way to download a URL to a local path.
type Method interface {
	Name() string
	// Available reports whether the method can run on this host.
	Available() bool
	Fetch(ctx context.Context, url, dest string, sink progress.Sink) error
}

// Chain tries methods in priority order until one succeeds. Individual
// failures are logged and demoted to the next method; only when every
// method has failed does the caller see an error.
type Chain struct {
	methods []Method
	timeout time.Duration
}

// NewChain builds a fetch chain with a per-method timeout.
func NewChain(timeout time.Duration, methods ...Method) *Chain {
	return &Chain{methods: methods, timeout: timeout}
}

// Default returns the standard priority order: aria2c (parallel
// connections), wget (single connection, resumable), then the built-in
// HTTP client as the universal fallback.
func Default(timeout time.Duration) *Chain {
	return NewChain(timeout, NewAria2(), NewWget(), NewHTTPStreamer())
}

// Fetch implements domain.Fetcher.
func (c *Chain) Fetch(ctx context.Context, url, dest string, sink progress.Sink) error {
	if url == "" {
		return domain.Terminal("empty URL", nil)
	}

	var lastErr error
	for _, m := range c.methods {
		if !m.Available() {
			log.Printf("fetch: %s not available, skipping", m.Name())
			continue
		}

		mctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := m.Fetch(mctx, url, dest, sink)
		cancel()
		if err == nil {
			log.Printf("fetch: %s succeeded for %s", m.Name(), url)
			return nil
		}
		log.Printf("fetch: %s failed: %v", m.Name(), err)
		lastErr = err
	}

	if lastErr == nil {
		return domain.Terminal("no fetch method available", nil)
	}
	return fmt.Errorf("all fetch methods failed: %w", lastErr)
}
