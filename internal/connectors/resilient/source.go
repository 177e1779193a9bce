// Package resilient wraps search backends in a circuit breaker so that a
// backend failing repeatedly is skipped quickly instead of costing every
// request its full timeout.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.SourcePort = (*Source)(nil)

// Configuration keys.
const (
	KeyMaxFailures = "breaker.max_failures"
	KeyOpenSeconds = "breaker.open_seconds"
)

// Defaults.
const (
	DefaultMaxFailures = 5
	DefaultOpenTimeout = 30 * time.Second
)

// Settings tunes the breaker around each backend.
type Settings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32

	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
}

// ParseSettings reads breaker settings, applying defaults.
func ParseSettings(store driven.ConfigStore) Settings {
	s := Settings{MaxFailures: DefaultMaxFailures, OpenTimeout: DefaultOpenTimeout}
	if store == nil {
		return s
	}
	if n := store.GetInt(KeyMaxFailures); n > 0 {
		s.MaxFailures = uint32(n)
	}
	if secs := store.GetInt(KeyOpenSeconds); secs > 0 {
		s.OpenTimeout = time.Duration(secs) * time.Second
	}
	return s
}

// Source decorates a SourcePort with a circuit breaker.
type Source struct {
	inner   driven.SourcePort
	breaker *gobreaker.CircuitBreaker
}

// Wrap decorates port.
func Wrap(port driven.SourcePort, settings Settings, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultMaxFailures
	}
	openTimeout := settings.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = DefaultOpenTimeout
	}

	return &Source{
		inner: port,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        port.ID(),
			MaxRequests: 1,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			// A caller giving up says nothing about the backend.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("source circuit breaker state change",
					zap.String("source", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

// WrapAll decorates every port with its own breaker.
func WrapAll(ports []driven.SourcePort, settings Settings, log *zap.Logger) []driven.SourcePort {
	out := make([]driven.SourcePort, len(ports))
	for i, p := range ports {
		out[i] = Wrap(p, settings, log)
	}
	return out
}

// ID returns the wrapped backend's ID.
func (s *Source) ID() string {
	return s.inner.ID()
}

// ContentTypes returns the wrapped backend's content types.
func (s *Source) ContentTypes() []domain.ContentType {
	return s.inner.ContentTypes()
}

// Search calls the wrapped backend unless the breaker is open, in which case
// it fails at once with domain.ErrSourceUnavailable.
func (s *Source) Search(ctx context.Context, q domain.SourceQuery) ([]domain.SearchResult, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Search(ctx, q)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", s.inner.ID(), domain.ErrSourceUnavailable)
	}
	if err != nil {
		return nil, err
	}
	results, _ := out.([]domain.SearchResult)
	return results, nil
}

// State returns the breaker state ("closed", "half-open" or "open").
func (s *Source) State() string {
	return s.breaker.State().String()
}

// Unwrap returns the decorated backend.
func (s *Source) Unwrap() driven.SourcePort {
	return s.inner
}
