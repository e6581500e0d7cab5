package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bigfive/internal/assessment"
	"bigfive/internal/runs/metrics"
	"bigfive/pkg/platform/circuit"
	"bigfive/pkg/platform/sentinel"
)

// Backend is one store in a fallback chain.
type Backend interface {
	Save(ctx context.Context, hash string, suite assessment.SuiteResult) error
	Get(ctx context.Context, hash string) (*assessment.SuiteResult, error)
}

// Named pairs a backend with the name used in logs, metrics and its breaker.
type Named struct {
	Name    string
	Backend Backend
}

type link struct {
	name    string
	backend Backend
	breaker *circuit.Breaker
}

// FallbackStore tries its backends in order. A backend whose breaker is open
// is skipped until its cooldown lets a probe through.
type FallbackStore struct {
	links   []link
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type FallbackOption func(*FallbackStore)

func WithLogger(logger *slog.Logger) FallbackOption {
	return func(s *FallbackStore) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) FallbackOption {
	return func(s *FallbackStore) {
		s.metrics = m
	}
}

// WithBreakerOptions configures the breaker created for every backend.
func WithBreakerOptions(opts ...circuit.Option) FallbackOption {
	return func(s *FallbackStore) {
		for i := range s.links {
			s.links[i].breaker = circuit.New("runs_"+s.links[i].name, opts...)
		}
	}
}

// NewFallbackStore chains backends in priority order.
func NewFallbackStore(backends []Named, opts ...FallbackOption) *FallbackStore {
	s := &FallbackStore{logger: slog.Default()}
	for _, b := range backends {
		s.links = append(s.links, link{name: b.Name, backend: b.Backend, breaker: circuit.New("runs_" + b.Name)})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stops at the first backend that accepts the suite.
func (s *FallbackStore) Save(ctx context.Context, hash string, suite assessment.SuiteResult) error {
	var errs []error
	for _, l := range s.links {
		if !l.breaker.Allow() {
			continue
		}
		err := l.backend.Save(ctx, hash, suite)
		if err == nil {
			s.recordSuccess(ctx, l)
			return nil
		}
		s.recordFailure(ctx, l, "save", err)
		errs = append(errs, fmt.Errorf("%s: %w", l.name, err))
	}
	return unavailable(errs)
}

// Get returns the first hit. ErrNotFound means every reachable backend
// answered and none holds the hash; a skipped or failing backend makes the
// miss inconclusive.
func (s *FallbackStore) Get(ctx context.Context, hash string) (*assessment.SuiteResult, error) {
	var errs []error
	misses := 0
	for _, l := range s.links {
		if !l.breaker.Allow() {
			errs = append(errs, fmt.Errorf("%s: circuit open", l.name))
			continue
		}
		suite, err := l.backend.Get(ctx, hash)
		switch {
		case err == nil:
			s.recordSuccess(ctx, l)
			return suite, nil
		case errors.Is(err, sentinel.ErrNotFound):
			misses++
			s.recordSuccess(ctx, l)
		default:
			s.recordFailure(ctx, l, "get", err)
			errs = append(errs, fmt.Errorf("%s: %w", l.name, err))
		}
	}
	if misses > 0 && misses == len(s.links) {
		return nil, ErrNotFound
	}
	return nil, unavailable(errs)
}

func (s *FallbackStore) recordSuccess(ctx context.Context, l link) {
	if _, change := l.breaker.RecordSuccess(); change.Closed {
		s.metrics.SetCircuitOpen(l.name, false)
		s.logger.InfoContext(ctx, "result store circuit closed", "backend", l.name)
	}
}

func (s *FallbackStore) recordFailure(ctx context.Context, l link, op string, err error) {
	s.metrics.IncBackendError(l.name)
	s.logger.WarnContext(ctx, "result store backend failed",
		"backend", l.name,
		"op", op,
		"error", err,
	)
	if _, change := l.breaker.RecordFailure(); change.Opened {
		s.metrics.SetCircuitOpen(l.name, true)
		s.logger.WarnContext(ctx, "result store circuit opened", "backend", l.name)
	}
}

func unavailable(errs []error) error {
	if len(errs) == 0 {
		return fmt.Errorf("no result store available: %w", sentinel.ErrUnavailable)
	}
	return fmt.Errorf("all result stores failed: %w", errors.Join(append([]error{sentinel.ErrUnavailable}, errs...)...))
}
