// Package llm adapts language model providers to the narrative generator
// contract.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bigfive/pkg/platform/circuit"
	"bigfive/pkg/platform/sentinel"
)

// ErrEmpty is returned when the provider answers without text.
var ErrEmpty = errors.New("llm returned no text")

// Request is one generation call.
type Request struct {
	System      string
	User        string
	Temperature float32
}

// Response carries the raw model text.
type Response struct {
	Text  string
	Model string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Guarded wraps a Generator with a circuit breaker. While the circuit is
// open calls fail fast with sentinel.ErrUnavailable.
type Guarded struct {
	next    Generator
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewGuarded wraps next. A nil logger falls back to slog.Default.
func NewGuarded(next Generator, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) Generate(ctx context.Context, req Request) (Response, error) {
	if !g.breaker.Allow() {
		return Response{}, fmt.Errorf("%s circuit open: %w", g.breaker.Name(), sentinel.ErrUnavailable)
	}
	resp, err := g.next.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Response{}, err
		}
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "llm circuit opened", "breaker", g.breaker.Name(), "error", err)
		}
		return Response{}, err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "llm circuit closed", "breaker", g.breaker.Name())
	}
	return resp, nil
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (Response, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
