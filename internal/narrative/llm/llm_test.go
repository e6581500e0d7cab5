package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigfive/pkg/platform/circuit"
	"bigfive/pkg/platform/sentinel"
)

func TestGuardedOpensAfterFailures(t *testing.T) {
	now := time.Unix(0, 0)
	breaker := circuit.New("llm",
		circuit.WithFailureThreshold(2),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)

	fail := true
	calls := 0
	g := NewGuarded(GeneratorFunc(func(context.Context, Request) (Response, error) {
		calls++
		if fail {
			return Response{}, errors.New("boom")
		}
		return Response{Text: `{"lines":[]}`}, nil
	}), breaker, nil)

	ctx := context.Background()
	for range 2 {
		_, err := g.Generate(ctx, Request{})
		require.Error(t, err)
	}
	assert.True(t, breaker.IsOpen())

	_, err := g.Generate(ctx, Request{})
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, 2, calls)

	now = now.Add(time.Minute)
	fail = false
	resp, err := g.Generate(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, resp.Text)
	assert.False(t, breaker.IsOpen())
}

func TestGuardedIgnoresCancellation(t *testing.T) {
	breaker := circuit.New("llm", circuit.WithFailureThreshold(1))
	g := NewGuarded(GeneratorFunc(func(context.Context, Request) (Response, error) {
		return Response{}, context.Canceled
	}), breaker, nil)

	_, err := g.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, breaker.IsOpen())
}

func TestLinesSchema(t *testing.T) {
	s := LinesSchema(5)
	require.Contains(t, s.Properties, "lines")
	assert.Equal(t, int64(5), *s.Properties["lines"].MinItems)
	assert.Equal(t, int64(5), *s.Properties["lines"].MaxItems)
	assert.Equal(t, []string{"lines"}, s.Required)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "  ", "")
	assert.Error(t, err)
}
