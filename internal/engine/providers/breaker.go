package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// Guarded wraps a Provider with a circuit breaker. After five consecutive
// transport/5xx/429 failures the provider is skipped for 60 seconds.
// "No transcript" answers do not count as failures.
type Guarded struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// Guard wraps p in a circuit breaker.
func Guard(p Provider) *Guarded {
	return &Guarded{
		inner: p,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        p.Name(),
			MaxRequests: 1,
			Interval:    5 * time.Minute,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			IsSuccessful: isBreakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("provider breaker state change",
					slog.String("provider", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Name implements Provider.
func (g *Guarded) Name() string { return g.inner.Name() }

// Transcript implements Provider.
func (g *Guarded) Transcript(ctx context.Context, id, lang string) ([]captions.Segment, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.Transcript(ctx, id, lang)
	})
	if err != nil {
		return nil, err
	}
	return out.([]captions.Segment), nil
}

// State reports the breaker state ("closed", "half-open", "open").
func (g *Guarded) State() string { return g.cb.State().String() }

func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrEmpty) || errors.Is(err, context.Canceled) {
		return true
	}
	status := engine.StatusOf(err)
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}
