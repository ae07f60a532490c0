package llm

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrBreakerOpen is the cause attached to calls refused while the circuit
// breaker holds the endpoint open.
var ErrBreakerOpen = errors.New("llm: circuit breaker is open")

// breakerRecovery is how long the breaker stays open before probing again.
const breakerRecovery = 30 * time.Second

// Guard wraps a Completer with client-side request pacing and a circuit
// breaker. Neither mechanism retries: pacing delays the single attempt,
// the breaker refuses it outright after repeated failures.
type Guard struct {
	inner   Completer
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuard builds a guard around inner. requestsPerMinute 0 disables
// pacing; breakerThreshold 0 disables the breaker.
func NewGuard(inner Completer, requestsPerMinute int, breakerThreshold uint32) *Guard {
	g := &Guard{inner: inner}

	if requestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}

	if breakerThreshold > 0 {
		g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    inner.Provider(),
			Timeout: breakerRecovery,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warnf("Circuit breaker for provider %s changed state: %s -> %s", name, from, to)
			},
		})
	}

	return g
}

func (g *Guard) Provider() string        { return g.inner.Provider() }
func (g *Guard) Model() string           { return g.inner.Model() }
func (g *Guard) SupportsToolCalls() bool { return g.inner.SupportsToolCalls() }

func (g *Guard) Complete(ctx context.Context, req Request) (*Completion, error) {
	return g.call(ctx, func() (*Completion, error) {
		return g.inner.Complete(ctx, req)
	})
}

func (g *Guard) CompleteWithTool(ctx context.Context, req Request, tool Tool) (*Completion, error) {
	return g.call(ctx, func() (*Completion, error) {
		return g.inner.CompleteWithTool(ctx, req, tool)
	})
}

func (g *Guard) call(ctx context.Context, fn func() (*Completion, error)) (*Completion, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			// The local pacing budget refused the call before it started.
			return nil, &ProviderError{Kind: ErrKindRateLimited, Message: msgRateLimited, Err: err}
		}
	}

	if g.breaker == nil {
		return fn()
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &ProviderError{Kind: ErrKindServerFault, Message: msgServerFault, Err: ErrBreakerOpen}
		}
		// Inner completers classify their own failures.
		return nil, err
	}
	return result.(*Completion), nil
}

// Close forwards to the wrapped client when it holds releasable resources.
func (g *Guard) Close() error {
	if closer, ok := g.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

var _ Completer = (*Guard)(nil)
