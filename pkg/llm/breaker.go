package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls to a failing backend.
var ErrCircuitOpen = errors.New("llm circuit breaker is open")

// BreakerConfig controls when the breaker trips and recovers.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
	// HalfOpenMaxRequests is the number of probe calls allowed while half-open.
	HalfOpenMaxRequests uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:         3,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 1,
	}
}

// BreakerProvider wraps an LLMProvider so a dead model server fails fast
// instead of holding every turn until its HTTP timeout.
type BreakerProvider struct {
	next    LLMProvider
	breaker *gobreaker.CircuitBreaker
}

var _ LLMProvider = (*BreakerProvider)(nil)

func NewBreakerProvider(next LLMProvider, cfg BreakerConfig) *BreakerProvider {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.HalfOpenMaxRequests == 0 {
		cfg.HalfOpenMaxRequests = 1
	}

	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: cfg.HalfOpenMaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// A caller giving up is not the backend failing.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &BreakerProvider{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	return b.execute(ctx, func() (string, error) {
		return b.next.Chat(ctx, history, opts...)
	})
}

func (b *BreakerProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return b.execute(ctx, func() (string, error) {
		return b.next.Generate(ctx, prompt, opts...)
	})
}

// State reports "closed", "half-open" or "open".
func (b *BreakerProvider) State() string {
	return b.breaker.State().String()
}

func (b *BreakerProvider) execute(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := b.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrCircuitOpen
		}
		return "", err
	}
	return out.(string), nil
}
