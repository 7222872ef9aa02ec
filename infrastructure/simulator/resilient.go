package simulator

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilientClient wraps a Client and applies retry with exponential
// backoff, behind a circuit breaker, to command sends. Queries pass
// through unchanged; a stale read is harmless, a dropped command is not.
type ResilientClient struct {
	inner   Client
	breaker circuitbreaker.CircuitBreaker[struct{}]
	retry   retry.Retry[struct{}]
}

// ResilientConfig configures command-send resilience.
type ResilientConfig struct {
	// RetryMaxAttempts is the maximum number of attempts per command.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64

	// BreakerThreshold is the number of consecutive failures before the
	// circuit opens.
	BreakerThreshold int

	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration
}

// DefaultResilientConfig returns a configuration with sensible defaults.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		RetryMaxAttempts:       3,
		RetryInitialDelay:      50 * time.Millisecond,
		RetryBackoffMultiplier: 2.0,
		BreakerThreshold:       5,
		BreakerTimeout:         10 * time.Second,
	}
}

// NewResilientClient wraps a client with the given resilience configuration.
func NewResilientClient(inner Client, config ResilientConfig) *ResilientClient {
	threshold := config.BreakerThreshold
	if threshold < 1 {
		threshold = 5
	}

	return &ResilientClient{
		inner: inner,
		breaker: circuitbreaker.New[struct{}](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    config.BreakerTimeout,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
		}),
		retry: retry.New[struct{}](retry.Config{
			MaxAttempts:   config.RetryMaxAttempts,
			InitialDelay:  config.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    config.RetryBackoffMultiplier,
		}),
	}
}

// send applies the breaker and retry around one command.
func (c *ResilientClient) send(ctx context.Context, cmd func(ctx context.Context) error) error {
	_, err := c.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return c.retry.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, cmd(ctx)
		})
	})
	return err
}

// Step advances the simulation, retrying on failure.
func (c *ResilientClient) Step(ctx context.Context) error {
	return c.send(ctx, c.inner.Step)
}

// SetSpeed commands a target speed, retrying on failure.
func (c *ResilientClient) SetSpeed(ctx context.Context, id string, speed float64) error {
	return c.send(ctx, func(ctx context.Context) error {
		return c.inner.SetSpeed(ctx, id, speed)
	})
}

// ChangeLane requests a lane change, retrying on failure.
func (c *ResilientClient) ChangeLane(ctx context.Context, id string, lane int, urgency float64) error {
	return c.send(ctx, func(ctx context.Context) error {
		return c.inner.ChangeLane(ctx, id, lane, urgency)
	})
}

// SetRoute replaces a route, retrying on failure.
func (c *ResilientClient) SetRoute(ctx context.Context, id string, edges []string) error {
	return c.send(ctx, func(ctx context.Context) error {
		return c.inner.SetRoute(ctx, id, edges)
	})
}

// VehicleIDs delegates to the wrapped client.
func (c *ResilientClient) VehicleIDs(ctx context.Context) ([]string, error) {
	return c.inner.VehicleIDs(ctx)
}

// Observe delegates to the wrapped client.
func (c *ResilientClient) Observe(ctx context.Context, id string) (Observation, error) {
	return c.inner.Observe(ctx, id)
}

// FindRoute delegates to the wrapped client.
func (c *ResilientClient) FindRoute(ctx context.Context, from, to string) ([]string, error) {
	return c.inner.FindRoute(ctx, from, to)
}

// LaneCount delegates to the wrapped client.
func (c *ResilientClient) LaneCount(ctx context.Context, edge string) (int, error) {
	return c.inner.LaneCount(ctx, edge)
}

// LaneIndex delegates to the wrapped client.
func (c *ResilientClient) LaneIndex(ctx context.Context, id string) (int, error) {
	return c.inner.LaneIndex(ctx, id)
}

// ExpectedVehicles delegates to the wrapped client.
func (c *ResilientClient) ExpectedVehicles(ctx context.Context) (int, error) {
	return c.inner.ExpectedVehicles(ctx)
}

// Close closes the wrapped client.
func (c *ResilientClient) Close() error {
	return c.inner.Close()
}

// BreakerState returns the current state of the command circuit breaker.
func (c *ResilientClient) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// Ensure ResilientClient implements Client
var _ Client = (*ResilientClient)(nil)
