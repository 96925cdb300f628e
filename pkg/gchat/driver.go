// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// RawEvent is one undecoded unit of work from the subscription transport.
// Ack is single-use with idempotent intent; the driver acknowledges every
// event exactly once.
type RawEvent interface {
	Data() []byte
	Ack()
}

// EventSource is the at-least-once subscription transport boundary. Receive
// blocks, invoking handle synchronously per event, until ctx is cancelled
// (nil return) or the transport fails (non-nil return).
type EventSource interface {
	Receive(ctx context.Context, handle func(context.Context, RawEvent)) error
	Close() error
}

// Driver lifecycle states.
const (
	StateDisconnected int32 = iota
	StateSubscribed
	StateRunning
	StateDraining
)

// LifecycleHooks are invoked when the driver establishes the subscription
// and when it drains on shutdown.
type LifecycleHooks struct {
	OnConnect    func()
	OnDisconnect func()
}

// Driver owns the long-lived subscription loop. Each arriving raw event is
// dispatched synchronously to the bridge, so back-pressure is implicit: the
// transport does not hand over the next event until the previous callback
// returns. Cancellation is cooperative; on every exit path the driver drains,
// runs the disconnect hook and releases the transport.
type Driver struct {
	source EventSource
	bridge *Bridge
	hooks  LifecycleHooks
	state  atomic.Int32
	log    zerolog.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithLifecycleHooks sets the connect/disconnect hooks.
func WithLifecycleHooks(hooks LifecycleHooks) DriverOption {
	return func(d *Driver) { d.hooks = hooks }
}

// WithDriverLogger sets the driver's logger.
func WithDriverLogger(log zerolog.Logger) DriverOption {
	return func(d *Driver) { d.log = log }
}

// NewDriver creates a Driver feeding events from source into bridge.
func NewDriver(source EventSource, bridge *Bridge, opts ...DriverOption) *Driver {
	d := &Driver{
		source: source,
		bridge: bridge,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() int32 {
	return d.state.Load()
}

// Run blocks on the subscription loop until ctx is cancelled. Transient
// receive failures are retried with exponential backoff; the loop never dies
// on a single bad delivery.
func (d *Driver) Run(ctx context.Context) error {
	d.state.Store(StateSubscribed)
	if d.hooks.OnConnect != nil {
		d.hooks.OnConnect()
	}
	defer func() {
		d.state.Store(StateDraining)
		if d.hooks.OnDisconnect != nil {
			d.hooks.OnDisconnect()
		}
		if err := d.source.Close(); err != nil {
			d.log.Warn().Err(err).Msg("Failed to close event source")
		}
		d.state.Store(StateDisconnected)
	}()

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	for {
		d.state.Store(StateRunning)
		err := d.source.Receive(ctx, d.bridge.HandleRawEvent)
		if ctx.Err() != nil {
			d.log.Info().Msg("Subscription loop interrupted, draining")
			return nil
		}
		if err == nil {
			d.log.Info().Msg("Event source closed, draining")
			return nil
		}

		wait := bo.NextBackOff()
		d.log.Warn().Err(err).Dur("retry_in", wait).Msg("Receive failed, retrying")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil
		}
	}
}
