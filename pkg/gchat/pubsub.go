// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// PubSubSource adapts a Google Cloud Pub/Sub subscription to the EventSource
// boundary. Receive settings pin one outstanding message so events reach the
// bridge strictly one at a time, in delivery order.
type PubSubSource struct {
	client *pubsub.Client
	sub    *pubsub.Subscription
	log    zerolog.Logger
}

var _ EventSource = (*PubSubSource)(nil)

// NewPubSubSource connects to the configured subscription. A failure here is
// the one fatal transport condition of the pipeline: without an established
// subscription there is nothing to drive.
func NewPubSubSource(ctx context.Context, cfg *Config, log zerolog.Logger) (*PubSubSource, error) {
	client, err := pubsub.NewClient(ctx, cfg.Project, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	sub := client.Subscription(cfg.Subscription)
	sub.ReceiveSettings.Synchronous = true
	sub.ReceiveSettings.NumGoroutines = 1
	sub.ReceiveSettings.MaxOutstandingMessages = 1

	log.Info().
		Str("subscription", SubscriptionName(cfg.Project, cfg.Subscription)).
		Msg("Subscribed")

	return &PubSubSource{client: client, sub: sub, log: log}, nil
}

// Receive implements EventSource.
func (s *PubSubSource) Receive(ctx context.Context, handle func(context.Context, RawEvent)) error {
	return s.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		handle(ctx, pubsubEvent{msg: msg})
	})
}

// Close releases the underlying client connection.
func (s *PubSubSource) Close() error {
	return s.client.Close()
}

// pubsubEvent wraps a Pub/Sub message as a RawEvent. The client's Ack is
// fire-and-forget; an acknowledgement that never reaches the server only
// causes a redelivery the dedup cache absorbs.
type pubsubEvent struct {
	msg *pubsub.Message
}

func (e pubsubEvent) Data() []byte {
	return e.msg.Data
}

func (e pubsubEvent) Ack() {
	e.msg.Ack()
}
