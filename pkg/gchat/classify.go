// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"context"
	"strings"

	"github.com/meridianhq/gchat-bridge/pkg/metrics"
)

// Action method names recognized on CARD_CLICKED events.
const actionBotCommand = "bot_command"

// HandleRawEvent consumes one raw event from the subscription feed: decode,
// fingerprint, acknowledge, dedup, then dispatch by event kind. The event is
// acknowledged before any normalization side effect so a handler failure can
// never cause a redelivery storm; the dedup cache guards against the
// duplication that prompt acking allows.
func (b *Bridge) HandleRawEvent(ctx context.Context, raw RawEvent) {
	evt, err := decodeEvent(raw.Data())
	if err != nil {
		// Unparseable events are acked and dropped; redelivering them
		// would fail the same way.
		b.log.Warn().Err(err).Msg("Failed to decode event payload, dropping")
		raw.Ack()
		metrics.EventsReceived.WithLabelValues("decode_error").Inc()
		return
	}

	key := evt.DedupKey()
	raw.Ack()

	if b.dedup.CheckAndMark(key) {
		b.log.Debug().Str("fingerprint", key).Msg("Duplicate event delivery, skipping")
		metrics.EventsReceived.WithLabelValues("duplicate").Inc()
		return
	}

	b.classify(ctx, evt)
}

// classify routes a decoded envelope to a handler by event kind.
func (b *Bridge) classify(ctx context.Context, evt *ChatEvent) {
	switch evt.Type {
	case EventTypeMessage:
		b.handleMessageEvent(ctx, evt)
	case EventTypeCardClicked:
		b.handleCardClicked(ctx, evt)
	default:
		// Older event shapes omit the modern type tag but still carry
		// message text; treat those as messages to stay compatible.
		if evt.Message != nil && evt.Message.Text != "" {
			b.log.Warn().
				Str("event_type", evt.Type).
				Msg("Deprecated event shape with message text, handling as MESSAGE")
			b.handleMessageEvent(ctx, evt)
			return
		}
		b.log.Info().Str("event_type", evt.Type).Msg("Unclassified event kind, dropping")
		metrics.EventsReceived.WithLabelValues("unclassified").Inc()
	}
}

// handleCardClicked rewrites a recognized synthetic command-dispatch card
// action into a plain message and re-enters the message path.
func (b *Bridge) handleCardClicked(ctx context.Context, evt *ChatEvent) {
	if evt.Action == nil {
		b.log.Warn().Msg("CARD_CLICKED event without action, dropping")
		metrics.EventsReceived.WithLabelValues("dropped").Inc()
		return
	}

	switch evt.Action.ActionMethodName {
	case actionBotCommand:
		command, ok := evt.Action.Parameter("command")
		if !ok {
			b.log.Warn().Msg("bot_command action missing required command parameter, dropping")
			metrics.EventsReceived.WithLabelValues("dropped").Inc()
			return
		}
		args, _ := evt.Action.Parameter("command_args")
		if evt.Message == nil {
			evt.Message = &Message{}
		}
		evt.Message.Text = command + " " + args
		b.handleMessageEvent(ctx, evt)
	default:
		b.log.Warn().
			Str("action_method", evt.Action.ActionMethodName).
			Msg("Unrecognized card action method, dropping")
		metrics.EventsReceived.WithLabelValues("dropped").Inc()
	}
}

// handleMessageEvent normalizes a message-bearing envelope and hands the
// result to the external callback.
func (b *Bridge) handleMessageEvent(ctx context.Context, evt *ChatEvent) {
	if evt.Message == nil {
		b.log.Info().Msg("MESSAGE event without message body, dropping")
		metrics.EventsReceived.WithLabelValues("dropped").Inc()
		return
	}

	msg := b.normalize(evt)
	b.log.Debug().
		Str("space_id", stringExtra(msg.Extras, ExtraSpaceID)).
		Str("sender", msg.Sender.Name).
		Msg("Received message")
	metrics.EventsReceived.WithLabelValues("handled").Inc()

	if b.handler != nil {
		b.handler(msg)
	}
}

// normalize builds the internal message representation from an envelope.
// Missing sender sub-fields degrade to empty strings rather than failures.
func (b *Bridge) normalize(evt *ChatEvent) *NormalizedMessage {
	body := evt.Message.Text
	// A direct mention arrives as "@bot rest of command"; strip the
	// at-name so handlers see just the command text.
	if b.cfg.AtName != "" {
		body = strings.TrimPrefix(body, b.cfg.AtName)
	}
	body = strings.TrimSpace(body)

	extras := make(map[string]any)
	if evt.Space != nil {
		extras[ExtraSpaceID] = evt.Space.Name
		extras[ExtraThreadState] = evt.Space.SpaceThreadingState
	}
	if evt.Message.Thread != nil {
		extras[ExtraThreadID] = evt.Message.Thread.Name
	}
	if evt.Message.SlashCommand != nil {
		extras[ExtraSlashCommandID] = evt.Message.SlashCommand.CommandID
	}
	if evt.Message.ArgumentText != "" {
		extras[ExtraArgumentText] = evt.Message.ArgumentText
	}
	if len(evt.Message.Attachment) > 0 {
		extras[ExtraAttachment] = evt.Message.Attachment
		if b.client != nil {
			extras[ExtraDownloader] = AttachmentDownloader(b.client.Download)
		}
	}

	msg := &NormalizedMessage{
		Sender: senderOrDefault(evt.Message),
		Body:   body,
		Extras: extras,
	}
	if b.isDirectMessage(evt) {
		msg.To = b.botUser
	}
	return msg
}

// isDirectMessage reports whether the originating space is a DM, checking
// both the envelope space and the per-message space the provider sometimes
// nests instead.
func (b *Bridge) isDirectMessage(evt *ChatEvent) bool {
	if evt.Space != nil && evt.Space.Type == SpaceTypeDM {
		return true
	}
	return evt.Message != nil && evt.Message.Space != nil && evt.Message.Space.Type == SpaceTypeDM
}

func stringExtra(extras map[string]any, key string) string {
	if v, ok := extras[key].(string); ok {
		return v
	}
	return ""
}
