// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meridianhq/gchat-bridge/pkg/metrics"
)

// Mention marks a user mention inside an outbound message body.
type Mention struct {
	Start       int
	Length      int
	UserID      string
	DisplayName string
}

// OutboundMessage is an internal outbound message before provider payload
// assembly. SpaceID is required to actually send; without it the message is
// logged locally instead, which lets handlers reply unconditionally even for
// destinations with no routable space.
type OutboundMessage struct {
	Body string
	// SpaceID is the destination space resource name ("spaces/{id}").
	SpaceID string
	// ThreadID and ThreadKey are mutually distinguishing thread addressing
	// strategies: an explicit thread resource name versus a client-chosen
	// key the provider resolves (or creates) a thread for.
	ThreadID    string
	ThreadKey   string
	ThreadState string
	Mentions    []Mention
	// Markdown selects body conversion to provider markup. It defaults to
	// true via NewOutboundMessage.
	Markdown bool
}

// NewOutboundMessage builds an outbound message with markdown conversion
// enabled.
func NewOutboundMessage(spaceID, body string) *OutboundMessage {
	return &OutboundMessage{
		Body:     body,
		SpaceID:  spaceID,
		Markdown: true,
	}
}

// ReplyTo builds an outbound message addressed back at the space and thread
// an inbound message arrived from.
func ReplyTo(in *NormalizedMessage, body string) *OutboundMessage {
	out := NewOutboundMessage(stringExtra(in.Extras, ExtraSpaceID), body)
	out.ThreadID = stringExtra(in.Extras, ExtraThreadID)
	out.ThreadState = stringExtra(in.Extras, ExtraThreadState)
	return out
}

// SendResult reports where a message landed, for the caller's bookkeeping.
// ThreadID comes from the provider response, which matters when a ThreadKey
// caused a new thread to be created.
type SendResult struct {
	SpaceID   string
	ThreadID  string
	ThreadKey string
}

// Card is a structured, multi-section rich message.
type Card struct {
	SpaceID     string
	ThreadID    string
	ThreadKey   string
	ThreadState string

	Title     string
	Summary   string
	Thumbnail string
	// Color is accepted for compatibility but has no provider mapping; it
	// is ignored with a low-severity log line.
	Color string
	// Link, Fields and Image have no provider mapping and composing a card
	// that sets them fails with a MalformedCardError.
	Link   string
	Image  string
	Fields json.RawMessage

	// Body is a serialized JSON list of section objects, passed through
	// verbatim as the card's section list.
	Body json.RawMessage
}

// MalformedCardError reports a card that violates the provider's card
// constraints, naming the offending field.
type MalformedCardError struct {
	Field  string
	Reason string
}

func (e *MalformedCardError) Error() string {
	return fmt.Sprintf("malformed card: field %q %s", e.Field, e.Reason)
}

// Send converts, chunks and posts an outbound text message. Without a space
// id the body is logged and nothing is sent; that case and every per-chunk
// transport failure return no error. A nil result means no payload was sent.
func (b *Bridge) Send(ctx context.Context, msg *OutboundMessage) *SendResult {
	if msg.SpaceID == "" {
		b.log.Info().Str("body", msg.Body).Msg("No space id on outbound message, logging locally")
		metrics.MessagesSent.WithLabelValues("skipped").Inc()
		return nil
	}

	body := msg.Body
	if msg.Markdown && b.convert != nil {
		body = b.convert(body)
	}

	result := &SendResult{
		SpaceID:   msg.SpaceID,
		ThreadID:  msg.ThreadID,
		ThreadKey: msg.ThreadKey,
	}

	for _, chunk := range splitLines(body, b.maxMessageLength()) {
		payload := &MessagePayload{
			Text:        chunk,
			Annotations: mentionAnnotations(msg.Mentions),
		}
		if msg.ThreadID != "" {
			payload.Thread = &Thread{Name: msg.ThreadID}
		}

		created := b.poster.PostMessage(ctx, msg.SpaceID, payload, b.threading(msg, payload))
		if created == nil {
			// Chunks are independent: a failed chunk is logged and the
			// remaining chunks are still attempted.
			b.log.Warn().Str("space_id", msg.SpaceID).Msg("Failed to post message chunk")
			metrics.MessagesSent.WithLabelValues("failed").Inc()
			continue
		}
		metrics.MessagesSent.WithLabelValues("sent").Inc()
		if created.Thread != nil {
			result.ThreadID = created.Thread.Name
		}
	}
	return result
}

// SendCard composes and posts a structured card. Cards with no resolvable
// space id behave like the text path: logged locally, not sent, not an
// error.
func (b *Bridge) SendCard(ctx context.Context, card *Card) (*SendResult, error) {
	wire, err := b.composeCard(card)
	if err != nil {
		return nil, err
	}

	if card.SpaceID == "" {
		b.log.Info().Str("title", card.Title).Msg("No space id on outbound card, logging locally")
		metrics.MessagesSent.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	payload := &MessagePayload{Cards: []CardWire{*wire}}
	if card.ThreadID != "" {
		payload.Thread = &Thread{Name: card.ThreadID}
	}

	msg := &OutboundMessage{
		ThreadKey:   card.ThreadKey,
		ThreadState: card.ThreadState,
	}
	created := b.poster.PostMessage(ctx, card.SpaceID, payload, b.threading(msg, payload))
	if created == nil {
		b.log.Warn().Str("space_id", card.SpaceID).Msg("Failed to post card")
		metrics.MessagesSent.WithLabelValues("failed").Inc()
		return nil, nil
	}
	metrics.MessagesSent.WithLabelValues("sent").Inc()

	result := &SendResult{
		SpaceID:   card.SpaceID,
		ThreadID:  card.ThreadID,
		ThreadKey: card.ThreadKey,
	}
	if created.Thread != nil {
		result.ThreadID = created.Thread.Name
	}
	return result, nil
}

// composeCard validates a card and builds its wire shape.
func (b *Bridge) composeCard(card *Card) (*CardWire, error) {
	if card.Title == "" {
		return nil, &MalformedCardError{Field: "title", Reason: "is required"}
	}
	if card.Link != "" {
		return nil, &MalformedCardError{Field: "link", Reason: "is not supported"}
	}
	if len(card.Fields) > 0 {
		return nil, &MalformedCardError{Field: "fields", Reason: "is not supported"}
	}
	if card.Image != "" {
		return nil, &MalformedCardError{Field: "image", Reason: "is not supported"}
	}
	if card.Color != "" {
		b.log.Debug().Str("color", card.Color).Msg("Card color has no provider mapping, ignoring")
	}

	var sections []json.RawMessage
	if err := json.Unmarshal(card.Body, &sections); err != nil {
		return nil, &MalformedCardError{Field: "body", Reason: "must be a JSON list of sections"}
	}

	return &CardWire{
		Header: &CardHeader{
			Title:    card.Title,
			Subtitle: card.Summary,
			ImageURL: card.Thumbnail,
		},
		// Inner section structure is the provider's concern, not ours.
		Sections: card.Body,
	}, nil
}

// threading selects the thread-addressing strategy for a post: an explicit
// thread key wins, then reply-with-fallback when the space threads messages
// and a thread is already set on the payload, else plain posting.
func (b *Bridge) threading(msg *OutboundMessage, payload *MessagePayload) ThreadingOpts {
	if msg.ThreadKey != "" {
		return ThreadingOpts{Key: msg.ThreadKey, ReplyFallback: true}
	}
	if msg.ThreadState == ThreadingStateThreaded && payload.Thread != nil {
		return ThreadingOpts{ReplyFallback: true}
	}
	return ThreadingOpts{}
}

func (b *Bridge) maxMessageLength() int {
	if b.cfg != nil && b.cfg.MaxMessageLength > 0 {
		return b.cfg.MaxMessageLength
	}
	return DefaultMaxMessageLength
}

// mentionAnnotations translates mention entries into provider-shaped
// annotation records.
func mentionAnnotations(mentions []Mention) []Annotation {
	if len(mentions) == 0 {
		return nil
	}
	annotations := make([]Annotation, len(mentions))
	for i, m := range mentions {
		annotations[i] = Annotation{
			Type:       "USER_MENTION",
			StartIndex: m.Start,
			Length:     m.Length,
			UserMention: &UserMention{
				User: User{
					Name:        MakeUserName(m.UserID),
					DisplayName: m.DisplayName,
					Kind:        UserKindHuman,
				},
				Type: "ADD",
			},
		}
	}
	return annotations
}
