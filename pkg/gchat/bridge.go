// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"context"

	"github.com/rs/zerolog"
)

// Recognized keys of the NormalizedMessage and OutboundMessage extras maps.
const (
	ExtraSpaceID        = "space_id"
	ExtraThreadID       = "thread_id"
	ExtraThreadState    = "thread_state"
	ExtraSlashCommandID = "slash_command_id"
	ExtraArgumentText   = "argument_text"
	ExtraAttachment     = "attachment"
	ExtraDownloader     = "downloader"
)

// AttachmentDownloader is the capability handed to message handlers for
// fetching attachment bytes.
type AttachmentDownloader func(ctx context.Context, uri string) ([]byte, bool)

// NormalizedMessage is the internal representation of an inbound chat
// message, handed to the external message-handling callback.
type NormalizedMessage struct {
	Sender User
	// To is the destination identity; for messages from a direct-message
	// space it is forced to the bot's own identity so replies route back.
	To     User
	Body   string
	Extras map[string]any
}

// MessageHandler is the external callback boundary consuming normalized
// messages.
type MessageHandler func(*NormalizedMessage)

// MarkupConverter converts outbound body text into provider markup. The
// default is gchatfmt.Convert; callers may inject their own.
type MarkupConverter func(string) string

// posterClient is the slice of Client the composer needs. Tests inject a
// counting fake instead of a real transport.
type posterClient interface {
	PostMessage(ctx context.Context, spaceName string, payload *MessagePayload, opts ThreadingOpts) *Message
}

// Bridge ties the ingestion pipeline together: it classifies raw events,
// deduplicates them, normalizes messages for the handler callback, and
// composes outbound messages for the transport client.
type Bridge struct {
	cfg     *Config
	client  *Client
	poster  posterClient
	dedup   *DedupCache
	convert MarkupConverter
	handler MessageHandler
	botUser User
	log     zerolog.Logger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithMarkupConverter replaces the default outbound markup converter.
func WithMarkupConverter(convert MarkupConverter) BridgeOption {
	return func(b *Bridge) { b.convert = convert }
}

// WithLogger sets the bridge's logger.
func WithLogger(log zerolog.Logger) BridgeOption {
	return func(b *Bridge) { b.log = log }
}

// NewBridge creates a Bridge. handler receives every normalized inbound
// message; it may be nil when the bridge is used for outbound sends only.
func NewBridge(cfg *Config, client *Client, handler MessageHandler, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		cfg:     cfg,
		client:  client,
		poster:  client,
		dedup:   NewDedupCache(cfg.DedupCacheSize),
		convert: defaultMarkupConverter,
		handler: handler,
		botUser: BotUser(cfg.AtName),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BotIdentity returns the bridge's own identity.
func (b *Bridge) BotIdentity() User {
	return b.botUser
}
