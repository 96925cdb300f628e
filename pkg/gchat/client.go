// Copyright 2025-2026 Meridian HQ
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gchat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// DefaultBaseURL is the Google Chat REST endpoint.
const DefaultBaseURL = "https://chat.googleapis.com/v1"

// DefaultPageSize is the member-listing page size. It is deliberately large
// but bounded rather than relying on the platform's implicit default.
const DefaultPageSize = 1000

// ReplyOptionFallbackToNewThread asks the provider to attach the message to
// an existing thread, creating a new one if the addressed thread is missing.
const ReplyOptionFallbackToNewThread = "REPLY_MESSAGE_FALLBACK_TO_NEW_THREAD"

// MessagePayload is the wire shape posted to the messages endpoint.
type MessagePayload struct {
	Text        string       `json:"text,omitempty"`
	Cards       []CardWire   `json:"cards,omitempty"`
	Thread      *Thread      `json:"thread,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation is a provider-shaped message annotation. Only user mentions are
// produced by this bridge.
type Annotation struct {
	Type        string       `json:"type"`
	StartIndex  int          `json:"startIndex"`
	Length      int          `json:"length"`
	UserMention *UserMention `json:"userMention,omitempty"`
}

// UserMention references a user inside a mention annotation.
type UserMention struct {
	User User   `json:"user"`
	Type string `json:"type"`
}

// CardWire is the wire shape of a structured card.
type CardWire struct {
	Header   *CardHeader     `json:"header,omitempty"`
	Sections json.RawMessage `json:"sections"`
}

// CardHeader maps card title, summary and thumbnail to provider header fields.
type CardHeader struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ThreadingOpts selects the thread-addressing query parameters for a post.
type ThreadingOpts struct {
	// Key is a client-chosen thread key; when set the provider replies into
	// the keyed thread or creates a new one.
	Key string
	// ReplyFallback requests ReplyOptionFallbackToNewThread addressing.
	ReplyFallback bool
}

// membershipPage is one page of the member listing.
type membershipPage struct {
	Memberships   []Membership `json:"memberships"`
	NextPageToken string       `json:"nextPageToken"`
}

// Client executes authenticated request/response calls against the chat REST
// API. Every call returns the decoded body on HTTP 200 and signals absence
// (a zero return, not an error) on any other status, after logging the status
// and body for diagnostics. All requests pass through a circuit breaker so a
// misbehaving upstream stops being hammered.
type Client struct {
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	baseURL  string
	pageSize int
	log      zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the REST endpoint, mainly for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithPageSize overrides the member-listing page size.
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient wraps an authenticated *http.Client (obtained from the credential
// provider) as a chat transport client.
func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	c := &Client{
		http: httpClient,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:     "chat-api",
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
		baseURL:  DefaultBaseURL,
		pageSize: DefaultPageSize,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSpace fetches a space by resource name ("spaces/{id}"). Returns nil when
// the space cannot be fetched.
func (c *Client) GetSpace(ctx context.Context, spaceName string) *Space {
	var space Space
	if !c.getJSON(ctx, c.baseURL+"/"+MakeSpaceName(spaceName), &space) {
		return nil
	}
	return &space
}

// Members returns the space's member records as a lazy sequence, following
// continuation tokens until the listing is exhausted. Ranging over the
// sequence again restarts the listing from the first page. A transport
// failure mid-listing ends the sequence early; the pages already yielded are
// unaffected.
func (c *Client) Members(ctx context.Context, spaceName string) iter.Seq[Membership] {
	return func(yield func(Membership) bool) {
		token := ""
		for {
			page := c.listMembers(ctx, spaceName, token)
			if page == nil {
				return
			}
			for _, m := range page.Memberships {
				if !yield(m) {
					return
				}
			}
			if page.NextPageToken == "" {
				return
			}
			token = page.NextPageToken
		}
	}
}

func (c *Client) listMembers(ctx context.Context, spaceName, pageToken string) *membershipPage {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	var page membershipPage
	if !c.getJSON(ctx, c.baseURL+"/"+MakeSpaceName(spaceName)+"/members?"+q.Encode(), &page) {
		return nil
	}
	return &page
}

// PostMessage posts a message payload into a space, applying the requested
// thread addressing. Returns the created message, or nil when the provider
// did not accept the post.
func (c *Client) PostMessage(ctx context.Context, spaceName string, payload *MessagePayload, opts ThreadingOpts) *Message {
	q := url.Values{}
	if opts.Key != "" {
		q.Set("threadKey", opts.Key)
	}
	if opts.ReplyFallback {
		q.Set("messageReplyOption", ReplyOptionFallbackToNewThread)
	}
	endpoint := c.baseURL + "/" + MakeSpaceName(spaceName) + "/messages"
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to encode message payload")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to build post request")
		return nil
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	var created Message
	if !c.doJSON(req, &created) {
		return nil
	}
	return &created
}

// Download fetches raw bytes from an attachment URI. The boolean reports
// whether the download succeeded.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		c.log.Error().Err(err).Str("uri", uri).Msg("Failed to build download request")
		return nil, false
	}

	resp, err := c.do(req)
	if err != nil {
		c.log.Error().Err(err).Str("uri", uri).Msg("Attachment download failed")
		return nil, false
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("uri", uri).
			Str("body", string(data)).
			Msg("Attachment download returned non-200")
		return nil, false
	}
	if err != nil {
		c.log.Error().Err(err).Str("uri", uri).Msg("Failed to read attachment body")
		return nil, false
	}
	return data, true
}

// getJSON performs a GET and decodes a 200 body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Error().Err(err).Str("url", endpoint).Msg("Failed to build request")
		return false
	}
	return c.doJSON(req, out)
}

// doJSON executes the request and decodes a 200 body into out. Any other
// status is logged with its body and reported as absence.
func (c *Client) doJSON(req *http.Request, out any) bool {
	resp, err := c.do(req)
	if err != nil {
		c.log.Error().Err(err).Str("url", req.URL.String()).Msg("Chat API request failed")
		return false
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("url", req.URL.String()).
			Str("body", string(body)).
			Msg("Chat API returned non-200")
		return false
	}
	if readErr != nil {
		c.log.Error().Err(readErr).Str("url", req.URL.String()).Msg("Failed to read response body")
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.Error().Err(err).Str("url", req.URL.String()).Msg("Failed to decode response body")
		return false
	}
	return true
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
}
