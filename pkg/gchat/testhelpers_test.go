// Copyright 2025-2026 Meridian HQ
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gchat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// fakeRawEvent is a RawEvent backed by a byte slice, recording acks.
type fakeRawEvent struct {
	data  []byte
	mu    sync.Mutex
	acked int
}

func rawEvent(payload string) *fakeRawEvent {
	return &fakeRawEvent{data: []byte(payload)}
}

func (e *fakeRawEvent) Data() []byte { return e.data }

func (e *fakeRawEvent) Ack() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.acked++
}

func (e *fakeRawEvent) AckCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acked
}

// mockPoster captures outbound payloads for test assertions instead of
// hitting a real transport.
type mockPoster struct {
	mu    sync.Mutex
	calls []postCall
	// fail makes every post report absence.
	fail bool
	// threadName is returned as the created message's thread; empty means
	// echo the payload's thread back.
	threadName string
}

type postCall struct {
	SpaceName string
	Payload   *MessagePayload
	Opts      ThreadingOpts
}

func (p *mockPoster) PostMessage(_ context.Context, spaceName string, payload *MessagePayload, opts ThreadingOpts) *Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, postCall{SpaceName: spaceName, Payload: payload, Opts: opts})
	if p.fail {
		return nil
	}
	created := &Message{Name: fmt.Sprintf("%s/messages/%d", spaceName, len(p.calls))}
	switch {
	case p.threadName != "":
		created.Thread = &Thread{Name: p.threadName}
	case payload.Thread != nil:
		created.Thread = payload.Thread
	}
	return created
}

func (p *mockPoster) Calls() []postCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]postCall, len(p.calls))
	copy(cp, p.calls)
	return cp
}

// testBridge builds a Bridge with a mock poster and a handler that collects
// normalized messages.
type testBridge struct {
	*Bridge
	poster *mockPoster

	mu       sync.Mutex
	received []*NormalizedMessage
}

func newTestBridge(cfg *Config) *testBridge {
	if cfg == nil {
		cfg = &Config{}
		cfg.applyDefaults()
	}
	tb := &testBridge{poster: &mockPoster{}}
	tb.Bridge = NewBridge(cfg, nil, func(msg *NormalizedMessage) {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.received = append(tb.received, msg)
	})
	tb.Bridge.poster = tb.poster
	return tb
}

func (tb *testBridge) Received() []*NormalizedMessage {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	cp := make([]*NormalizedMessage, len(tb.received))
	copy(cp, tb.received)
	return cp
}

// fakeChat simulates the Chat REST API behind an httptest server, recording
// calls and serving canned spaces, member pages and attachment bytes.
type fakeChat struct {
	Server *httptest.Server

	mu    sync.Mutex
	calls []endpointCall

	Spaces      map[string]*Space
	MemberPages []membershipPage
	Attachments map[string][]byte
	// PostStatus forces a non-200 response on message posts when nonzero.
	PostStatus int
	// PostedThread is the thread name stamped on created messages.
	PostedThread string
}

type endpointCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func newFakeChat() *fakeChat {
	f := &fakeChat{
		Spaces:      make(map[string]*Space),
		Attachments: make(map[string][]byte),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeChat) Close() { f.Server.Close() }

func (f *fakeChat) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, endpointCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
	})
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages"):
		f.handlePost(w, r)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/members"):
		f.handleMembers(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/download/"):
		f.handleDownload(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/spaces/"):
		f.handleSpace(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeChat) handleSpace(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	space, ok := f.Spaces[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, space)
}

func (f *fakeChat) handleMembers(w http.ResponseWriter, r *http.Request) {
	idx := 0
	if token := r.URL.Query().Get("pageToken"); token != "" {
		fmt.Sscanf(token, "page-%d", &idx)
	}
	if idx >= len(f.MemberPages) {
		writeJSON(w, membershipPage{})
		return
	}
	page := f.MemberPages[idx]
	if idx+1 < len(f.MemberPages) {
		page.NextPageToken = fmt.Sprintf("page-%d", idx+1)
	}
	writeJSON(w, page)
}

func (f *fakeChat) handlePost(w http.ResponseWriter, r *http.Request) {
	if f.PostStatus != 0 {
		http.Error(w, "post rejected", f.PostStatus)
		return
	}
	spaceName := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/messages")
	created := Message{Name: spaceName + "/messages/1"}
	if f.PostedThread != "" {
		created.Thread = &Thread{Name: f.PostedThread}
	}
	writeJSON(w, created)
}

func (f *fakeChat) handleDownload(w http.ResponseWriter, r *http.Request) {
	data, ok := f.Attachments[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(data)
}

func (f *fakeChat) Calls() []endpointCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]endpointCall, len(f.calls))
	copy(cp, f.calls)
	return cp
}

func (f *fakeChat) CalledPath(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Path == path {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
