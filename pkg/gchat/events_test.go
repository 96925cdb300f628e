// Copyright 2025-2026 Meridian HQ
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gchat

import "testing"

// TestDedupKey_AllFieldsPresent verifies the fingerprint composition when
// every component is available.
func TestDedupKey_AllFieldsPresent(t *testing.T) {
	t.Parallel()
	evt := &ChatEvent{
		Type:      EventTypeMessage,
		EventTime: "2026-01-02T03:04:05Z",
		Space:     &Space{Name: "spaces/A"},
		Message:   &Message{LastUpdateTime: "2026-01-02T03:04:06Z"},
	}
	want := "2026-01-02T03:04:05Z|MESSAGE|spaces/A|2026-01-02T03:04:06Z"
	if got := evt.DedupKey(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// TestDedupKey_MissingFieldsUseSentinels verifies absent components are
// replaced by non-empty sentinels rather than empty strings.
func TestDedupKey_MissingFieldsUseSentinels(t *testing.T) {
	t.Parallel()
	want := "no-event-time|no-event-type|no-space-name|no-update-time"
	if got := (&ChatEvent{}).DedupKey(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// TestDedupKey_PartialEnvelopesDiffer verifies two envelopes differing in a
// single present component produce distinct fingerprints.
func TestDedupKey_PartialEnvelopesDiffer(t *testing.T) {
	t.Parallel()
	a := &ChatEvent{Space: &Space{Name: "spaces/A"}}
	b := &ChatEvent{EventTime: "spaces/A"}
	if a.DedupKey() == b.DedupKey() {
		t.Errorf("expected distinct keys, both %q", a.DedupKey())
	}
}

// TestActionParameter verifies lookup of present and absent card action
// parameters.
func TestActionParameter(t *testing.T) {
	t.Parallel()
	action := &Action{Parameters: []ActionParameter{
		{Key: "command", Value: "status"},
		{Key: "command_args", Value: ""},
	}}

	if v, ok := action.Parameter("command"); !ok || v != "status" {
		t.Errorf("expected (status,true), got (%q,%v)", v, ok)
	}
	if v, ok := action.Parameter("command_args"); !ok || v != "" {
		t.Errorf("expected empty value to still be found, got (%q,%v)", v, ok)
	}
	if _, ok := action.Parameter("missing"); ok {
		t.Error("expected missing key to report absence")
	}
}

// TestDecodeEvent_UnknownFieldsIgnored verifies extra envelope fields do not
// fail decoding.
func TestDecodeEvent_UnknownFieldsIgnored(t *testing.T) {
	t.Parallel()
	evt, err := decodeEvent([]byte(`{"type":"MESSAGE","configCompleteRedirectUrl":"https://x","token":"abc"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt.Type != EventTypeMessage {
		t.Errorf("unexpected type %q", evt.Type)
	}
}
