// Copyright 2025-2026 Meridian HQ
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gchat bridges a Google Chat events feed to a message-handling
// callback and posts replies back through the Chat REST API.
//
// Inbound, the pipeline is: the [Driver] receives raw events from an
// [EventSource] (Pub/Sub in production), and the [Bridge] decodes each
// envelope, acknowledges it, collapses at-least-once redeliveries through a
// bounded LRU [DedupCache], classifies the event kind, and normalizes it into
// a [NormalizedMessage] for the handler callback. The feed carries no
// reliable unique event id, so deduplication keys on a metadata fingerprint;
// see [ChatEvent.DedupKey].
//
// Outbound, [Bridge.Send] converts the body to provider markup, splits it
// into provider-sized chunks on line boundaries, and posts each chunk with
// its mention annotations and thread linkage through the [Client].
// [Bridge.SendCard] posts structured cards. Messages without a routable space
// are logged locally instead of sent, so handlers may reply unconditionally.
//
// Room management is a fixed failure: the upstream API has no such surface,
// and every room operation returns [ErrRoomManagementUnsupported].
//
// The gchatfmt sub-package converts Markdown to Google Chat notation.
package gchat
