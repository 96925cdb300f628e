// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"encoding/json"
)

// Event kinds delivered by the Google Chat events feed. The set is closed by
// the upstream protocol; anything else is either a legacy message shape or
// gets dropped.
const (
	EventTypeMessage     = "MESSAGE"
	EventTypeCardClicked = "CARD_CLICKED"
)

// Space threading states reported on the event envelope.
const (
	ThreadingStateThreaded = "THREADED_MESSAGES"
)

// Space types.
const (
	SpaceTypeRoom = "ROOM"
	SpaceTypeDM   = "DM"
)

// ChatEvent is the decoded envelope of a single event delivered over the
// subscription feed. Fields are pointers where the upstream payload may omit
// whole sub-objects; absence downgrades to "ignore", never to a crash.
type ChatEvent struct {
	Type      string   `json:"type"`
	EventTime string   `json:"eventTime"`
	Space     *Space   `json:"space"`
	Message   *Message `json:"message"`
	Action    *Action  `json:"action"`
}

// Space is a chat destination, either a room or a direct-message space.
type Space struct {
	Name                string `json:"name"`
	DisplayName         string `json:"displayName"`
	Type                string `json:"type"`
	SpaceThreadingState string `json:"spaceThreadingState"`
}

// Message is both the inbound message sub-object of a ChatEvent and the body
// returned by the messages endpoint after a post.
type Message struct {
	Name           string        `json:"name,omitempty"`
	Sender         *User         `json:"sender,omitempty"`
	Text           string        `json:"text,omitempty"`
	Thread         *Thread       `json:"thread,omitempty"`
	LastUpdateTime string        `json:"lastUpdateTime,omitempty"`
	Attachment     []*Attachment `json:"attachment,omitempty"`
	ArgumentText   string        `json:"argumentText,omitempty"`
	SlashCommand   *SlashCommand `json:"slashCommand,omitempty"`
	Space          *Space        `json:"space,omitempty"`
}

// Thread identifies a message thread within a space.
type Thread struct {
	Name string `json:"name"`
}

// SlashCommand carries the numeric id of an invoked slash command.
type SlashCommand struct {
	CommandID string `json:"commandId"`
}

// Attachment describes a file attached to an inbound message.
type Attachment struct {
	Name        string `json:"name"`
	ContentName string `json:"contentName"`
	ContentType string `json:"contentType"`
	DownloadURI string `json:"downloadUri"`
}

// Action is the card-click sub-object of a CARD_CLICKED event.
type Action struct {
	ActionMethodName string            `json:"actionMethodName"`
	Parameters       []ActionParameter `json:"parameters"`
}

// ActionParameter is a single key/value pair attached to a card action.
type ActionParameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Parameter returns the value of the named action parameter and whether it
// was present.
func (a *Action) Parameter(key string) (string, bool) {
	for _, p := range a.Parameters {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Sentinel components substituted into the dedup fingerprint when the
// corresponding envelope field is missing. They must never be empty strings:
// an empty component would make unrelated partial envelopes collide.
const (
	noEventTime  = "no-event-time"
	noEventType  = "no-event-type"
	noSpaceName  = "no-space-name"
	noUpdateTime = "no-update-time"
)

// DedupKey computes the fingerprint used to collapse duplicate deliveries of
// the same logical event. The feed provides no reliable unique id, so the key
// is composed from event metadata only; two genuine events sharing all four
// components are collapsed as well, which is an accepted imprecision.
func (e *ChatEvent) DedupKey() string {
	eventTime := e.EventTime
	if eventTime == "" {
		eventTime = noEventTime
	}
	eventType := e.Type
	if eventType == "" {
		eventType = noEventType
	}
	spaceName := noSpaceName
	if e.Space != nil && e.Space.Name != "" {
		spaceName = e.Space.Name
	}
	updateTime := noUpdateTime
	if e.Message != nil && e.Message.LastUpdateTime != "" {
		updateTime = e.Message.LastUpdateTime
	}
	return eventTime + "|" + eventType + "|" + spaceName + "|" + updateTime
}

// decodeEvent parses raw event bytes into a ChatEvent.
func decodeEvent(data []byte) (*ChatEvent, error) {
	var evt ChatEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
