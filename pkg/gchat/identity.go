// Copyright 2025-2026 Meridian HQ

package gchat

import "strings"

// User kinds as reported by the provider.
const (
	UserKindHuman = "HUMAN"
	UserKindBot   = "BOT"
)

// User identifies a chat participant. It is a plain value: constructed fresh
// per event or request, never shared mutable state.
type User struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Kind        string `json:"type,omitempty"`
}

// IsBot reports whether the user is a provider bot account.
func (u User) IsBot() bool {
	return u.Kind == UserKindBot
}

// Membership is one entry of a space's member listing.
type Membership struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Role   string `json:"role,omitempty"`
	Member User   `json:"member"`
}

// BotUser builds the bridge's own identity from the configured at-name
// prefix, e.g. "@release-bot" becomes display name "release-bot".
func BotUser(atName string) User {
	return User{
		DisplayName: strings.TrimPrefix(atName, "@"),
		Kind:        UserKindBot,
	}
}

// senderOrDefault extracts the sender identity from an inbound message,
// substituting empty strings for any missing sub-fields.
func senderOrDefault(msg *Message) User {
	if msg == nil || msg.Sender == nil {
		return User{}
	}
	return *msg.Sender
}
