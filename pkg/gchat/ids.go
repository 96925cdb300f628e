// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"fmt"
	"strings"
)

// MakeSpaceName builds a "spaces/{id}" resource name from a bare space id.
// Already-qualified names are returned unchanged.
func MakeSpaceName(spaceID string) string {
	if strings.HasPrefix(spaceID, "spaces/") {
		return spaceID
	}
	return "spaces/" + spaceID
}

// ParseSpaceID extracts the bare space id from a "spaces/{id}" resource name.
func ParseSpaceID(name string) string {
	return strings.TrimPrefix(name, "spaces/")
}

// MakeUserName builds a "users/{id}" resource name from a bare user id.
func MakeUserName(userID string) string {
	if strings.HasPrefix(userID, "users/") {
		return userID
	}
	return "users/" + userID
}

// ParseUserID extracts the bare user id from a "users/{id}" resource name.
func ParseUserID(name string) string {
	return strings.TrimPrefix(name, "users/")
}

// ThreadSpaceName extracts the owning space resource name from a thread
// resource name of the form "spaces/{s}/threads/{t}". It returns "" when the
// name does not have that shape.
func ThreadSpaceName(threadName string) string {
	idx := strings.Index(threadName, "/threads/")
	if !strings.HasPrefix(threadName, "spaces/") || idx < 0 {
		return ""
	}
	return threadName[:idx]
}

// SubscriptionName builds the fully qualified Pub/Sub subscription resource
// name for a project and subscription id.
func SubscriptionName(project, subscription string) string {
	return fmt.Sprintf("projects/%s/subscriptions/%s", project, subscription)
}
