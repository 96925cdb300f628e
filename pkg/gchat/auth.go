// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
)

// ChatBotScope is the OAuth scope for posting as a chat bot.
const ChatBotScope = "https://www.googleapis.com/auth/chat.bot"

// AuthenticatedHTTPClient reads the configured service account key file and
// returns an *http.Client that attaches bot credentials to every request.
// This is the credential-provider boundary: the rest of the bridge only ever
// sees the authenticated request executor.
func AuthenticatedHTTPClient(ctx context.Context, credsFile string) (*http.Client, error) {
	data, err := os.ReadFile(credsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, ChatBotScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	return conf.Client(ctx), nil
}
