// Copyright 2025-2026 Meridian HQ

// Package metrics instruments the bridge pipeline with Prometheus counters
// and serves them over HTTP.
package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesSent counts outbound sends by result status
	// (sent, failed, skipped).
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gchat_bridge_message_sent_total",
			Help: "The number of sent messages by result status",
		},
		[]string{"status"},
	)

	// EventsReceived counts inbound events by pipeline outcome
	// (handled, duplicate, dropped, unclassified, decode_error).
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gchat_bridge_events_received_total",
			Help: "The number of received subscription events by outcome",
		},
		[]string{"status"},
	)
)

// NormalizeBotName turns a bot at-name into a label-safe value, e.g.
// "@Release-Bot " becomes "release-bot".
func NormalizeBotName(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, "@", "")))
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
