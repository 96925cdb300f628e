// Copyright 2025-2026 Meridian HQ
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command gchat-bridge connects a Google Chat Pub/Sub events feed to a
// message-handling callback and posts replies back through the Chat REST
// API. This binary wires a logging handler at the callback boundary;
// embedders replace it with their own framework.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mau.fi/util/exzerolog"
	"golang.org/x/sync/errgroup"

	"github.com/meridianhq/gchat-bridge/pkg/gchat"
	"github.com/meridianhq/gchat-bridge/pkg/metrics"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	writeExample := flag.Bool("write-example-config", false, "write the example config to stdout and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("gchat-bridge %s (%s, built %s)\n", Tag, Commit, BuildTime)
		return
	}
	if *writeExample {
		fmt.Print(gchat.ExampleConfig)
		return
	}

	// Missing .env is fine; the config file alone is enough.
	_ = godotenv.Load()

	cfg, err := gchat.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gchat-bridge: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	exzerolog.SetupDefaults(&log)

	log.Info().
		Str("version", Tag).
		Str("bot", metrics.NormalizeBotName(cfg.AtName)).
		Msg("Starting gchat-bridge")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("Bridge exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Bridge stopped")
}

func run(ctx context.Context, cfg *gchat.Config, log zerolog.Logger) error {
	httpClient, err := gchat.AuthenticatedHTTPClient(ctx, cfg.CredentialsFile)
	if err != nil {
		return err
	}

	client := gchat.NewClient(httpClient,
		gchat.WithPageSize(cfg.PageSize),
		gchat.WithClientLogger(log.With().Str("component", "chat_client").Logger()),
	)

	bridge := gchat.NewBridge(cfg, client, logHandler(log),
		gchat.WithLogger(log.With().Str("component", "bridge").Logger()),
	)

	source, err := gchat.NewPubSubSource(ctx, cfg, log.With().Str("component", "pubsub").Logger())
	if err != nil {
		return err
	}

	driver := gchat.NewDriver(source, bridge,
		gchat.WithDriverLogger(log.With().Str("component", "driver").Logger()),
		gchat.WithLifecycleHooks(gchat.LifecycleHooks{
			OnConnect:    func() { log.Info().Msg("Connected to events feed") },
			OnDisconnect: func() { log.Info().Msg("Disconnected from events feed") },
		}),
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return metrics.Serve(ctx, cfg.MetricsAddr)
	})
	group.Go(func() error {
		return driver.Run(ctx)
	})
	return group.Wait()
}

// logHandler is the default message-handling callback: it just records what
// arrived. Embedders plug their command dispatch in here.
func logHandler(log zerolog.Logger) gchat.MessageHandler {
	return func(msg *gchat.NormalizedMessage) {
		log.Info().
			Str("sender", msg.Sender.Name).
			Str("sender_name", msg.Sender.DisplayName).
			Str("body", msg.Body).
			Msg("Message received")
	}
}
