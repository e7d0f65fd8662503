// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// mpvhost-bridge runs a supervised mpv session and exposes it to
// websocket clients: any number of remotes can observe properties and
// issue commands against the one player. See the bridge package for
// the client protocol.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/strand-media/mpvhost/bridge"
	"github.com/strand-media/mpvhost/lib/config"
	"github.com/strand-media/mpvhost/lib/process"
	"github.com/strand-media/mpvhost/lib/version"
	"github.com/strand-media/mpvhost/player"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath string
		listenAddr string
	)

	flagSet := pflag.NewFlagSet("mpvhost-bridge", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the mpvhost YAML config file (default: $MPVHOST_CONFIG)")
	flagSet.StringVar(&listenAddr, "listen", "", "TCP listen address (default: config bridge.listen)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("mpvhost-bridge")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr == "" {
		listenAddr = cfg.Bridge.Listen
	}
	logger := cfg.Logger(os.Stderr)

	session := player.New(player.Config{
		Binary:         cfg.Player.Binary,
		Args:           cfg.Player.Args,
		SocketDir:      cfg.Player.SocketDir,
		ConnectTimeout: cfg.Player.ConnectTimeout,
		Logger:         logger,
		OnRestart: func(restarts int) {
			logger.Warn("player restarted", "restarts", restarts)
		},
		OnError: func(err error) {
			logger.Error("session error", "error", err)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	b := &bridge.Bridge{
		ListenAddr: listenAddr,
		Session:    session,
		Logger:     logger,
	}
	if err := b.Start(ctx); err != nil {
		return err
	}
	defer b.Stop()

	<-ctx.Done()
	logger.Info("signal received, shutting down")
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `mpvhost-bridge — websocket access to a supervised mpv session.

Runs one supervised player and serves it to websocket clients on /ws.
Clients observe properties and issue commands as JSON frames; player
events are broadcast to every connected client.

Usage:
  mpvhost-bridge [flags]

Flags:
%s`, flagSet.FlagUsages())
}
