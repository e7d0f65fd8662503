// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// mpvhost runs a supervised mpv session from the command line: it
// spawns the player, loads the media named on the command line, and
// streams player events and observed property changes to stdout as
// JSON lines until the player goes idle or a signal arrives.
//
// The session survives player crashes: the subprocess is respawned,
// observations are re-registered, and a "restart" record is emitted so
// downstream consumers know the stream has a gap.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/strand-media/mpvhost/lib/clock"
	"github.com/strand-media/mpvhost/lib/config"
	"github.com/strand-media/mpvhost/lib/playercmd"
	"github.com/strand-media/mpvhost/lib/process"
	"github.com/strand-media/mpvhost/lib/profile"
	"github.com/strand-media/mpvhost/lib/transcript"
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
		configPath     string
		profilePath    string
		transcriptPath string
		socketPath     string
		observed       []string
		extraArgs      []string
		exitOnIdle     bool
	)

	flagSet := pflag.NewFlagSet("mpvhost", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the mpvhost YAML config file (default: $MPVHOST_CONFIG)")
	flagSet.StringVar(&profilePath, "profile", "", "path to a JSONC launch profile")
	flagSet.StringVar(&transcriptPath, "transcript", "", "record all wire traffic to this file")
	flagSet.StringVar(&socketPath, "socket", "", "IPC socket path (default: generated under the runtime directory)")
	flagSet.StringSliceVar(&observed, "observe", nil, "property names to observe (repeatable)")
	flagSet.StringArrayVar(&extraArgs, "player-arg", nil, "extra argument for the player process (repeatable)")
	flagSet.BoolVar(&exitOnIdle, "exit-on-idle", false, "exit when the playlist finishes instead of idling")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("mpvhost")
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

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	playerArgs := append([]string(nil), cfg.Player.Args...)
	playerArgs = append(playerArgs, extraArgs...)
	playlist := flagSet.Args()

	if profilePath != "" {
		launch, err := profile.ReadFile(profilePath)
		if err != nil {
			return err
		}
		if err := launch.Validate(); err != nil {
			return err
		}
		playerArgs = append(playerArgs, launch.Args...)
		observed = append(observed, launch.Observe...)
		playlist = append(launch.Playlist, playlist...)
		logger.Debug("profile loaded", "profile", launch.Name)
	}

	var recorder *transcript.Writer
	if transcriptPath != "" {
		recorder, err = transcript.Create(transcriptPath, clock.Real())
		if err != nil {
			return fmt.Errorf("opening transcript: %w", err)
		}
		defer recorder.Close()
	}

	output := newRecordStream(os.Stdout)
	session := player.New(player.Config{
		Binary:         cfg.Player.Binary,
		Args:           playerArgs,
		SocketPath:     socketPath,
		SocketDir:      cfg.Player.SocketDir,
		ConnectTimeout: cfg.Player.ConnectTimeout,
		Logger:         logger,
		Transcript:     recorder,
		OnRestart: func(restarts int) {
			output.write(record{Time: time.Now(), Kind: "restart", Restarts: restarts})
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
	logger.Info("player started", "socket", session.SocketPath())

	for _, name := range observed {
		name := name
		session.ObserveProperty(name, func(value json.RawMessage) {
			output.write(record{Time: time.Now(), Kind: "property", Name: name, Value: value})
		})
	}

	for i, target := range playlist {
		mode := playercmd.LoadAppendPlay
		if i == 0 {
			mode = playercmd.LoadReplace
		}
		if _, err := session.Command(ctx, playercmd.LoadFile(target, mode)); err != nil {
			return fmt.Errorf("loading %s: %w", target, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("signal received, shutting down")
			return nil
		case event := <-session.Events():
			output.write(record{Time: time.Now(), Kind: "event", Name: event.Name, Data: event.Data})
			if exitOnIdle && event.Name == "idle" {
				logger.Info("player idle, exiting")
				return nil
			}
		}
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `mpvhost — supervised mpv session runner.

Spawns mpv with a private IPC socket, loads the media named on the
command line, and prints player events and observed property changes
to stdout as JSON lines. The player is restarted automatically if it
crashes; observations survive the restart.

Usage:
  mpvhost [flags] [media...]

Flags:
%s
Examples:
  mpvhost --observe=time-pos --observe=pause music.flac
  mpvhost --profile=profiles/radio.jsonc
  mpvhost --transcript=/tmp/session.mpvt --exit-on-idle album/*.flac
`, flagSet.FlagUsages())
}
