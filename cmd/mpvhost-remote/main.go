// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// mpvhost-remote is an interactive terminal remote control for a
// supervised mpv session. It spawns the player, loads the media named
// on the command line, and presents playback state with single-key
// transport controls.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/strand-media/mpvhost/lib/config"
	"github.com/strand-media/mpvhost/lib/playercmd"
	"github.com/strand-media/mpvhost/lib/process"
	"github.com/strand-media/mpvhost/lib/remoteui"
	"github.com/strand-media/mpvhost/lib/version"
	"github.com/strand-media/mpvhost/player"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string

	flagSet := pflag.NewFlagSet("mpvhost-remote", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the mpvhost YAML config file (default: $MPVHOST_CONFIG)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("mpvhost-remote")
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

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; mpvhost-remote is interactive (use mpvhost for scripted runs)")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// Stderr is owned by the TUI's terminal; send logs nowhere unless
	// the operator asked for a debug level.
	logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := cfg.Logger(logFile)

	session := player.New(player.Config{
		Binary:         cfg.Player.Binary,
		Args:           cfg.Player.Args,
		SocketDir:      cfg.Player.SocketDir,
		ConnectTimeout: cfg.Player.ConnectTimeout,
		Logger:         logger,
	})

	ctx := context.Background()
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	for i, target := range flagSet.Args() {
		mode := playercmd.LoadAppendPlay
		if i == 0 {
			mode = playercmd.LoadReplace
		}
		if _, err := session.Command(ctx, playercmd.LoadFile(target, mode)); err != nil {
			return fmt.Errorf("loading %s: %w", target, err)
		}
	}

	model := remoteui.New(session)
	defer model.Release()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `mpvhost-remote — interactive terminal remote for a supervised mpv session.

Usage:
  mpvhost-remote [flags] [media...]

Flags:
%s
Keys:
  space  pause/resume        ←/→  seek ±5s
  ↑/↓    volume ±5           m    mute
  n/b    next/previous       s    stop
  q      quit
`, flagSet.FlagUsages())
}
