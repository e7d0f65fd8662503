// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for mpvhost commands.
//
// Configuration is loaded in three layers, later layers winning:
//
//  1. built-in defaults,
//  2. a YAML file named by MPVHOST_CONFIG or the --config flag,
//  3. MPVHOST_* environment variables.
//
// The file is optional; a command with no config file and no overrides
// runs entirely on defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that points to the config file.
const EnvVar = "MPVHOST_CONFIG"

// Config is the master configuration for mpvhost commands.
type Config struct {
	// Player configures the supervised mpv subprocess.
	Player PlayerConfig `yaml:"player"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Transcript configures wire-traffic recording.
	Transcript TranscriptConfig `yaml:"transcript"`

	// Bridge configures the websocket bridge listener.
	Bridge BridgeConfig `yaml:"bridge"`
}

// PlayerConfig configures the supervised subprocess and its IPC socket.
type PlayerConfig struct {
	// Binary is the player executable, resolved through PATH when not
	// absolute.
	Binary string `yaml:"binary" env:"MPVHOST_PLAYER_BINARY"`

	// Args are extra arguments passed to every spawn, before the
	// session's own defaults.
	Args []string `yaml:"args" env:"MPVHOST_PLAYER_ARGS" envSeparator:" "`

	// SocketDir is where IPC socket files are created. Empty means the
	// runtime directory (XDG_RUNTIME_DIR, falling back to the system
	// temp dir).
	SocketDir string `yaml:"socket_dir" env:"MPVHOST_PLAYER_SOCKET_DIR"`

	// ConnectTimeout bounds how long a spawn waits for the IPC socket.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MPVHOST_PLAYER_CONNECT_TIMEOUT"`
}

// LogConfig configures the slog handler shared by all commands.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"MPVHOST_LOG_LEVEL"`

	// Format is "text" or "json".
	Format string `yaml:"format" env:"MPVHOST_LOG_FORMAT"`
}

// TranscriptConfig configures wire-traffic recording.
type TranscriptConfig struct {
	// Dir is where transcript files are written. Empty disables
	// recording unless a command flag names a file explicitly.
	Dir string `yaml:"dir" env:"MPVHOST_TRANSCRIPT_DIR"`
}

// BridgeConfig configures the websocket bridge.
type BridgeConfig struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" env:"MPVHOST_BRIDGE_LISTEN"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			Binary:         "mpv",
			ConnectTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Bridge: BridgeConfig{
			Listen: "127.0.0.1:6600",
		},
	}
}

// Load builds the effective configuration: defaults, then the file at
// path (or at $MPVHOST_CONFIG when path is empty; no file at all is
// fine), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Player.Binary == "" {
		return fmt.Errorf("player.binary is required")
	}
	if c.Player.ConnectTimeout <= 0 {
		return fmt.Errorf("player.connect_timeout must be positive, got %v", c.Player.ConnectTimeout)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// LogLevel converts the configured level name to a slog.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
}

// Logger builds a slog.Logger per the Log section, writing to w.
func (c *Config) Logger(w *os.File) *slog.Logger {
	level, err := c.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, options))
	}
	return slog.New(slog.NewTextHandler(w, options))
}
