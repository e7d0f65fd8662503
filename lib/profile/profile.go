// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile provides parsing and validation for launch profiles.
// A profile bundles a named way of running the player: extra command
// line arguments, properties to observe from startup, and media to
// enqueue. Profiles are authored on disk as JSONC files (JSON extended
// with comments and trailing commas).
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Profile
//  2. Validate: structural checks (name present, no duplicate observes)
//  3. the command merges the profile into its session configuration
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Profile is one named launch configuration.
type Profile struct {
	// Name identifies the profile in logs and flag values.
	Name string `json:"name"`

	// Description is free-form text shown in listings.
	Description string `json:"description,omitempty"`

	// Args are extra player arguments, appended after the config
	// file's args.
	Args []string `json:"args,omitempty"`

	// Observe lists property names to watch from session start.
	Observe []string `json:"observe,omitempty"`

	// Playlist is media to load once the session is ready, in order.
	// The first entry replaces the current playlist; the rest append.
	Playlist []string `json:"playlist,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Profile.
func Parse(data []byte) (*Profile, error) {
	stripped := jsonc.ToJSON(data)

	var p Profile
	if err := json.Unmarshal(stripped, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	return &p, nil
}

// ReadFile reads a JSONC profile file from disk and parses it. When
// the file omits a name, the file's base name without extension is
// used.
func ReadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = nameFromPath(path)
	}

	return p, nil
}

// Validate checks the profile for structural errors.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}
	seen := make(map[string]bool, len(p.Observe))
	for _, name := range p.Observe {
		if name == "" {
			return fmt.Errorf("profile %q observes an empty property name", p.Name)
		}
		if seen[name] {
			return fmt.Errorf("profile %q observes %q twice", p.Name, name)
		}
		seen[name] = true
	}
	for _, arg := range p.Args {
		if strings.HasPrefix(arg, "--input-ipc-server") {
			return fmt.Errorf("profile %q sets --input-ipc-server; the session owns the IPC endpoint", p.Name)
		}
	}
	return nil
}

// nameFromPath extracts a profile name from a file path by stripping
// the directory prefix and file extension.
func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
