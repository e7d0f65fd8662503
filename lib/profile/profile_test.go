// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseJSONCWithCommentsAndTrailingCommas(t *testing.T) {
	data := []byte(`{
		// Music listening setup.
		"name": "music",
		"args": [
			"--vo=null",
			"--volume=60", // trailing comma below is deliberate
		],
		"observe": ["volume", "media-title"],
	}`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Name != "music" {
		t.Errorf("Name = %q, want music", p.Name)
	}
	if len(p.Args) != 2 || p.Args[1] != "--volume=60" {
		t.Errorf("Args = %v", p.Args)
	}
	if len(p.Observe) != 2 {
		t.Errorf("Observe = %v", p.Observe)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"name": `)); err == nil {
		t.Fatal("Parse succeeded on truncated input")
	}
}

func TestReadFileDefaultsNameFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late-night.jsonc")
	if err := os.WriteFile(path, []byte(`{"observe": ["pause"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if p.Name != "late-night" {
		t.Errorf("Name = %q, want late-night", p.Name)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		profile Profile
		want    string
	}{
		{"no name", Profile{}, "no name"},
		{"duplicate observe", Profile{Name: "p", Observe: []string{"volume", "volume"}}, "twice"},
		{"empty observe", Profile{Name: "p", Observe: []string{""}}, "empty property"},
		{"ipc override", Profile{Name: "p", Args: []string{"--input-ipc-server=/x.sock"}}, "input-ipc-server"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.profile.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate = %v, want mention of %q", err, tc.want)
			}
		})
	}
}
