// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package playercmd

import (
	"reflect"
	"testing"
)

func TestConstructorsBuildWireArguments(t *testing.T) {
	tests := []struct {
		name    string
		command Command
		want    []any
	}{
		{"get_property", GetProperty("volume"), []any{"get_property", "volume"}},
		{"set_property", SetProperty("volume", 50.0), []any{"set_property", "volume", 50.0}},
		{"observe_property", ObserveProperty(3, "time-pos"), []any{"observe_property", int64(3), "time-pos"}},
		{"unobserve_property", UnobserveProperty(3), []any{"unobserve_property", int64(3)}},
		{"loadfile", LoadFile("/tmp/a.mkv", LoadAppendPlay), []any{"loadfile", "/tmp/a.mkv", "append-play"}},
		{"seek", Seek(-5, SeekRelative), []any{"seek", -5.0, "relative"}},
		{"cycle", Cycle("pause"), []any{"cycle", "pause"}},
		{"stop", Stop(), []any{"stop"}},
		{"playlist-next", PlaylistNext(), []any{"playlist-next"}},
		{"quit", Quit(), []any{"quit"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.command.Args(); !reflect.DeepEqual(got, test.want) {
				t.Errorf("Args() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestRawRejectsUnknownKind(t *testing.T) {
	if _, err := Raw("format_disk"); err == nil {
		t.Fatal("Raw accepted an unknown command kind")
	}
	command, err := Raw("cycle", "mute")
	if err != nil {
		t.Fatalf("Raw rejected a known kind: %v", err)
	}
	if command.Kind() != KindCycle {
		t.Errorf("Kind = %q, want %q", command.Kind(), KindCycle)
	}
}

func TestParseLoadMode(t *testing.T) {
	mode, err := ParseLoadMode("")
	if err != nil || mode != LoadReplace {
		t.Errorf("ParseLoadMode(\"\") = %v, %v; want replace", mode, err)
	}
	if _, err := ParseLoadMode("sideways"); err == nil {
		t.Error("ParseLoadMode accepted an unknown mode")
	}
}

func TestStringForDiagnostics(t *testing.T) {
	got := LoadFile("/tmp/a.mkv", LoadReplace).String()
	if got != "loadfile /tmp/a.mkv replace" {
		t.Errorf("String() = %q", got)
	}
}
