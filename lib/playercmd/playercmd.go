// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package playercmd

import (
	"fmt"
	"strings"
)

// Kind is the wire name of a player command.
type Kind string

// The command kinds the session knows how to issue. This is mpv's
// input command vocabulary restricted to what the runtime and its
// tools use; extend the set here rather than smuggling strings
// through Raw.
const (
	KindGetProperty       Kind = "get_property"
	KindSetProperty       Kind = "set_property"
	KindObserveProperty   Kind = "observe_property"
	KindUnobserveProperty Kind = "unobserve_property"
	KindLoadFile          Kind = "loadfile"
	KindSeek              Kind = "seek"
	KindCycle             Kind = "cycle"
	KindStop              Kind = "stop"
	KindPlaylistNext      Kind = "playlist-next"
	KindPlaylistPrevious  Kind = "playlist-prev"
	KindQuit              Kind = "quit"
)

// knownKinds is the boundary check for Raw.
var knownKinds = map[Kind]bool{
	KindGetProperty:       true,
	KindSetProperty:       true,
	KindObserveProperty:   true,
	KindUnobserveProperty: true,
	KindLoadFile:          true,
	KindSeek:              true,
	KindCycle:             true,
	KindStop:              true,
	KindPlaylistNext:      true,
	KindPlaylistPrevious:  true,
	KindQuit:              true,
}

// LoadMode selects how loadfile treats the current playlist.
type LoadMode string

const (
	// LoadReplace stops playback and starts the new file immediately.
	LoadReplace LoadMode = "replace"
	// LoadAppend adds the file to the end of the playlist.
	LoadAppend LoadMode = "append"
	// LoadAppendPlay appends and starts playback if nothing is playing.
	LoadAppendPlay LoadMode = "append-play"
)

// ParseLoadMode converts a user-supplied mode string. Empty input
// means LoadReplace.
func ParseLoadMode(s string) (LoadMode, error) {
	switch LoadMode(s) {
	case "":
		return LoadReplace, nil
	case LoadReplace, LoadAppend, LoadAppendPlay:
		return LoadMode(s), nil
	}
	return "", fmt.Errorf("unknown load mode %q (want replace, append, or append-play)", s)
}

// SeekMode selects how a seek target is interpreted.
type SeekMode string

const (
	// SeekRelative moves by an offset in seconds from the current position.
	SeekRelative SeekMode = "relative"
	// SeekAbsolute moves to an absolute position in seconds.
	SeekAbsolute SeekMode = "absolute"
	// SeekAbsolutePercent moves to a percentage of the file duration.
	SeekAbsolutePercent SeekMode = "absolute-percent"
)

// Command is one fully-built player command: a kind plus its
// positional arguments in wire order. The zero value is invalid;
// build commands through the constructors or Raw.
type Command struct {
	kind Kind
	args []any
}

// Kind returns the command's wire name.
func (c Command) Kind() Kind { return c.kind }

// Args returns the wire argument list: the command name followed by
// its arguments. The returned slice is a copy.
func (c Command) Args() []any {
	args := make([]any, 0, len(c.args)+1)
	args = append(args, string(c.kind))
	args = append(args, c.args...)
	return args
}

// String renders the command for diagnostics (error messages, logs).
func (c Command) String() string {
	parts := make([]string, 0, len(c.args)+1)
	parts = append(parts, string(c.kind))
	for _, argument := range c.args {
		parts = append(parts, fmt.Sprintf("%v", argument))
	}
	return strings.Join(parts, " ")
}

// GetProperty reads the current value of a property.
func GetProperty(name string) Command {
	return Command{kind: KindGetProperty, args: []any{name}}
}

// SetProperty writes a property value.
func SetProperty(name string, value any) Command {
	return Command{kind: KindSetProperty, args: []any{name, value}}
}

// ObserveProperty registers interest in changes to a property under
// the given subscription id. The player echoes the id on every
// property-change event for the property.
func ObserveProperty(id int64, name string) Command {
	return Command{kind: KindObserveProperty, args: []any{id, name}}
}

// UnobserveProperty cancels the subscription with the given id.
func UnobserveProperty(id int64) Command {
	return Command{kind: KindUnobserveProperty, args: []any{id}}
}

// LoadFile loads a media path or URL.
func LoadFile(target string, mode LoadMode) Command {
	return Command{kind: KindLoadFile, args: []any{target, string(mode)}}
}

// Seek moves the playback position.
func Seek(target float64, mode SeekMode) Command {
	return Command{kind: KindSeek, args: []any{target, string(mode)}}
}

// Cycle toggles a property through its value cycle (e.g. "pause").
func Cycle(property string) Command {
	return Command{kind: KindCycle, args: []any{property}}
}

// Stop stops playback and clears the playlist.
func Stop() Command {
	return Command{kind: KindStop}
}

// PlaylistNext advances to the next playlist entry.
func PlaylistNext() Command {
	return Command{kind: KindPlaylistNext}
}

// PlaylistPrevious returns to the previous playlist entry.
func PlaylistPrevious() Command {
	return Command{kind: KindPlaylistPrevious}
}

// Quit asks the player process to exit cleanly.
func Quit() Command {
	return Command{kind: KindQuit}
}

// Raw builds a command from an arbitrary name and argument list.
// Unknown kinds are rejected here so typos fail at the boundary
// instead of as opaque player errors.
func Raw(name string, args ...any) (Command, error) {
	kind := Kind(name)
	if !knownKinds[kind] {
		return Command{}, fmt.Errorf("unknown command kind %q", name)
	}
	return Command{kind: kind, args: args}, nil
}
