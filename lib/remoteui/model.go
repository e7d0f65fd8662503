// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package remoteui implements the interactive remote control TUI for a
// player session. The model observes the properties it displays (pause
// state, volume, position, duration, title) and issues commands for
// key presses; it holds no playback state of its own beyond the last
// observed values.
package remoteui

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/strand-media/mpvhost/lib/playercmd"
	"github.com/strand-media/mpvhost/player"
)

// Controller is the slice of the player session the TUI drives.
type Controller interface {
	Command(ctx context.Context, command playercmd.Command) (json.RawMessage, error)
	ObserveProperty(name string, callback player.PropertyCallback) (unsubscribe func())
}

// propertyMsg carries one observed property change into the tea loop.
type propertyMsg struct {
	name  string
	value json.RawMessage
}

// errorMsg carries a failed command into the status line.
type errorMsg struct{ err error }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// observedProperties is what the remote displays.
var observedProperties = []string{
	"pause", "mute", "volume", "time-pos", "duration", "media-title",
}

// Model is the remote control tea model.
type Model struct {
	controller Controller
	keys       KeyMap
	cancels    []func()

	// updates carries property changes into the tea loop. released
	// guards it: Release closes the channel, and a callback already in
	// flight on the session's read loop must not send after that.
	updatesMu sync.Mutex
	updates   chan propertyMsg
	released  bool

	bar    progress.Model
	width  int
	status string

	paused  bool
	muted   bool
	volume  float64
	timePos float64
	// duration is zero until the player reports one; streams may
	// never report it.
	duration float64
	title    string
}

// New builds a model driving the given controller and subscribes to
// the properties the view displays. Release must be called when the
// program exits.
func New(controller Controller) *Model {
	m := &Model{
		controller: controller,
		keys:       DefaultKeyMap,
		updates:    make(chan propertyMsg, 64),
		bar:        progress.New(progress.WithDefaultGradient()),
		width:      80,
	}
	for _, name := range observedProperties {
		name := name
		cancel := controller.ObserveProperty(name, func(value json.RawMessage) {
			m.push(propertyMsg{name: name, value: value})
		})
		m.cancels = append(m.cancels, cancel)
	}
	return m
}

// push queues one property change for the tea loop. Changes are
// dropped when the loop is behind (the next change supersedes them)
// or when the model has been released.
func (m *Model) push(msg propertyMsg) {
	m.updatesMu.Lock()
	defer m.updatesMu.Unlock()
	if m.released {
		return
	}
	select {
	case m.updates <- msg:
	default:
	}
}

// Release cancels the model's property subscriptions and closes the
// update channel so the pending listen command returns.
func (m *Model) Release() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil

	m.updatesMu.Lock()
	defer m.updatesMu.Unlock()
	if !m.released {
		m.released = true
		close(m.updates)
	}
}

func (m *Model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next property change, returning nil once the
// model is released.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.updates
		if !ok {
			return nil
		}
		return msg
	}
}

// issue runs a player command off the tea loop, surfacing failures on
// the status line.
func (m *Model) issue(command playercmd.Command) tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := controller.Command(ctx, command); err != nil {
			return errorMsg{err}
		}
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, msg.Width-14)
		return m, nil

	case propertyMsg:
		m.apply(msg)
		return m, m.listen()

	case errorMsg:
		m.status = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.TogglePause):
			return m, m.issue(playercmd.Cycle("pause"))
		case key.Matches(msg, m.keys.Mute):
			return m, m.issue(playercmd.Cycle("mute"))
		case key.Matches(msg, m.keys.SeekBack):
			return m, m.issue(playercmd.Seek(-5, playercmd.SeekRelative))
		case key.Matches(msg, m.keys.SeekForward):
			return m, m.issue(playercmd.Seek(5, playercmd.SeekRelative))
		case key.Matches(msg, m.keys.VolumeUp):
			return m, m.issue(playercmd.SetProperty("volume", min(m.volume+5, 130)))
		case key.Matches(msg, m.keys.VolumeDown):
			return m, m.issue(playercmd.SetProperty("volume", max(m.volume-5, 0)))
		case key.Matches(msg, m.keys.Next):
			return m, m.issue(playercmd.PlaylistNext())
		case key.Matches(msg, m.keys.Previous):
			return m, m.issue(playercmd.PlaylistPrevious())
		case key.Matches(msg, m.keys.Stop):
			return m, m.issue(playercmd.Stop())
		}
	}
	return m, nil
}

// apply folds one property change into the display state. A nil value
// means the property became unavailable; the zero value is shown.
func (m *Model) apply(msg propertyMsg) {
	switch msg.name {
	case "pause":
		m.paused = false
		json.Unmarshal(msg.value, &m.paused)
	case "mute":
		m.muted = false
		json.Unmarshal(msg.value, &m.muted)
	case "volume":
		m.volume = 0
		json.Unmarshal(msg.value, &m.volume)
	case "time-pos":
		m.timePos = 0
		json.Unmarshal(msg.value, &m.timePos)
	case "duration":
		m.duration = 0
		json.Unmarshal(msg.value, &m.duration)
	case "media-title":
		m.title = ""
		json.Unmarshal(msg.value, &m.title)
	}
}

func (m *Model) View() string {
	title := m.title
	if title == "" {
		title = "(nothing playing)"
	}
	title = ansi.Truncate(title, max(10, m.width-2), "…")

	state := "playing"
	if m.paused {
		state = pausedStyle.Render("paused")
	}
	volume := fmt.Sprintf("%3.0f%%", m.volume)
	if m.muted {
		volume = pausedStyle.Render("mute")
	}

	var position string
	if m.duration > 0 {
		position = fmt.Sprintf("%s %s / %s",
			m.bar.ViewAs(m.timePos/m.duration),
			formatTime(m.timePos), formatTime(m.duration))
	} else {
		position = fmt.Sprintf("%s %s", labelStyle.Render("live"), formatTime(m.timePos))
	}

	lines := []string{
		titleStyle.Render(title),
		position,
		fmt.Sprintf("%s  %s %s", state, labelStyle.Render("vol"), volume),
	}
	if m.status != "" {
		lines = append(lines, errorStyle.Render(m.status))
	}
	lines = append(lines, helpStyle.Render(
		"space pause · ←/→ seek · ↑/↓ volume · m mute · n/b playlist · s stop · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// formatTime renders seconds as m:ss or h:mm:ss.
func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
