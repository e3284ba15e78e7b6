// Package tui provides the Bubble Tea integration for Chapter Conquest.
// It handles the terminal UI loop, input mapping and session orchestration.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent once per display refresh. Epoch identifies the clock run
// that scheduled it.
type TickMsg struct {
	Epoch int
	Time  time.Time
}

// FrameClock is a self-rescheduling one-shot timer: every accepted frame
// asks for the next one. Stop invalidates frames already in flight.
type FrameClock struct {
	interval time.Duration
	epoch    int
	running  bool
}

// NewFrameClock creates a stopped clock for the given refresh rate.
func NewFrameClock(fps int) *FrameClock {
	if fps <= 0 {
		fps = 60
	}
	return &FrameClock{interval: time.Second / time.Duration(fps)}
}

// Start begins a new run and schedules its first frame.
func (c *FrameClock) Start() tea.Cmd {
	c.epoch++
	c.running = true
	return c.next()
}

// Stop ends the current run. Frames scheduled before Stop are rejected by
// Accept and never reschedule.
func (c *FrameClock) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.epoch++
}

// Running reports whether the clock has an active run.
func (c *FrameClock) Running() bool {
	return c.running
}

// Accept reports whether msg belongs to the active run.
func (c *FrameClock) Accept(msg TickMsg) bool {
	return c.running && msg.Epoch == c.epoch
}

// Next schedules the following frame of the active run.
func (c *FrameClock) Next() tea.Cmd {
	if !c.running {
		return nil
	}
	return c.next()
}

func (c *FrameClock) next() tea.Cmd {
	epoch := c.epoch
	return tea.Tick(c.interval, func(t time.Time) tea.Msg {
		return TickMsg{Epoch: epoch, Time: t}
	})
}
