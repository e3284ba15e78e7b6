package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/stubro/internal/config"
	"github.com/vovakirdan/stubro/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game keys.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a game key. Keys the game does not
// use return core.KeyNone and fall through to global bindings.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Key {
	switch msg.String() {
	case "w", "W", "up":
		return core.KeyUp
	case "s", "S", "down":
		return core.KeyDown
	case "a", "A", "left":
		return core.KeyLeft
	case "d", "D", "right":
		return core.KeyRight
	case "e", "E":
		return core.KeyInteract
	}
	return core.KeyNone
}

// GlobalAction is a key binding handled outside the game.
type GlobalAction int

const (
	GlobalNone GlobalAction = iota
	GlobalQuit
	GlobalBack
	GlobalRestart
	GlobalScreenshot
	GlobalConfirm
)

// MapGlobal translates a key to a global action.
func (km *KeyMapper) MapGlobal(msg tea.KeyMsg) GlobalAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return GlobalQuit
	case "b", "esc":
		return GlobalBack
	case "r":
		return GlobalRestart
	case "ctrl+s":
		return GlobalScreenshot
	case "enter", " ":
		return GlobalConfirm
	}
	return GlobalNone
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionScoreboard
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	}
	return MenuActionNone
}

// HoldTracker emulates key releases. Terminals only report presses and
// auto-repeats, so a direction counts as held until no repeat arrived
// within the hold window.
type HoldTracker struct {
	window time.Duration
	last   map[core.Key]time.Time
}

// NewHoldTracker creates a tracker with the given hold window.
func NewHoldTracker(window time.Duration) *HoldTracker {
	if window <= 0 {
		window = config.DefaultHoldWindowMS * time.Millisecond
	}
	return &HoldTracker{window: window, last: make(map[core.Key]time.Time)}
}

var opposite = map[core.Key]core.Key{
	core.KeyUp:    core.KeyDown,
	core.KeyDown:  core.KeyUp,
	core.KeyLeft:  core.KeyRight,
	core.KeyRight: core.KeyLeft,
}

// Press records a press of k at now. It returns the opposite direction if
// that one was held and must be released.
func (h *HoldTracker) Press(k core.Key, now time.Time) (released core.Key) {
	opp, ok := opposite[k]
	if !ok {
		return core.KeyNone
	}
	h.last[k] = now
	if _, held := h.last[opp]; held {
		delete(h.last, opp)
		return opp
	}
	return core.KeyNone
}

// Expired removes and returns the keys whose hold window ran out.
func (h *HoldTracker) Expired(now time.Time) []core.Key {
	var out []core.Key
	for _, k := range core.Keys() {
		t, ok := h.last[k]
		if ok && now.Sub(t) >= h.window {
			delete(h.last, k)
			out = append(out, k)
		}
	}
	return out
}

// Reset forgets every held key.
func (h *HoldTracker) Reset() {
	clear(h.last)
}
