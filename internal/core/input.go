package core

// Key is a logical input key, abstracted from physical key presses.
// Several physical bindings (WASD, arrows) map onto the same Key.
type Key int

const (
	KeyNone     Key = iota
	KeyUp           // W, Up arrow
	KeyDown         // S, Down arrow
	KeyLeft         // A, Left arrow
	KeyRight        // D, Right arrow
	KeyInteract     // E
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyInteract:
		return "interact"
	default:
		return "unknown"
	}
}

// Keys lists every recognized logical key.
func Keys() []Key {
	return []Key{KeyUp, KeyDown, KeyLeft, KeyRight, KeyInteract}
}

// InputState is the live "held" status of every logical key.
// Key events set and clear flags; the simulation reads them once per tick.
type InputState struct {
	held map[Key]bool
}

// NewInputState creates an input state with nothing held.
func NewInputState() InputState {
	return InputState{held: make(map[Key]bool)}
}

// Press marks a key as held. KeyNone is ignored.
func (s *InputState) Press(k Key) {
	if k == KeyNone {
		return
	}
	if s.held == nil {
		s.held = make(map[Key]bool)
	}
	s.held[k] = true
}

// Release marks a key as no longer held.
func (s *InputState) Release(k Key) {
	if s.held == nil {
		return
	}
	s.held[k] = false
}

// Held reports whether a key is currently held.
func (s InputState) Held(k Key) bool {
	if s.held == nil {
		return false
	}
	return s.held[k]
}

// Consume reports whether a key is held and clears it, so that a single
// press is observed at most once.
func (s *InputState) Consume(k Key) bool {
	if !s.Held(k) {
		return false
	}
	s.held[k] = false
	return true
}

// ReleaseAll clears every held key.
func (s *InputState) ReleaseAll() {
	for k := range s.held {
		delete(s.held, k)
	}
}
