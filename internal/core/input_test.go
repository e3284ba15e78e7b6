package core

import "testing"

func TestInputStatePressRelease(t *testing.T) {
	var s InputState // zero value must be usable

	if s.Held(KeyUp) {
		t.Fatal("zero InputState should hold nothing")
	}

	s.Press(KeyUp)
	s.Press(KeyRight)
	if !s.Held(KeyUp) || !s.Held(KeyRight) {
		t.Error("pressed keys should be held")
	}

	s.Release(KeyUp)
	if s.Held(KeyUp) {
		t.Error("released key should not be held")
	}
	if !s.Held(KeyRight) {
		t.Error("other keys should stay held")
	}

	s.ReleaseAll()
	if s.Held(KeyRight) {
		t.Error("ReleaseAll should clear every key")
	}
}

func TestInputStateConsume(t *testing.T) {
	s := NewInputState()
	s.Press(KeyInteract)

	if !s.Consume(KeyInteract) {
		t.Fatal("first Consume should observe the press")
	}
	if s.Consume(KeyInteract) {
		t.Error("second Consume should not observe the same press")
	}
}

func TestInputStateIgnoresNone(t *testing.T) {
	s := NewInputState()
	s.Press(KeyNone)
	if s.Held(KeyNone) {
		t.Error("KeyNone must never be held")
	}
}

func TestKeyString(t *testing.T) {
	for _, k := range Keys() {
		if k.String() == "unknown" || k.String() == "none" {
			t.Errorf("key %d has no name", k)
		}
	}
}
