package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("New screen should be filled with spaces, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColored(5, 5, 'X', ColorQuestion)
	cell := s.GetCell(5, 5)
	if cell.Rune != 'X' || cell.Color != ColorQuestion {
		t.Errorf("GetCell(5, 5) = %+v, expected red 'X'", cell)
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawTextColored(2, 1, "Hello", ColorText)

	if got := strings.TrimSpace(s.Row(1)); got != "Hello" {
		t.Errorf("Row(1) = %q, expected Hello", got)
	}

	// Text should be clipped at boundaries
	s.DrawTextColored(18, 0, "Hello", ColorText)
	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("Text should be clipped at right boundary")
	}
}

func TestScreenDrawTextCenteredMultibyte(t *testing.T) {
	s := NewScreen(10, 1)
	s.DrawTextCentered(0, "✓✓", ColorSolved)

	// Two runes in ten columns start at column 4
	if s.Get(4, 0) != '✓' || s.Get(5, 0) != '✓' {
		t.Errorf("centered text misplaced: %q", s.Row(0))
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(10, 5)
	s.DrawBox(NewRect(0, 0, 10, 5), ColorDefault)

	if s.Get(0, 0) != '┌' || s.Get(9, 0) != '┐' || s.Get(0, 4) != '└' || s.Get(9, 4) != '┘' {
		t.Error("box corners not drawn")
	}
	if s.Get(5, 0) != '─' || s.Get(0, 2) != '│' {
		t.Error("box edges not drawn")
	}
}

func TestScreenResizeAndString(t *testing.T) {
	s := NewScreen(3, 2)
	s.DrawTextColored(0, 0, "###", ColorWall)
	s.DrawTextColored(0, 1, "###", ColorWall)
	if s.String() != "###\n###" {
		t.Errorf("String() = %q", s.String())
	}

	s.Resize(4, 1)
	if s.Width() != 4 || s.Height() != 1 {
		t.Fatalf("Resize failed: %dx%d", s.Width(), s.Height())
	}
	if s.String() != "    " {
		t.Errorf("Resize should clear content, got %q", s.String())
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FrameInterval().Milliseconds() != 16 {
		t.Errorf("FrameInterval() at 60fps = %v", cfg.FrameInterval())
	}
	cfg.TickRate = 0
	if cfg.FrameInterval() != DefaultConfig().FrameInterval() {
		t.Error("zero tick rate should fall back to 60")
	}
}
