package conquest

import (
	"strings"
	"testing"

	"github.com/vovakirdan/stubro/internal/core"
)

func TestRenderDrawsGridAndPlayer(t *testing.T) {
	e := startEngine(t, ringLevel(t, core.P(4, 4), capital(1, core.P(2, 2))))
	screen := core.NewScreen(30, 12)

	Render(e.Snapshot(), e.Config(), screen)

	layout := LayoutFor(e.Snapshot().Level, 30, 12)
	if layout.TooSmall {
		t.Fatal("Layout should fit")
	}

	if !strings.Contains(screen.Row(0), "Test Chapter") {
		t.Errorf("Title missing: %q", screen.Row(0))
	}
	if !strings.Contains(screen.Row(2), "Score: 0") {
		t.Errorf("Score missing: %q", screen.Row(2))
	}

	// Player at tile (1,1) occupies columns 2-3 of the grid.
	x, y := layout.OriginX+2, layout.OriginY+1
	if screen.Get(x, y) != '@' || screen.Get(x+1, y) != '@' {
		t.Errorf("Player not drawn at (%d,%d): %q", x, y, screen.Row(y))
	}
	if screen.Get(layout.OriginX+8, layout.OriginY+4) != '[' {
		t.Errorf("Exit not drawn: %q", screen.Row(layout.OriginY+4))
	}
	if screen.Get(layout.OriginX+4, layout.OriginY+2) != '?' {
		t.Errorf("Interaction not drawn: %q", screen.Row(layout.OriginY+2))
	}
}

func TestRenderTooSmall(t *testing.T) {
	e := startEngine(t, ringLevel(t, core.P(4, 4)))
	screen := core.NewScreen(20, 4)

	Render(e.Snapshot(), e.Config(), screen)
	if !strings.Contains(screen.String(), "small") {
		t.Errorf("Expected too-small notice, got %q", screen.String())
	}
}

func TestRenderTooSmallFramesNotice(t *testing.T) {
	e := startEngine(t, ringLevel(t, core.P(4, 4)))
	screen := core.NewScreen(40, 8)

	// A 5-row grid needs more than 8 rows below the HUD.
	Render(e.Snapshot(), e.Config(), screen)

	if screen.Get(6, 2) != '┌' || screen.Get(33, 5) != '┘' {
		t.Errorf("Notice box misplaced:\n%s", screen.String())
	}
	if !strings.Contains(screen.Row(3), "Window too small") {
		t.Errorf("Notice text missing: %q", screen.Row(3))
	}
}
