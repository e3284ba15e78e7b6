package conquest

import (
	"fmt"
	"math"

	"github.com/vovakirdan/stubro/internal/core"
)

const (
	tileCols  = 2 // Screen columns per tile
	hudHeight = 4 // Title, goal, status, blank

	noticeWidth = 28
)

// Layout is the screen placement of the grid.
type Layout struct {
	OriginX, OriginY int
	TooSmall         bool
}

// LayoutFor centers the level grid below the HUD.
func LayoutFor(level *Level, screenW, screenH int) Layout {
	if level == nil {
		return Layout{TooSmall: true}
	}
	gridW := level.Cols() * tileCols
	gridH := level.Rows()
	l := Layout{
		OriginX: (screenW - gridW) / 2,
		OriginY: hudHeight,
	}
	l.TooSmall = gridW > screenW || hudHeight+gridH+1 > screenH
	return l
}

// Render draws the HUD and the level grid with the player into dst.
// Modal prompts are left to the platform layer.
func Render(snap Snapshot, cfg EngineConfig, dst *core.Screen) {
	dst.Clear()
	if snap.Level == nil {
		return
	}
	cfg = cfg.withDefaults()

	layout := LayoutFor(snap.Level, dst.Width(), dst.Height())
	if layout.TooSmall {
		renderTooSmall(dst)
		return
	}

	renderHUD(snap, dst)
	renderGrid(snap, layout, dst)
	renderPlayer(snap, cfg, layout, dst)
}

// renderTooSmall frames a resize notice, shrunk to fit tiny screens.
func renderTooSmall(dst *core.Screen) {
	w := core.Clamp(noticeWidth, 0, dst.Width())
	h := core.Clamp(4, 0, dst.Height())
	y := (dst.Height() - h) / 2

	dst.DrawBox(core.NewRect((dst.Width()-w)/2, y, w, h), core.ColorMuted)
	dst.DrawTextCentered(y+1, "Window too small", core.ColorWarning)
	dst.DrawTextCentered(y+2, "Please resize terminal", core.ColorMuted)
}

func renderHUD(snap Snapshot, dst *core.Screen) {
	dst.DrawTextCentered(0, snap.Level.Title, core.ColorTitle)
	dst.DrawTextCentered(1, "Goal: "+snap.Level.Goal, core.ColorMuted)

	status := fmt.Sprintf("Score: %d   Solved: %d/%d", snap.Score, snap.SolvedCount(), len(snap.Level.Interactions))
	dst.DrawTextCentered(2, status, core.ColorText)
}

func renderGrid(snap Snapshot, layout Layout, dst *core.Screen) {
	level := snap.Level
	for y, row := range level.Grid {
		for x, t := range row {
			glyph, color := tileGlyph(t)
			for _, it := range level.InteractionAt(core.P(x, y)) {
				if snap.IsSolved(it.ID) {
					glyph, color = "<>", core.ColorSolved
				} else {
					glyph, color = "??", core.ColorQuestion
					break
				}
			}
			dst.DrawTextColored(layout.OriginX+x*tileCols, layout.OriginY+y, glyph, color)
		}
	}
}

func tileGlyph(t Tile) (string, core.Color) {
	switch t {
	case TileWall:
		return "██", core.ColorWall
	case TileExit:
		return "[]", core.ColorExit
	case TileInteraction:
		return "::", core.ColorFloor
	default:
		return "· ", core.ColorFloor
	}
}

// renderPlayer places the player with half-tile horizontal resolution.
func renderPlayer(snap Snapshot, cfg EngineConfig, layout Layout, dst *core.Screen) {
	half := cfg.TileSize / tileCols
	col := int(math.Floor(snap.Position.X/half + 0.5))
	row := int(math.Floor(snap.Position.Y/cfg.TileSize + 0.5))

	color := core.ColorPlayer
	if snap.Phase == PhaseCompleted {
		color = core.ColorExit
	}
	dst.DrawTextColored(layout.OriginX+col, layout.OriginY+row, "@@", color)
}
