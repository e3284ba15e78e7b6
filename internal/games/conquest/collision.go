package conquest

import "github.com/vovakirdan/stubro/internal/core"

// moveResult is the outcome of testing a candidate position.
type moveResult struct {
	Rejected bool // some corner is outside the grid or on a wall
	Exit     bool // some corner is on an exit tile
}

// corners returns the four corners of the player's collision square at pos.
func (e *Engine) corners(pos core.Vec) [4]core.Vec {
	size := e.cfg.TileSize * e.cfg.PlayerSizeRatio
	margin := (e.cfg.TileSize - size) / 2

	x0, x1 := pos.X+margin, pos.X+size-margin
	y0, y1 := pos.Y+margin, pos.Y+size-margin

	return [4]core.Vec{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x0, Y: y1},
		{X: x1, Y: y1},
	}
}

// resolveMove tests every corner of the candidate position. A single blocked
// corner rejects the whole move; exit detection looks at all corners
// regardless of rejection.
func (e *Engine) resolveMove(candidate core.Vec) moveResult {
	var res moveResult
	for _, c := range e.corners(candidate) {
		tile, inside := e.level.TileAt(c.FloorCell(e.cfg.TileSize))
		if !inside || tile == TileWall {
			res.Rejected = true
			continue
		}
		if tile == TileExit {
			res.Exit = true
		}
	}
	return res
}

// neighborOffsets is the interaction search order: the player's own cell,
// then up, down, left and right.
var neighborOffsets = [5]core.Point{
	{X: 0, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// findInteraction returns the first unsolved interaction at the player's
// rounded cell or one of its orthogonal neighbors.
func (e *Engine) findInteraction() (Interaction, bool) {
	cell := e.pos.RoundCell(e.cfg.TileSize)
	for _, off := range neighborOffsets {
		for _, it := range e.level.InteractionAt(cell.Add(off.X, off.Y)) {
			if !e.completed[it.ID] {
				return it, true
			}
		}
	}
	return Interaction{}, false
}
