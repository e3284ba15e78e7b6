package core

// Color is the role of a screen cell. The platform layer decides how each
// role is drawn, so levels render the same on any terminal theme.
type Color uint8

// Cell roles used by the level renderer.
const (
	ColorDefault Color = iota
	ColorText
	ColorTitle
	ColorMuted
	ColorWarning
	ColorWall
	ColorFloor
	ColorExit
	ColorQuestion
	ColorSolved
	ColorPlayer
)
