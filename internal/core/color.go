package core

// Color is the foreground color of a screen cell. Renderers map it to
// whatever their output supports.
type Color uint8

// Colors used by the gallery view.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightWhite
	ColorOrange
	ColorGray
)
