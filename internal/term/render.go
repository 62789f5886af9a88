package term

// RenderCommand is one resolved draw instruction: a cell position, the
// glyph to draw, and fully resolved 24-bit colors. It never references
// Default or Indexed — §4.4 requires color resolution to be total.
type RenderCommand struct {
	Col, Row int
	Char     rune
	Fg, Bg   RGB24
	Flags    Flags
}
