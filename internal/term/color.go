// Package term holds the value types shared across the parser, grid,
// render, and GPU boundaries: colors, cell attributes, terminal
// commands, key events, and resolved render commands. Nothing in this
// package mutates anything outside of itself.
package term

// ColorKind identifies how a Color should be interpreted.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorRGB
)

// Color is a tagged terminal color: the configured default, one of the
// 256 palette entries, or a resolved 24-bit RGB triple.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// DefaultColor returns the Default-tagged color.
func DefaultColor() Color { return Color{Kind: ColorDefault} }

// Indexed returns an indexed palette color (0-255).
func Indexed(i uint8) Color { return Color{Kind: ColorIndexed, Index: i} }

// RGB returns a resolved 24-bit color.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// Flags is a bitset of text attributes carried by a Cell and a RenderCommand.
type Flags uint16

const (
	FlagBold Flags = 1 << iota
	FlagDim
	FlagItalic
	FlagUnderline
	FlagStrikethrough
	FlagInverse
	FlagHidden
	FlagWide  // left half of a double-width glyph
	FlagSpacer // right half of a double-width glyph; never rendered directly
)

// Cell is one slot in the terminal grid.
type Cell struct {
	Char  rune
	Fg    Color
	Bg    Color
	Flags Flags
}

// Blank returns the default cell: a space with default colors and no flags.
func Blank() Cell {
	return Cell{Char: ' ', Fg: DefaultColor(), Bg: DefaultColor()}
}

// BlankWithBg returns a default cell that carries the given background,
// used when erasing under a non-default pen background.
func BlankWithBg(bg Color) Cell {
	c := Blank()
	c.Bg = bg
	return c
}

// RGB24 is a resolved, palette-free 24-bit color used downstream of the
// render-command generator (never Default or Indexed).
type RGB24 struct {
	R, G, B uint8
}

// Palette supplies the 256-color table plus default fg/bg used to
// resolve Color values into RGB24.
type Palette struct {
	Table     [256]RGB24
	DefaultFg RGB24
	DefaultBg RGB24
}

// Resolve turns a tagged Color into a concrete RGB24 using the palette.
func (p *Palette) Resolve(c Color, isBg bool) RGB24 {
	switch c.Kind {
	case ColorIndexed:
		return p.Table[c.Index]
	case ColorRGB:
		return RGB24{c.R, c.G, c.B}
	default:
		if isBg {
			return p.DefaultBg
		}
		return p.DefaultFg
	}
}
