// Package render implements the Render Command Generator (component
// E): a pure function from grid state plus overlays to an ordered
// draw list with fully resolved colors. It has no GPU or windowing
// dependency — see the gpu package for the consumer.
//
// The per-cell rule set (skip SPACER, resolve color, HIDDEN, INVERSE,
// DIM, overlays) is a function with no side effects so it can be
// snapshot-tested without a GPU.
package render

import (
	"math"

	"github.com/corvidterm/corvid/grid"
	"github.com/corvidterm/corvid/internal/term"
)

// Selection is the set of (row, col) cells painted with the selection
// background overlay.
type Selection map[[2]int]bool

// Contains reports whether (row, col) is selected. A nil Selection
// contains nothing.
func (s Selection) Contains(row, col int) bool {
	if s == nil {
		return false
	}
	return s[[2]int{row, col}]
}

// Preedit is an in-progress IME composition: the characters replace
// the cell at (row, colStart) onward and are forced to render
// underlined, per §4.4 rule 6.
type Preedit struct {
	Active   bool
	Row      int
	ColStart int
	Text     []rune
}

// Overlays bundles everything layered on top of raw grid content: the
// selection set, cursor position/visibility, and any active preedit.
type Overlays struct {
	Selection     Selection
	CursorRow     int
	CursorCol     int
	CursorVisible bool
	Preedit       Preedit
	SelectionBg   term.RGB24
}

// Generate is the pure draw-list function described in spec §4.4. It
// never reorders cells: the output order is row-major enumeration
// order, and identical inputs produce byte-identical output.
func Generate(snap grid.Snapshot, overlays Overlays, palette *term.Palette) []term.RenderCommand {
	preeditRunes := overlays.Preedit.Text

	var out []term.RenderCommand
	for row := 0; row < snap.Rows; row++ {
		for col := 0; col < snap.Cols; col++ {
			cell := snap.Cells[row][col]
			if cell.Flags&term.FlagSpacer != 0 {
				continue
			}

			ch := cell.Char
			flags := cell.Flags

			if overlays.Preedit.Active && row == overlays.Preedit.Row &&
				col >= overlays.Preedit.ColStart && col-overlays.Preedit.ColStart < len(preeditRunes) {
				ch = preeditRunes[col-overlays.Preedit.ColStart]
				flags |= term.FlagUnderline
			}

			fg := palette.Resolve(cell.Fg, false)
			bg := palette.Resolve(cell.Bg, true)

			if flags&term.FlagHidden != 0 {
				fg = bg
			}
			if flags&term.FlagInverse != 0 {
				fg, bg = bg, fg
			}
			if flags&term.FlagDim != 0 && flags&term.FlagBold == 0 {
				fg = dim(fg)
			}

			if overlays.Selection.Contains(row, col) {
				bg = overlays.SelectionBg
			}
			if overlays.CursorVisible && row == overlays.CursorRow && col == overlays.CursorCol {
				fg, bg = bg, fg
			}

			out = append(out, term.RenderCommand{
				Col: col, Row: row,
				Char:  ch,
				Fg:    fg,
				Bg:    bg,
				Flags: flags,
			})
		}
	}
	return out
}

// dim halves the RGB channels (integer, rounded to nearest), §4.4 rule 5.
func dim(c term.RGB24) term.RGB24 {
	return term.RGB24{
		R: uint8(math.Round(float64(c.R) * 0.5)),
		G: uint8(math.Round(float64(c.G) * 0.5)),
		B: uint8(math.Round(float64(c.B) * 0.5)),
	}
}

// DefaultPalette builds the conventional xterm 256-color table: 16
// standard colors, a 6×6×6 cube, and a 24-step grayscale ramp.
func DefaultPalette() *term.Palette {
	p := &term.Palette{
		DefaultFg: term.RGB24{R: 0xd8, G: 0xd8, B: 0xd8},
		DefaultBg: term.RGB24{R: 0x1a, G: 0x1a, B: 0x1a},
	}

	standard := [16]term.RGB24{
		{0x00, 0x00, 0x00}, {0xcc, 0x00, 0x00}, {0x4e, 0x9a, 0x06}, {0xc4, 0xa0, 0x00},
		{0x34, 0x65, 0xa4}, {0x75, 0x50, 0x7b}, {0x06, 0x98, 0x9a}, {0xd3, 0xd7, 0xcf},
		{0x55, 0x57, 0x53}, {0xef, 0x29, 0x29}, {0x8a, 0xe2, 0x34}, {0xfc, 0xe9, 0x4f},
		{0x72, 0x9f, 0xcf}, {0xad, 0x7f, 0xa8}, {0x34, 0xe2, 0xe2}, {0xee, 0xee, 0xec},
	}
	for i, c := range standard {
		p.Table[i] = c
	}

	steps := [6]uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}
	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.Table[idx] = term.RGB24{R: steps[r], G: steps[g], B: steps[b]}
				idx++
			}
		}
	}

	for i := 0; i < 24; i++ {
		v := uint8(8 + i*10)
		p.Table[232+i] = term.RGB24{R: v, G: v, B: v}
	}

	return p
}

// themeBackgrounds maps a theme name to its default background/
// foreground pair ([0] is the background, [1] the foreground). The indexed 256-color table is theme-independent
// (it's the ANSI palette a program chose, not the screen chrome), so
// only the default fg/bg pair varies by theme here.
var themeBackgrounds = map[string][2]term.RGB24{
	"crow-black": {
		{R: 0x05, G: 0x05, B: 0x05},
		{R: 0xe6, G: 0xe6, B: 0xe6},
	},
	"magpie-black-white-grey": {
		{R: 0x11, G: 0x11, B: 0x11},
		{R: 0xf5, G: 0xf5, B: 0xf5},
	},
	"catppuccin-mocha": {
		{R: 0x1e, G: 0x1e, B: 0x2e},
		{R: 0xcd, G: 0xd6, B: 0xf4},
	},
	"corvid-dark": {
		{R: 0x0d, G: 0x10, B: 0x1a},
		{R: 0xe8, G: 0xed, B: 0xf7},
	},
}

// ThemeByName returns the default palette with its default
// foreground/background pair swapped for the named theme. An unknown
// name falls back to "corvid-dark".
func ThemeByName(name string) *term.Palette {
	p := DefaultPalette()
	pair, ok := themeBackgrounds[name]
	if !ok {
		pair = themeBackgrounds["corvid-dark"]
	}
	p.DefaultBg, p.DefaultFg = pair[0], pair[1]
	return p
}
