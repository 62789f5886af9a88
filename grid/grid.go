// Package grid implements the Grid State Machine (component D): a
// fixed-width rows×cols cell buffer mutated exclusively by applying
// term.TerminalCommand values. It is the sole mutator — the parser
// never touches it directly (see internal/vtparse).
//
// Cursor motion, scroll-region handling, scrollback, save/restore
// cursor, insert/delete line/char, and REP are all exposed through a
// single entry point, Apply, plus the wide-character/SPACER pairing
// repair rules required by §3/§4.3.
package grid

import (
	"strings"
	"sync"

	"github.com/corvidterm/corvid/internal/term"
)

// MaxScrollback bounds the scrollback ring.
const MaxScrollback = 10000

// Grid is a rectangular rows×cols buffer of term.Cell plus cursor,
// pen, scrollback, scroll-region, and alternate-screen state.
type Grid struct {
	mu sync.RWMutex

	cols, rows int
	cells      []term.Cell

	cursorCol, cursorRow int
	cursorVisible        bool
	pen                  term.Cell // Fg/Bg/Flags meaningful; Char ignored

	savedCol, savedRow int

	scrollTop    int // 1-based, inclusive
	scrollBottom int // 1-based, inclusive
	scrollback   [][]term.Cell

	altScreen            bool
	altCells             []term.Cell
	altCursorCol         int
	altCursorRow         int
	altSavedCol          int
	altSavedRow          int

	lastChar rune
	lastPen  term.Cell

}

// New creates a grid of the given dimensions with a default pen and
// the scroll region set to the full screen.
func New(cols, rows int) *Grid {
	g := &Grid{
		cols:          cols,
		rows:          rows,
		cells:         make([]term.Cell, cols*rows),
		cursorVisible: true,
		pen:           term.Blank(),
		scrollTop:     1,
		scrollBottom:  rows,
	}
	for i := range g.cells {
		g.cells[i] = term.Blank()
	}
	return g
}

func (g *Grid) index(col, row int) int { return row*g.cols + col }

// Cols and Rows report the current grid dimensions.
func (g *Grid) Cols() int { g.mu.RLock(); defer g.mu.RUnlock(); return g.cols }
func (g *Grid) Rows() int { g.mu.RLock(); defer g.mu.RUnlock(); return g.rows }

// Snapshot is the read-only view handed to the render-command
// generator: §6's "Grid→Renderer interface".
type Snapshot struct {
	Rows, Cols    int
	Cells         [][]term.Cell
	CursorRow     int
	CursorCol     int
	CursorVisible bool
}

// Snapshot copies the current cell matrix and cursor state under a
// read lock. The render package never sees interior grid state.
func (g *Grid) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cells := make([][]term.Cell, g.rows)
	for row := 0; row < g.rows; row++ {
		line := make([]term.Cell, g.cols)
		copy(line, g.cells[row*g.cols:(row+1)*g.cols])
		cells[row] = line
	}
	return Snapshot{
		Rows:          g.rows,
		Cols:          g.cols,
		Cells:         cells,
		CursorRow:     g.cursorRow,
		CursorCol:     g.cursorCol,
		CursorVisible: g.cursorVisible,
	}
}

// Apply mutates the grid in response to a single parsed terminal
// command. It never returns an error: out-of-range targets are
// clamped per §7.
func (g *Grid) Apply(cmd term.TerminalCommand) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch cmd.Kind {
	case term.CmdPrint:
		g.print(cmd.Char)
	case term.CmdNewline:
		g.cursorNewline()
	case term.CmdCarriageReturn:
		g.cursorCol = 0
	case term.CmdBackspace:
		if g.cursorCol > 0 {
			g.cursorCol--
		}
	case term.CmdTab:
		next := ((g.cursorCol / 8) + 1) * 8
		if next > g.cols {
			next = g.cols
		}
		g.cursorCol = next
	case term.CmdBell:
		// no-op
	case term.CmdCursorUp:
		g.moveCursor(0, -max(cmd.N, 1))
	case term.CmdCursorDown:
		g.moveCursor(0, max(cmd.N, 1))
	case term.CmdCursorForward:
		g.moveCursor(max(cmd.N, 1), 0)
	case term.CmdCursorBack:
		g.moveCursor(-max(cmd.N, 1), 0)
	case term.CmdCursorPosition:
		g.setCursorPos(cmd.Row, cmd.Col)
	case term.CmdEraseInLine:
		g.eraseInLine(cmd.N)
	case term.CmdEraseInDisplay:
		g.eraseInDisplay(cmd.N)
	case term.CmdSetForeground:
		g.pen.Fg = cmd.Color
	case term.CmdSetBackground:
		g.pen.Bg = cmd.Color
	case term.CmdSetFlag:
		g.pen.Flags |= cmd.Flag
	case term.CmdClearFlag:
		g.pen.Flags &^= cmd.Flag
	case term.CmdResetAttributes:
		g.pen = term.Blank()
	case term.CmdScrollUp:
		for i := 0; i < max(cmd.N, 1); i++ {
			g.scrollUpRegion()
		}
	case term.CmdScrollDown:
		for i := 0; i < max(cmd.N, 1); i++ {
			g.scrollDownRegion()
		}
	case term.CmdSetScrollRegion:
		g.setScrollRegion(cmd.Row, cmd.Bottom)
	case term.CmdSaveCursor:
		g.savedCol, g.savedRow = g.cursorCol, g.cursorRow
	case term.CmdRestoreCursor:
		g.cursorCol, g.cursorRow = g.savedCol, g.savedRow
	case term.CmdInsertLines:
		g.insertLines(max(cmd.N, 1))
	case term.CmdDeleteLines:
		g.deleteLines(max(cmd.N, 1))
	case term.CmdInsertChars:
		g.insertChars(max(cmd.N, 1))
	case term.CmdDeleteChars:
		g.deleteChars(max(cmd.N, 1))
	case term.CmdEraseChars:
		g.eraseChars(max(cmd.N, 1))
	case term.CmdRepeatLastChar:
		g.repeatLastChar(max(cmd.N, 1))
	case term.CmdEnterAltScreen:
		g.enterAltScreen()
	case term.CmdExitAltScreen:
		g.exitAltScreen()
	case term.CmdCursorVisibility:
		g.cursorVisible = cmd.Bool
	case term.CmdApplicationCursorKeys:
		// Tracked by the parser itself (Parser.AppCursorKeys) and
		// surfaced through Session.AppCursorKeys; the grid has no use
		// for input-encoding mode.
	case term.CmdDeviceStatusReport, term.CmdOSCWorkingDirectory:
		// Handled by the session host, which has the PTY writer and
		// working-directory state the grid does not own.
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// print implements §4.3's five-step Print rule, including the
// pending-wrap and wide-character/SPACER repair semantics.
func (g *Grid) print(ch rune) {
	w := RuneWidth(ch)
	if w == 0 {
		// Combining/zero-width: folding into the previous glyph is not
		// representable by a single-rune Cell, so it is dropped rather
		// than corrupting column layout.
		return
	}

	if g.cursorCol >= g.cols {
		g.cursorNewline()
	}
	if w == 2 && g.cursorCol == g.cols-1 {
		g.repairSeverAt(g.cursorCol, g.cursorRow, 1)
		g.cells[g.index(g.cursorCol, g.cursorRow)] = term.BlankWithBg(g.pen.Bg)
		g.cursorNewline()
	}

	g.repairSeverAt(g.cursorCol, g.cursorRow, w)

	flags := g.pen.Flags
	if w == 2 {
		flags |= term.FlagWide
	}
	g.cells[g.index(g.cursorCol, g.cursorRow)] = term.Cell{Char: ch, Fg: g.pen.Fg, Bg: g.pen.Bg, Flags: flags}
	if w == 2 {
		g.cells[g.index(g.cursorCol+1, g.cursorRow)] = term.Cell{Char: ' ', Fg: g.pen.Fg, Bg: g.pen.Bg, Flags: term.FlagSpacer}
	}

	g.lastChar = ch
	g.lastPen = g.pen
	g.cursorCol += w
}

// repairSeverAt clears the partner half of any WIDE_CHAR/SPACER pair
// that a write of width w at (col, row) would otherwise orphan.
func (g *Grid) repairSeverAt(col, row, w int) {
	idx := g.index(col, row)
	if g.cells[idx].Flags&term.FlagSpacer != 0 && col > 0 {
		g.cells[g.index(col-1, row)] = term.BlankWithBg(g.pen.Bg)
	}
	if w == 1 && g.cells[idx].Flags&term.FlagWide != 0 && col+1 < g.cols {
		g.cells[g.index(col+1, row)] = term.BlankWithBg(g.pen.Bg)
	}
	if w == 2 && col+2 < g.cols && g.cells[idx+1].Flags&term.FlagWide != 0 {
		g.cells[g.index(col+2, row)] = term.BlankWithBg(g.pen.Bg)
	}
}

func (g *Grid) cursorNewline() {
	g.cursorCol = 0
	g.cursorRow++
	if g.cursorRow >= g.scrollBottom {
		g.scrollUpRegion()
		g.cursorRow = g.scrollBottom - 1
	} else if g.cursorRow >= g.rows {
		g.cursorRow = g.rows - 1
	}
}

// scrollUpRegion shifts the scroll region up by one line, saving the
// departing top row to scrollback only when the region is the full
// screen (a scrolled-region top line is not terminal history).
func (g *Grid) scrollUpRegion() {
	top, bottom := g.scrollTop-1, g.scrollBottom-1 // 0-based
	if g.scrollTop == 1 && g.scrollBottom == g.rows && !g.altScreen {
		row := make([]term.Cell, g.cols)
		copy(row, g.cells[0:g.cols])
		g.scrollback = append(g.scrollback, row)
		if len(g.scrollback) > MaxScrollback {
			g.scrollback = g.scrollback[1:]
		}
	}
	for row := top; row < bottom; row++ {
		copy(g.cells[g.index(0, row):g.index(0, row)+g.cols], g.cells[g.index(0, row+1):g.index(0, row+1)+g.cols])
	}
	g.fillRow(bottom, term.BlankWithBg(g.pen.Bg))
}

func (g *Grid) scrollDownRegion() {
	top, bottom := g.scrollTop-1, g.scrollBottom-1
	for row := bottom; row > top; row-- {
		copy(g.cells[g.index(0, row):g.index(0, row)+g.cols], g.cells[g.index(0, row-1):g.index(0, row-1)+g.cols])
	}
	g.fillRow(top, term.BlankWithBg(g.pen.Bg))
}

func (g *Grid) fillRow(row int, fill term.Cell) {
	for col := 0; col < g.cols; col++ {
		g.cells[g.index(col, row)] = fill
	}
}

func (g *Grid) moveCursor(dCol, dRow int) {
	g.cursorCol = clamp(g.cursorCol+dCol, 0, g.cols-1)
	g.cursorRow = clamp(g.cursorRow+dRow, 0, g.rows-1)
}

// setCursorPos applies CursorPosition: 1-indexed inputs (zero treated
// as one), row or col of -1 leaves that axis unchanged (used for the
// single-axis 'G'/'d' CSI finals).
func (g *Grid) setCursorPos(row, col int) {
	if row >= 0 {
		g.cursorRow = clamp(row-1, 0, g.rows-1)
	}
	if col >= 0 {
		g.cursorCol = clamp(col-1, 0, g.cols-1)
	}
}

func (g *Grid) eraseInLine(mode int) {
	fill := term.BlankWithBg(g.pen.Bg)
	switch mode {
	case term.EraseToStart:
		g.repairPairAtBoundary(g.cursorRow, g.cursorCol+1)
		for col := 0; col <= g.cursorCol && col < g.cols; col++ {
			g.cells[g.index(col, g.cursorRow)] = fill
		}
	case term.EraseAll:
		g.fillRow(g.cursorRow, fill)
	default:
		g.repairPairAtBoundary(g.cursorRow, g.cursorCol)
		for col := g.cursorCol; col < g.cols; col++ {
			g.cells[g.index(col, g.cursorRow)] = fill
		}
	}
}

// repairPairAtBoundary clears the half of a WIDE_CHAR/SPACER pair that
// straddles col-1/col when only one side falls inside an erased range.
func (g *Grid) repairPairAtBoundary(row, col int) {
	if col <= 0 || col >= g.cols {
		return
	}
	left := g.cells[g.index(col-1, row)]
	right := g.cells[g.index(col, row)]
	if left.Flags&term.FlagWide != 0 && right.Flags&term.FlagSpacer != 0 {
		g.cells[g.index(col-1, row)] = term.BlankWithBg(g.pen.Bg)
		g.cells[g.index(col, row)] = term.BlankWithBg(g.pen.Bg)
	}
}

func (g *Grid) eraseInDisplay(mode int) {
	fill := term.BlankWithBg(g.pen.Bg)
	switch mode {
	case term.EraseToStart:
		for row := 0; row < g.cursorRow; row++ {
			g.fillRow(row, fill)
		}
		g.eraseInLine(term.EraseToStart)
	case term.EraseAll:
		for row := 0; row < g.rows; row++ {
			g.fillRow(row, fill)
		}
	default:
		g.eraseInLine(term.EraseToEnd)
		for row := g.cursorRow + 1; row < g.rows; row++ {
			g.fillRow(row, fill)
		}
	}
}

func (g *Grid) eraseChars(n int) {
	fill := term.BlankWithBg(g.pen.Bg)
	for i := 0; i < n && g.cursorCol+i < g.cols; i++ {
		g.cells[g.index(g.cursorCol+i, g.cursorRow)] = fill
	}
}

func (g *Grid) repeatLastChar(n int) {
	for i := 0; i < n; i++ {
		if g.cursorCol >= g.cols {
			g.cursorNewline()
		}
		g.cells[g.index(g.cursorCol, g.cursorRow)] = term.Cell{
			Char: g.lastChar, Fg: g.lastPen.Fg, Bg: g.lastPen.Bg, Flags: g.lastPen.Flags,
		}
		g.cursorCol++
	}
}

func (g *Grid) deleteChars(n int) {
	row := g.cursorRow
	for col := g.cursorCol; col < g.cols-n; col++ {
		g.cells[g.index(col, row)] = g.cells[g.index(col+n, row)]
	}
	fill := term.BlankWithBg(g.pen.Bg)
	for col := max(g.cols-n, g.cursorCol); col < g.cols; col++ {
		g.cells[g.index(col, row)] = fill
	}
}

func (g *Grid) insertChars(n int) {
	row := g.cursorRow
	for col := g.cols - 1; col >= g.cursorCol+n; col-- {
		g.cells[g.index(col, row)] = g.cells[g.index(col-n, row)]
	}
	fill := term.BlankWithBg(g.pen.Bg)
	for col := g.cursorCol; col < g.cursorCol+n && col < g.cols; col++ {
		g.cells[g.index(col, row)] = fill
	}
}

func (g *Grid) deleteLines(n int) {
	top, bottom := g.scrollTop-1, g.scrollBottom-1
	fill := term.BlankWithBg(g.pen.Bg)
	for row := g.cursorRow; row <= bottom-n; row++ {
		copy(g.cells[g.index(0, row):g.index(0, row)+g.cols], g.cells[g.index(0, row+n):g.index(0, row+n)+g.cols])
	}
	for row := max(bottom-n+1, g.cursorRow); row <= bottom; row++ {
		g.fillRow(row, fill)
	}
	_ = top
}

func (g *Grid) insertLines(n int) {
	bottom := g.scrollBottom - 1
	fill := term.BlankWithBg(g.pen.Bg)
	for row := bottom; row >= g.cursorRow+n; row-- {
		copy(g.cells[g.index(0, row):g.index(0, row)+g.cols], g.cells[g.index(0, row-n):g.index(0, row-n)+g.cols])
	}
	for row := g.cursorRow; row < g.cursorRow+n && row <= bottom; row++ {
		g.fillRow(row, fill)
	}
}

func (g *Grid) setScrollRegion(top, bottom int) {
	if top < 1 {
		top = 1
	}
	if bottom < 1 || bottom > g.rows {
		bottom = g.rows
	}
	if top < bottom {
		g.scrollTop, g.scrollBottom = top, bottom
	} else {
		g.scrollTop, g.scrollBottom = 1, g.rows
	}
	g.cursorCol, g.cursorRow = 0, 0
}

// enterAltScreen swaps in a blank alternate buffer, preserving the
// primary screen's content and cursor for restoration on exit.
func (g *Grid) enterAltScreen() {
	if g.altScreen {
		return
	}
	primary := g.cells
	g.altCells = make([]term.Cell, g.cols*g.rows)
	for i := range g.altCells {
		g.altCells[i] = term.Blank()
	}
	g.cells, g.altCells = g.altCells, primary
	g.altCursorCol, g.altCursorRow = g.cursorCol, g.cursorRow
	g.cursorCol, g.cursorRow = 0, 0
	g.altScreen = true
}

func (g *Grid) exitAltScreen() {
	if !g.altScreen {
		return
	}
	g.cells, g.altCells = g.altCells, g.cells
	g.cursorCol, g.cursorRow = g.altCursorCol, g.altCursorRow
	g.altCells = nil
	g.altScreen = false
}

// Resize truncates or pads every row and truncates or appends rows at
// the bottom, then clamps the cursor. Resizing to the current size is
// a no-op; resizing twice to (rows, cols) equals resizing once.
func (g *Grid) Resize(cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cols == g.cols && rows == g.rows {
		return
	}

	newCells := make([]term.Cell, cols*rows)
	for i := range newCells {
		newCells[i] = term.Blank()
	}
	copyRows := min2(rows, g.rows)
	copyCols := min2(cols, g.cols)
	for row := 0; row < copyRows; row++ {
		copy(newCells[row*cols:row*cols+copyCols], g.cells[row*g.cols:row*g.cols+copyCols])
	}

	g.cells = newCells
	g.cols, g.rows = cols, rows
	g.scrollTop, g.scrollBottom = 1, rows
	g.cursorCol = clamp(g.cursorCol, 0, cols-1)
	g.cursorRow = clamp(g.cursorRow, 0, rows-1)
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// VisibleText returns the grid's current screen content as plain
// text, one line per row, SPACER cells collapsed. Used by tests.
func (g *Grid) VisibleText() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			c := g.cells[g.index(col, row)]
			if c.Flags&term.FlagSpacer != 0 {
				continue
			}
			b.WriteRune(c.Char)
		}
		if row < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
