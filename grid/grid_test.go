package grid

import (
	"testing"

	"github.com/corvidterm/corvid/internal/term"
)

func print(g *Grid, s string) {
	for _, r := range s {
		g.Apply(term.TerminalCommand{Kind: term.CmdPrint, Char: r})
	}
}

func TestApplyPrintAdvancesCursor(t *testing.T) {
	g := New(10, 3)
	print(g, "hi")
	snap := g.Snapshot()
	if snap.Cells[0][0].Char != 'h' || snap.Cells[0][1].Char != 'i' {
		t.Fatalf("unexpected row 0: %+v", snap.Cells[0][:2])
	}
	if snap.CursorCol != 2 {
		t.Fatalf("cursor col = %d, want 2", snap.CursorCol)
	}
}

func TestApplyNewlineAndCarriageReturn(t *testing.T) {
	g := New(5, 3)
	print(g, "ab")
	g.Apply(term.TerminalCommand{Kind: term.CmdCarriageReturn})
	g.Apply(term.TerminalCommand{Kind: term.CmdNewline})
	snap := g.Snapshot()
	if snap.CursorCol != 0 || snap.CursorRow != 1 {
		t.Fatalf("cursor = (%d,%d), want (0,1)", snap.CursorCol, snap.CursorRow)
	}
}

func TestApplyCursorPositionClamps(t *testing.T) {
	g := New(5, 5)
	g.Apply(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: 99, Col: 99})
	snap := g.Snapshot()
	if snap.CursorRow != 4 || snap.CursorCol != 4 {
		t.Fatalf("cursor = (%d,%d), want clamped to (4,4)", snap.CursorCol, snap.CursorRow)
	}
}

func TestApplyScrollRegionConfinesScroll(t *testing.T) {
	g := New(3, 5)
	print(g, "top") // row 0, cursor starts there
	g.Apply(term.TerminalCommand{Kind: term.CmdSetScrollRegion, Row: 2, Bottom: 4}) // rows 1-3, 0-based
	g.Apply(term.TerminalCommand{Kind: term.CmdScrollUp, N: 1})

	snap := g.Snapshot()
	if snap.Cells[0][0].Char != 't' {
		t.Fatalf("row 0 (outside scroll region) should be untouched by scroll, got %q", snap.Cells[0][0].Char)
	}
}

func TestApplyWideCharPairing(t *testing.T) {
	g := New(4, 1)
	print(g, "가") // wide
	snap := g.Snapshot()
	if snap.Cells[0][0].Flags&term.FlagWide == 0 {
		t.Fatalf("expected left half flagged wide")
	}
	if snap.Cells[0][1].Flags&term.FlagSpacer == 0 {
		t.Fatalf("expected right half flagged spacer")
	}
}

func TestApplyEraseInLineRepairsSeveredWidePair(t *testing.T) {
	g := New(4, 1)
	print(g, "가나") // col0+1 = 가 pair, col2+3 = 나 pair
	g.Apply(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: 1, Col: 2}) // 0-indexed col 1, the spacer half of 가
	g.Apply(term.TerminalCommand{Kind: term.CmdEraseInLine, N: term.EraseToEnd})
	snap := g.Snapshot()
	if snap.Cells[0][0].Flags&term.FlagWide != 0 {
		t.Fatalf("severed wide left half should no longer be flagged wide")
	}
	if snap.Cells[0][0].Char != ' ' {
		t.Fatalf("severed wide left half should be blanked, got %q", snap.Cells[0][0].Char)
	}
}

func TestApplySaveRestoreCursor(t *testing.T) {
	g := New(10, 10)
	g.Apply(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: 3, Col: 4}) // 1-indexed -> (2,3) 0-indexed
	g.Apply(term.TerminalCommand{Kind: term.CmdSaveCursor})
	g.Apply(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: 1, Col: 1})
	g.Apply(term.TerminalCommand{Kind: term.CmdRestoreCursor})
	snap := g.Snapshot()
	if snap.CursorRow != 2 || snap.CursorCol != 3 {
		t.Fatalf("cursor = (%d,%d), want restored (3,2)", snap.CursorCol, snap.CursorRow)
	}
}

func TestApplyAltScreenIsolatesContent(t *testing.T) {
	g := New(5, 2)
	print(g, "main")
	g.Apply(term.TerminalCommand{Kind: term.CmdEnterAltScreen})
	print(g, "alt")
	g.Apply(term.TerminalCommand{Kind: term.CmdExitAltScreen})
	snap := g.Snapshot()
	if snap.Cells[0][0].Char != 'm' {
		t.Fatalf("primary screen content lost across alt-screen round trip: %q", snap.Cells[0][0].Char)
	}
}

func TestApplyInsertLines(t *testing.T) {
	g := New(3, 3)
	g.Apply(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: 1, Col: 1}) // 0-indexed row 0
	print(g, "aaa")
	g.Apply(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: 2, Col: 1}) // 0-indexed row 1
	print(g, "bbb")
	g.Apply(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: 1, Col: 1}) // back to row 0
	g.Apply(term.TerminalCommand{Kind: term.CmdInsertLines, N: 1})
	snap := g.Snapshot()
	if snap.Cells[1][0].Char != 'a' {
		t.Fatalf("expected row that held 'aaa' to shift down to row 1, got %q", snap.Cells[1][0].Char)
	}
}

func TestApplySetAndClearFlag(t *testing.T) {
	g := New(3, 1)
	g.Apply(term.TerminalCommand{Kind: term.CmdSetFlag, Flag: term.FlagBold})
	print(g, "x")
	g.Apply(term.TerminalCommand{Kind: term.CmdClearFlag, Flag: term.FlagBold})
	print(g, "y")
	snap := g.Snapshot()
	if snap.Cells[0][0].Flags&term.FlagBold == 0 {
		t.Fatalf("first char should carry bold flag")
	}
	if snap.Cells[0][1].Flags&term.FlagBold != 0 {
		t.Fatalf("second char should not carry bold flag after clear")
	}
}

func TestResizePreservesTopLeftContent(t *testing.T) {
	g := New(5, 5)
	print(g, "hello")
	g.Resize(3, 3)
	snap := g.Snapshot()
	if snap.Rows != 3 || snap.Cols != 3 {
		t.Fatalf("dimensions = %dx%d, want 3x3", snap.Cols, snap.Rows)
	}
	if snap.Cells[0][0].Char != 'h' {
		t.Fatalf("expected top-left content preserved across resize, got %q", snap.Cells[0][0].Char)
	}
}

func TestVisibleTextCollapsesSpacerCells(t *testing.T) {
	g := New(4, 1)
	print(g, "가")
	text := g.VisibleText()
	want := "가  " // spacer cell skipped, two trailing blank cells remain
	if text != want {
		t.Fatalf("VisibleText() = %q, want %q", text, want)
	}
}
