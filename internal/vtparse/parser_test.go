package vtparse

import (
	"testing"

	"github.com/corvidterm/corvid/internal/term"
)

func feedAll(p *Parser, chunks ...string) []term.TerminalCommand {
	var all []term.TerminalCommand
	for _, c := range chunks {
		all = append(all, p.Feed([]byte(c))...)
	}
	return all
}

func kinds(cmds []term.TerminalCommand) []term.CommandKind {
	out := make([]term.CommandKind, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind
	}
	return out
}

func sameKinds(t *testing.T, got, want []term.CommandKind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len mismatch: got %v want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v (full: got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}

func TestPrintASCII(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("hi"))
	if len(cmds) != 2 || cmds[0].Char != 'h' || cmds[1].Char != 'i' {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
}

func TestChunkBoundaryEquivalence(t *testing.T) {
	whole := "hello \x1b[31mworld\x1b[0m\r\n"
	for split := 0; split <= len(whole); split++ {
		p1 := New()
		oneShot := p1.Feed([]byte(whole))

		p2 := New()
		chunked := feedAll(p2, whole[:split], whole[split:])

		if len(oneShot) != len(chunked) {
			t.Fatalf("split %d: len mismatch one-shot=%d chunked=%d", split, len(oneShot), len(chunked))
		}
		for i := range oneShot {
			if oneShot[i] != chunked[i] {
				t.Fatalf("split %d: command %d differs: one-shot=%+v chunked=%+v", split, i, oneShot[i], chunked[i])
			}
		}
	}
}

func TestUTF8SplitAcrossFeedCalls(t *testing.T) {
	// "é" = 0xC3 0xA9, "世" = 0xE4 0xB8 0x96
	raw := []byte{0xC3, 0xA9, 0xE4, 0xB8, 0x96}
	for split := 1; split < len(raw); split++ {
		p := New()
		cmds := feedAll(p, string(raw[:split]), string(raw[split:]))
		if len(cmds) != 2 {
			t.Fatalf("split %d: expected 2 prints, got %d (%+v)", split, len(cmds), cmds)
		}
		if cmds[0].Char != 'é' || cmds[1].Char != '世' {
			t.Fatalf("split %d: decoded wrong runes: %+v", split, cmds)
		}
	}
}

func TestCSISplitAcrossFeedCalls(t *testing.T) {
	seq := "\x1b[1;31mX"
	for split := 0; split <= len(seq); split++ {
		p := New()
		cmds := feedAll(p, seq[:split], seq[split:])
		got := kinds(cmds)
		want := []term.CommandKind{term.CmdSetFlag, term.CmdSetForeground, term.CmdPrint}
		sameKinds(t, got, want)
	}
}

func TestCursorMotionDefaults(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[A\x1b[B\x1b[C\x1b[D"))
	if len(cmds) != 4 {
		t.Fatalf("expected 4 commands, got %+v", cmds)
	}
	for _, c := range cmds {
		if c.N != 1 {
			t.Fatalf("expected default count 1, got %+v", c)
		}
	}
}

func TestCursorPositionOneBased(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[5;10H"))
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %+v", cmds)
	}
	if cmds[0].Row != 5 || cmds[0].Col != 10 {
		t.Fatalf("unexpected position: %+v", cmds[0])
	}
}

func TestSGRTrueColor(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[38;2;10;20;30m"))
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %+v", cmds)
	}
	c := cmds[0].Color
	if c.Kind != term.ColorRGB || c.R != 10 || c.G != 20 || c.B != 30 {
		t.Fatalf("unexpected color: %+v", c)
	}
}

func TestSGR256Indexed(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[48;5;200m"))
	if len(cmds) != 1 || cmds[0].Kind != term.CmdSetBackground {
		t.Fatalf("unexpected: %+v", cmds)
	}
	if cmds[0].Color.Kind != term.ColorIndexed || cmds[0].Color.Index != 200 {
		t.Fatalf("unexpected color: %+v", cmds[0].Color)
	}
}

func TestSGRCompound(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[1;4;7m"))
	want := []term.CommandKind{term.CmdSetFlag, term.CmdSetFlag, term.CmdSetFlag}
	sameKinds(t, kinds(cmds), want)
}

func TestAltScreenModes1049(t *testing.T) {
	p := New()
	enter := p.Feed([]byte("\x1b[?1049h"))
	sameKinds(t, kinds(enter), []term.CommandKind{term.CmdSaveCursor, term.CmdEnterAltScreen})

	exit := p.Feed([]byte("\x1b[?1049l"))
	sameKinds(t, kinds(exit), []term.CommandKind{term.CmdExitAltScreen, term.CmdRestoreCursor})
}

func TestApplicationCursorKeysTracked(t *testing.T) {
	p := New()
	p.Feed([]byte("\x1b[?1h"))
	if !p.AppCursorKeys() {
		t.Fatal("expected app cursor keys set")
	}
	p.Feed([]byte("\x1b[?1l"))
	if p.AppCursorKeys() {
		t.Fatal("expected app cursor keys cleared")
	}
}

func TestCursorVisibilityTracked(t *testing.T) {
	p := New()
	if !p.CursorVisible() {
		t.Fatal("expected cursor visible by default")
	}
	p.Feed([]byte("\x1b[?25l"))
	if p.CursorVisible() {
		t.Fatal("expected cursor hidden")
	}
}

func TestScrollRegion(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[5;20r"))
	if len(cmds) != 1 || cmds[0].Kind != term.CmdSetScrollRegion {
		t.Fatalf("unexpected: %+v", cmds)
	}
	if cmds[0].Row != 5 || cmds[0].Bottom != 20 {
		t.Fatalf("unexpected region: %+v", cmds[0])
	}
}

func TestRepeatLastChar(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[5b"))
	if len(cmds) != 1 || cmds[0].Kind != term.CmdRepeatLastChar || cmds[0].N != 5 {
		t.Fatalf("unexpected: %+v", cmds)
	}
}

func TestDeviceStatusReport(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[6n"))
	if len(cmds) != 1 || cmds[0].Kind != term.CmdDeviceStatusReport || cmds[0].N != 6 {
		t.Fatalf("unexpected: %+v", cmds)
	}
}

func TestOSC7WorkingDirectory(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b]7;file:///home/user/src\x07"))
	if len(cmds) != 1 || cmds[0].Kind != term.CmdOSCWorkingDirectory {
		t.Fatalf("unexpected: %+v", cmds)
	}
	if cmds[0].Text != "/home/user/src" {
		t.Fatalf("unexpected path: %q", cmds[0].Text)
	}
	if p.WorkingDir() != "/home/user/src" {
		t.Fatalf("WorkingDir() not tracked: %q", p.WorkingDir())
	}
}

func TestOSC7SplitAcrossFeedCalls(t *testing.T) {
	seq := "\x1b]7;file:///tmp/x\x07"
	for split := 0; split <= len(seq); split++ {
		p := New()
		cmds := feedAll(p, seq[:split], seq[split:])
		if len(cmds) != 1 || cmds[0].Text != "/tmp/x" {
			t.Fatalf("split %d: unexpected: %+v", split, cmds)
		}
	}
}

func TestUnterminatedEscapeIsRetainedNotDropped(t *testing.T) {
	p := New()
	cmds := p.Feed([]byte("\x1b[1"))
	if len(cmds) != 0 {
		t.Fatalf("expected no commands yet, got %+v", cmds)
	}
	cmds = p.Feed([]byte("m"))
	if len(cmds) != 1 || cmds[0].Kind != term.CmdSetFlag {
		t.Fatalf("expected flag set after completion, got %+v", cmds)
	}
}

func TestInvalidUTF8ContinuationIsDroppedNotFatal(t *testing.T) {
	p := New()
	// 0xC3 starts a 2-byte sequence, but 'Z' (0x5A) is not a valid
	// continuation byte; the lead byte is abandoned and 'Z' is
	// reprocessed as ground input rather than poisoning later bytes.
	cmds := p.Feed([]byte{0xC3, 'Z'})
	if len(cmds) != 1 || cmds[0].Char != 'Z' {
		t.Fatalf("unexpected: %+v", cmds)
	}
}
