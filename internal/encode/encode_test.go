package encode

import (
	"bytes"
	"testing"

	"github.com/corvidterm/corvid/internal/term"
)

func TestEncodePlainCharacter(t *testing.T) {
	got := Encode(term.KeyEvent{Char: 'a'}, false)
	if !bytes.Equal(got, []byte("a")) {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeCtrlLetter(t *testing.T) {
	cases := map[rune]byte{'a': 0x01, 'c': 0x03, 'z': 0x1A, 'A': 0x01}
	for ch, want := range cases {
		got := Encode(term.KeyEvent{Char: ch, Modifiers: term.Modifiers{Ctrl: true}}, false)
		if len(got) != 1 || got[0] != want {
			t.Fatalf("Ctrl+%q = %v, want [%#x]", ch, got, want)
		}
	}
}

func TestEncodeAltCharacter(t *testing.T) {
	got := Encode(term.KeyEvent{Char: 'x', Modifiers: term.Modifiers{Alt: true}}, false)
	want := []byte{0x1b, 'x'}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestEncodeNamedKeys(t *testing.T) {
	cases := []struct {
		key  term.NamedKey
		want []byte
	}{
		{term.KeyEnter, []byte{'\r'}},
		{term.KeyTab, []byte{'\t'}},
		{term.KeyEscape, []byte{0x1b}},
		{term.KeyBackspace, []byte{0x7f}},
		{term.KeyArrowUp, []byte{0x1b, '[', 'A'}},
		{term.KeyArrowDown, []byte{0x1b, '[', 'B'}},
		{term.KeyArrowRight, []byte{0x1b, '[', 'C'}},
		{term.KeyArrowLeft, []byte{0x1b, '[', 'D'}},
		{term.KeyHome, []byte{0x1b, '[', 'H'}},
		{term.KeyEnd, []byte{0x1b, '[', 'F'}},
		{term.KeyDelete, []byte("\x1b[3~")},
		{term.KeyPageUp, []byte("\x1b[5~")},
		{term.KeyPageDown, []byte("\x1b[6~")},
	}
	for _, c := range cases {
		got := Encode(term.KeyEvent{Named: c.key}, false)
		if !bytes.Equal(got, c.want) {
			t.Fatalf("%v: got %q want %q", c.key, got, c.want)
		}
	}
}

func TestEncodeArrowWithShift(t *testing.T) {
	got := Encode(term.KeyEvent{Named: term.KeyArrowUp, Modifiers: term.Modifiers{Shift: true}}, false)
	want := []byte("\x1b[1;2A")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEncodeUnknownNamedKeyIsEmpty(t *testing.T) {
	got := Encode(term.KeyEvent{Named: term.NamedKey(250)}, false)
	if len(got) != 0 {
		t.Fatalf("expected empty sequence, got %q", got)
	}
}

func TestEncodeUTF8Multibyte(t *testing.T) {
	got := Encode(term.KeyEvent{Char: '世'}, false)
	want := []byte("世")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestEncodeTotalAndDeterministic(t *testing.T) {
	for named := term.KeyNone; named <= term.KeyPageDown; named++ {
		for _, mods := range []term.Modifiers{
			{}, {Shift: true}, {Ctrl: true}, {Alt: true}, {Shift: true, Ctrl: true, Alt: true},
		} {
			for _, appCursor := range []bool{false, true} {
				ev := term.KeyEvent{Named: named, Modifiers: mods}
				a := Encode(ev, appCursor)
				b := Encode(ev, appCursor)
				if !bytes.Equal(a, b) {
					t.Fatalf("nondeterministic for %+v (appCursor=%v): %q vs %q", ev, appCursor, a, b)
				}
			}
		}
	}
}

func TestEncodeAppCursorModeRedirectsUnmodifiedArrows(t *testing.T) {
	cases := []struct {
		key  term.NamedKey
		want []byte
	}{
		{term.KeyArrowUp, []byte("\x1bOA")},
		{term.KeyArrowDown, []byte("\x1bOB")},
		{term.KeyArrowRight, []byte("\x1bOC")},
		{term.KeyArrowLeft, []byte("\x1bOD")},
	}
	for _, c := range cases {
		got := Encode(term.KeyEvent{Named: c.key}, true)
		if !bytes.Equal(got, c.want) {
			t.Fatalf("%v under app cursor mode: got %q want %q", c.key, got, c.want)
		}
	}
}

func TestEncodeAppCursorModeDoesNotAffectHomeEnd(t *testing.T) {
	got := Encode(term.KeyEvent{Named: term.KeyHome}, true)
	want := []byte("\x1b[H")
	if !bytes.Equal(got, want) {
		t.Fatalf("Home under app cursor mode: got %q want %q", got, want)
	}
}

func TestEncodeAppCursorModeDoesNotApplyWhenModified(t *testing.T) {
	got := Encode(term.KeyEvent{Named: term.KeyArrowUp, Modifiers: term.Modifiers{Shift: true}}, true)
	want := []byte("\x1b[1;2A")
	if !bytes.Equal(got, want) {
		t.Fatalf("Shift+ArrowUp under app cursor mode: got %q want %q", got, want)
	}
}

func TestEncodeWithOverridesUsesOverrideForUnmodifiedNamedKey(t *testing.T) {
	overrides := map[string]string{"Home": "\x1bOH"}
	got := EncodeWithOverrides(term.KeyEvent{Named: term.KeyHome}, overrides, false)
	if string(got) != "\x1bOH" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeWithOverridesIgnoredWhenModified(t *testing.T) {
	overrides := map[string]string{"Home": "\x1bOH"}
	got := EncodeWithOverrides(term.KeyEvent{Named: term.KeyHome, Modifiers: term.Modifiers{Shift: true}}, overrides, false)
	want := Encode(term.KeyEvent{Named: term.KeyHome, Modifiers: term.Modifiers{Shift: true}}, false)
	if !bytes.Equal(got, want) {
		t.Fatalf("override should not apply under modifiers: got %q want %q", got, want)
	}
}

func TestEncodeWithOverridesFallsBackWhenNoneConfigured(t *testing.T) {
	got := EncodeWithOverrides(term.KeyEvent{Named: term.KeyEnd}, nil, false)
	want := Encode(term.KeyEvent{Named: term.KeyEnd}, false)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}
