// Package encode implements the Input Encoder (component B): a pure,
// total mapping from a key event to the byte sequence a shell expects
// on the PTY. It operates on the platform-independent term.KeyEvent
// instead of raw GLFW key codes so it can be unit tested without a
// window.
package encode

import (
	"unicode"

	"github.com/corvidterm/corvid/internal/term"
)

// modParam computes the xterm modifier parameter: Shift=2, Alt=3,
// Shift+Alt=4, Ctrl=5, Shift+Ctrl=6, Alt+Ctrl=7, Shift+Alt+Ctrl=8.
// Returns 0 when no modifier applies (caller omits the "1;<mod>" form).
func modParam(m term.Modifiers) int {
	n := 0
	if m.Shift {
		n |= 1
	}
	if m.Alt {
		n |= 2
	}
	if m.Ctrl {
		n |= 4
	}
	if n == 0 {
		return 0
	}
	return n + 1
}

var arrowFinal = map[term.NamedKey]byte{
	term.KeyArrowUp:    'A',
	term.KeyArrowDown:  'B',
	term.KeyArrowRight: 'C',
	term.KeyArrowLeft:  'D',
	term.KeyHome:       'H',
	term.KeyEnd:        'F',
}

// appCursorFinal holds the four keys DECCKM (application cursor-key
// mode) redirects from the CSI form ("ESC [ A") to the SS3 form
// ("ESC O A") when unmodified. Home/End are unaffected by DECCKM.
var appCursorFinal = map[term.NamedKey]byte{
	term.KeyArrowUp:    'A',
	term.KeyArrowDown:  'B',
	term.KeyArrowRight: 'C',
	term.KeyArrowLeft:  'D',
}

var tildeCode = map[term.NamedKey]int{
	term.KeyDelete:   3,
	term.KeyPageUp:   5,
	term.KeyPageDown: 6,
}

// Encode maps a KeyEvent to the byte sequence written to the PTY. It
// never errors and never panics; an unrecognized named key yields an
// empty sequence. appCursorMode is the terminal's current DECCKM
// state: when set, the unmodified arrow keys are encoded in the SS3
// form ("ESC O A") instead of the normal CSI form ("ESC [ A").
func Encode(ev term.KeyEvent, appCursorMode bool) []byte {
	if ev.Named == term.KeyNone {
		return encodeChar(ev.Char, ev.Modifiers)
	}
	return encodeNamed(ev.Named, ev.Modifiers, appCursorMode)
}

// namedKeyNames maps a NamedKey to the string form used as an
// override key in internal/config's keybindings.json, so a user can
// remap e.g. "Home" without touching compiled-in xterm sequences.
var namedKeyNames = map[term.NamedKey]string{
	term.KeyEnter:      "Enter",
	term.KeyTab:        "Tab",
	term.KeyEscape:     "Escape",
	term.KeyBackspace:  "Backspace",
	term.KeyDelete:     "Delete",
	term.KeyArrowUp:    "ArrowUp",
	term.KeyArrowDown:  "ArrowDown",
	term.KeyArrowLeft:  "ArrowLeft",
	term.KeyArrowRight: "ArrowRight",
	term.KeyHome:       "Home",
	term.KeyEnd:        "End",
	term.KeyPageUp:     "PageUp",
	term.KeyPageDown:   "PageDown",
}

// EncodeWithOverrides behaves like Encode but consults overrides
// first for unmodified named keys, falling back to the built-in
// encoding when no override is configured.
func EncodeWithOverrides(ev term.KeyEvent, overrides map[string]string, appCursorMode bool) []byte {
	if ev.Named != term.KeyNone && ev.Modifiers == (term.Modifiers{}) {
		if name, ok := namedKeyNames[ev.Named]; ok {
			if seq, ok := overrides[name]; ok {
				return []byte(seq)
			}
		}
	}
	return Encode(ev, appCursorMode)
}

func encodeChar(ch rune, mods term.Modifiers) []byte {
	if mods.Ctrl {
		if b, ok := ctrlByte(ch); ok {
			return []byte{b}
		}
	}
	plain := encodeRune(ch)
	if mods.Alt {
		return append([]byte{0x1b}, plain...)
	}
	return plain
}

// ctrlByte maps Ctrl+letter to the 0x01-0x1A control byte, case-insensitively.
func ctrlByte(ch rune) (byte, bool) {
	lower := unicode.ToLower(ch)
	if lower >= 'a' && lower <= 'z' {
		return byte(lower-'a') + 1, true
	}
	return 0, false
}

func encodeNamed(key term.NamedKey, mods term.Modifiers, appCursorMode bool) []byte {
	switch key {
	case term.KeyEnter:
		return prefixAlt([]byte{'\r'}, mods)
	case term.KeyTab:
		return prefixAlt([]byte{'\t'}, mods)
	case term.KeyEscape:
		return []byte{0x1b}
	case term.KeyBackspace:
		return prefixAlt([]byte{0x7f}, mods)
	}

	if appCursorMode && mods == (term.Modifiers{}) {
		if final, ok := appCursorFinal[key]; ok {
			return []byte{0x1b, 'O', final}
		}
	}
	if final, ok := arrowFinal[key]; ok {
		return csiLetter(final, mods)
	}
	if code, ok := tildeCode[key]; ok {
		return csiTilde(code, mods)
	}
	return nil
}

func prefixAlt(seq []byte, mods term.Modifiers) []byte {
	if mods.Alt {
		return append([]byte{0x1b}, seq...)
	}
	return seq
}

// csiLetter builds "ESC [ A" or, under modifiers, "ESC [ 1 ; <mod> A".
func csiLetter(final byte, mods term.Modifiers) []byte {
	if n := modParam(mods); n != 0 {
		return []byte{0x1b, '[', '1', ';', byte('0' + n), final}
	}
	return []byte{0x1b, '[', final}
}

// csiTilde builds "ESC [ <n> ~" or, under modifiers, "ESC [ <n> ; <mod> ~".
func csiTilde(n int, mods term.Modifiers) []byte {
	digits := []byte(itoa(n))
	out := append([]byte{0x1b, '['}, digits...)
	if m := modParam(mods); m != 0 {
		out = append(out, ';', byte('0'+m))
	}
	return append(out, '~')
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// encodeRune UTF-8 encodes a single scalar value.
func encodeRune(r rune) []byte {
	buf := make([]byte, 4)
	n := encodeRuneInto(buf, r)
	return buf[:n]
}

func encodeRuneInto(buf []byte, r rune) int {
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = byte(0xC0 | (r >> 6))
		buf[1] = byte(0x80 | (r & 0x3F))
		return 2
	case r < 0x10000:
		buf[0] = byte(0xE0 | (r >> 12))
		buf[1] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[2] = byte(0x80 | (r & 0x3F))
		return 3
	default:
		buf[0] = byte(0xF0 | (r >> 18))
		buf[1] = byte(0x80 | ((r >> 12) & 0x3F))
		buf[2] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[3] = byte(0x80 | (r & 0x3F))
		return 4
	}
}
