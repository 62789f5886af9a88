// Package vtparse implements the VT Parser (component C): a stateful
// byte-level ECMA-48/VT100 state machine that is resilient to
// arbitrary chunk boundaries and translates a byte stream into an
// ordered list of term.TerminalCommand values. It holds no reference
// to a grid — see SPEC_FULL.md §4 for why that separation was made.
//
// The ground/escape/CSI/OSC state machine, the manual UTF-8
// continuation buffer, and the SGR left-to-right parameter loop append
// commands to a slice rather than mutating grid state directly, so the
// parser can run with no grid reference at all.
package vtparse

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/corvidterm/corvid/internal/term"
)

type state uint8

const (
	stateGround state = iota
	stateEscape
	stateCSI
	stateOSC
	stateCharset
	stateHash
)

// Parser is a single-stream VT parser. It is not safe for concurrent
// use; callers serialize Feed calls themselves (see internal/session).
type Parser struct {
	st state

	csiParams string
	oscParams string
	private   bool

	appCursorKeys bool
	cursorVisible bool
	workingDir    string

	utf8Buf       []byte
	utf8Remaining int

	out []term.TerminalCommand
}

// New creates a parser ready to consume bytes from the start of a stream.
func New() *Parser {
	return &Parser{cursorVisible: true}
}

// Feed consumes data and returns the ordered commands it produced. Any
// partial escape sequence or UTF-8 continuation is retained internally
// and completed by a later Feed call — parsing s1 then s2 yields the
// same commands as parsing s1+s2 in one call.
func (p *Parser) Feed(data []byte) []term.TerminalCommand {
	p.out = p.out[:0]
	for _, b := range data {
		p.step(b)
	}
	return p.out
}

func (p *Parser) emit(cmd term.TerminalCommand) {
	p.out = append(p.out, cmd)
}

// AppCursorKeys reports whether DECCKM application cursor-key mode is set.
func (p *Parser) AppCursorKeys() bool { return p.appCursorKeys }

// CursorVisible reports whether DECTCEM last set the cursor visible.
func (p *Parser) CursorVisible() bool { return p.cursorVisible }

// WorkingDir returns the last OSC-7 reported working directory, if any.
func (p *Parser) WorkingDir() string { return p.workingDir }

func (p *Parser) step(b byte) {
	switch p.st {
	case stateGround:
		p.stepGround(b)
	case stateEscape:
		p.stepEscape(b)
	case stateCSI:
		p.stepCSI(b)
	case stateOSC:
		p.stepOSC(b)
	case stateCharset:
		p.st = stateGround
	case stateHash:
		p.st = stateGround
	}
}

func (p *Parser) stepGround(b byte) {
	if p.utf8Remaining > 0 {
		if b&0xC0 == 0x80 {
			p.utf8Buf = append(p.utf8Buf, b)
			p.utf8Remaining--
			if p.utf8Remaining == 0 {
				p.emit(term.TerminalCommand{Kind: term.CmdPrint, Char: decodeUTF8(p.utf8Buf)})
				p.utf8Buf = nil
			}
			return
		}
		// Invalid continuation byte: abandon the partial sequence and
		// reprocess b as a fresh byte in ground state.
		p.utf8Buf = nil
		p.utf8Remaining = 0
	}

	switch b {
	case 0x1b:
		p.st = stateEscape
	case 0x07:
		p.emit(term.TerminalCommand{Kind: term.CmdBell})
	case 0x08:
		p.emit(term.TerminalCommand{Kind: term.CmdBackspace})
	case 0x09:
		p.emit(term.TerminalCommand{Kind: term.CmdTab})
	case 0x0a, 0x0b, 0x0c:
		p.emit(term.TerminalCommand{Kind: term.CmdNewline})
	case 0x0d:
		p.emit(term.TerminalCommand{Kind: term.CmdCarriageReturn})
	default:
		switch {
		case b >= 0x20 && b < 0x7f:
			p.emit(term.TerminalCommand{Kind: term.CmdPrint, Char: rune(b)})
		case b >= 0xC0 && b < 0xE0:
			p.utf8Buf = []byte{b}
			p.utf8Remaining = 1
		case b >= 0xE0 && b < 0xF0:
			p.utf8Buf = []byte{b}
			p.utf8Remaining = 2
		case b >= 0xF0 && b < 0xF8:
			p.utf8Buf = []byte{b}
			p.utf8Remaining = 3
		}
		// Other C0/C1 bytes and stray UTF-8 continuation/lead bytes are dropped.
	}
}

func decodeUTF8(buf []byte) rune {
	const replacement = 0xFFFD
	switch len(buf) {
	case 2:
		if buf[0]&0xE0 == 0xC0 {
			return rune(buf[0]&0x1F)<<6 | rune(buf[1]&0x3F)
		}
	case 3:
		if buf[0]&0xF0 == 0xE0 {
			return rune(buf[0]&0x0F)<<12 | rune(buf[1]&0x3F)<<6 | rune(buf[2]&0x3F)
		}
	case 4:
		if buf[0]&0xF8 == 0xF0 {
			return rune(buf[0]&0x07)<<18 | rune(buf[1]&0x3F)<<12 | rune(buf[2]&0x3F)<<6 | rune(buf[3]&0x3F)
		}
	}
	return replacement
}

func (p *Parser) stepEscape(b byte) {
	switch b {
	case '[':
		p.st = stateCSI
		p.csiParams = ""
	case ']':
		p.st = stateOSC
		p.oscParams = ""
	case '7':
		p.emit(term.TerminalCommand{Kind: term.CmdSaveCursor})
		p.st = stateGround
	case '8':
		p.emit(term.TerminalCommand{Kind: term.CmdRestoreCursor})
		p.st = stateGround
	case 'c':
		p.emit(term.TerminalCommand{Kind: term.CmdResetAttributes})
		p.st = stateGround
	case 'D':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorDown, N: 1})
		p.st = stateGround
	case 'M':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorUp, N: 1})
		p.st = stateGround
	case 'E':
		p.emit(term.TerminalCommand{Kind: term.CmdCarriageReturn})
		p.emit(term.TerminalCommand{Kind: term.CmdNewline})
		p.st = stateGround
	case '(', ')', '*', '+':
		p.st = stateCharset
	case '=', '>':
		p.st = stateGround
	case '#':
		p.st = stateHash
	default:
		p.st = stateGround
	}
}

func (p *Parser) stepCSI(b byte) {
	switch {
	case b >= 0x30 && b <= 0x3f:
		p.csiParams += string(b)
	case b >= 0x20 && b <= 0x2f:
		p.csiParams += string(b)
	case b >= 0x40 && b <= 0x7e:
		p.executeCSI(b)
		p.st = stateGround
	default:
		p.st = stateGround
	}
}

func (p *Parser) executeCSI(final byte) {
	raw := p.csiParams
	// Sequences carrying intermediate bytes (0x20-0x2F) are outside the
	// supported subset and are dropped rather than guessed at.
	if strings.IndexFunc(raw, func(r rune) bool { return r >= 0x20 && r <= 0x2f }) >= 0 {
		return
	}
	private := strings.HasPrefix(raw, "?")
	params := parseParams(raw)

	switch final {
	case 'A':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorUp, N: param(params, 0, 1)})
	case 'B':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorDown, N: param(params, 0, 1)})
	case 'C':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorForward, N: param(params, 0, 1)})
	case 'D':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorBack, N: param(params, 0, 1)})
	case 'E':
		p.emit(term.TerminalCommand{Kind: term.CmdCarriageReturn})
		p.emit(term.TerminalCommand{Kind: term.CmdCursorDown, N: param(params, 0, 1)})
	case 'F':
		p.emit(term.TerminalCommand{Kind: term.CmdCarriageReturn})
		p.emit(term.TerminalCommand{Kind: term.CmdCursorUp, N: param(params, 0, 1)})
	case 'G':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: -1, Col: param(params, 0, 1)})
	case 'H', 'f':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: param(params, 0, 1), Col: param(params, 1, 1)})
	case 'J':
		p.emit(term.TerminalCommand{Kind: term.CmdEraseInDisplay, N: eraseMode(param(params, 0, 0))})
	case 'K':
		p.emit(term.TerminalCommand{Kind: term.CmdEraseInLine, N: eraseMode(param(params, 0, 0))})
	case 'L':
		p.emit(term.TerminalCommand{Kind: term.CmdInsertLines, N: param(params, 0, 1)})
	case 'M':
		p.emit(term.TerminalCommand{Kind: term.CmdDeleteLines, N: param(params, 0, 1)})
	case 'P':
		p.emit(term.TerminalCommand{Kind: term.CmdDeleteChars, N: param(params, 0, 1)})
	case '@':
		p.emit(term.TerminalCommand{Kind: term.CmdInsertChars, N: param(params, 0, 1)})
	case 'S':
		p.emit(term.TerminalCommand{Kind: term.CmdScrollUp, N: param(params, 0, 1)})
	case 'T':
		p.emit(term.TerminalCommand{Kind: term.CmdScrollDown, N: param(params, 0, 1)})
	case 'X':
		p.emit(term.TerminalCommand{Kind: term.CmdEraseChars, N: param(params, 0, 1)})
	case 'd':
		p.emit(term.TerminalCommand{Kind: term.CmdCursorPosition, Row: param(params, 0, 1), Col: -1})
	case 'b':
		p.emit(term.TerminalCommand{Kind: term.CmdRepeatLastChar, N: param(params, 0, 1)})
	case 'm':
		p.executeSGR(params)
	case 'h':
		p.setMode(params, private, true)
	case 'l':
		p.setMode(params, private, false)
	case 'r':
		p.emit(term.TerminalCommand{Kind: term.CmdSetScrollRegion, Row: param(params, 0, 1), Bottom: param(params, 1, 0)})
	case 's':
		p.emit(term.TerminalCommand{Kind: term.CmdSaveCursor})
	case 'u':
		p.emit(term.TerminalCommand{Kind: term.CmdRestoreCursor})
	case 'n':
		p.emit(term.TerminalCommand{Kind: term.CmdDeviceStatusReport, N: param(params, 0, 0)})
	// 'c' (DA), 't' (window manipulation), 'q' (DECSCUSR): acknowledged
	// by the byte-level state machine but intentionally produce no
	// command — the conformance subset in SPEC_FULL.md does not define
	// a reply for them.
	case 'c', 't', 'q':
	}
}

func eraseMode(n int) int {
	switch n {
	case 1:
		return term.EraseToStart
	case 2, 3:
		return term.EraseAll
	default:
		return term.EraseToEnd
	}
}

func (p *Parser) executeSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	i := 0
	for i < len(params) {
		n := params[i]
		switch {
		case n == 0:
			p.emit(term.TerminalCommand{Kind: term.CmdResetAttributes})
		case n == 1:
			p.emit(setFlag(term.FlagBold))
		case n == 2:
			p.emit(setFlag(term.FlagDim))
		case n == 3:
			p.emit(setFlag(term.FlagItalic))
		case n == 4:
			p.emit(setFlag(term.FlagUnderline))
		case n == 7:
			p.emit(setFlag(term.FlagInverse))
		case n == 8:
			p.emit(setFlag(term.FlagHidden))
		case n == 9:
			p.emit(setFlag(term.FlagStrikethrough))
		case n == 22:
			p.emit(clearFlag(term.FlagBold | term.FlagDim))
		case n == 23:
			p.emit(clearFlag(term.FlagItalic))
		case n == 24:
			p.emit(clearFlag(term.FlagUnderline))
		case n == 27:
			p.emit(clearFlag(term.FlagInverse))
		case n == 28:
			p.emit(clearFlag(term.FlagHidden))
		case n == 29:
			p.emit(clearFlag(term.FlagStrikethrough))
		case n >= 30 && n <= 37:
			p.emit(term.TerminalCommand{Kind: term.CmdSetForeground, Color: term.Indexed(uint8(n - 30))})
		case n == 38:
			c, used, ok := extendedColor(params, i)
			if !ok {
				return
			}
			p.emit(term.TerminalCommand{Kind: term.CmdSetForeground, Color: c})
			i += used
		case n == 39:
			p.emit(term.TerminalCommand{Kind: term.CmdSetForeground, Color: term.DefaultColor()})
		case n >= 40 && n <= 47:
			p.emit(term.TerminalCommand{Kind: term.CmdSetBackground, Color: term.Indexed(uint8(n - 40))})
		case n == 48:
			c, used, ok := extendedColor(params, i)
			if !ok {
				return
			}
			p.emit(term.TerminalCommand{Kind: term.CmdSetBackground, Color: c})
			i += used
		case n == 49:
			p.emit(term.TerminalCommand{Kind: term.CmdSetBackground, Color: term.DefaultColor()})
		case n >= 90 && n <= 97:
			p.emit(term.TerminalCommand{Kind: term.CmdSetForeground, Color: term.Indexed(uint8(n-90) + 8)})
		case n >= 100 && n <= 107:
			p.emit(term.TerminalCommand{Kind: term.CmdSetBackground, Color: term.Indexed(uint8(n-100) + 8)})
		}
		i++
	}
}

// extendedColor parses the "38;5;n" and "38;2;r;g;b" forms (and their
// "48;..." background twins) starting at params[i]=="38"/"48". Per
// SPEC_FULL.md's Open Question, a missing sub-parameter is dropped
// rather than guessed: ok is false and the caller discards the rest of
// the parameter list instead of reading the sub-parameters as SGR codes.
func extendedColor(params []int, i int) (term.Color, int, bool) {
	if i+1 >= len(params) {
		return term.Color{}, 0, false
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) {
			return term.Indexed(uint8(params[i+2])), 2, true
		}
	case 2:
		if i+4 < len(params) {
			return term.RGB(uint8(params[i+2]), uint8(params[i+3]), uint8(params[i+4])), 4, true
		}
	}
	return term.Color{}, 0, false
}

func setFlag(f term.Flags) term.TerminalCommand {
	return term.TerminalCommand{Kind: term.CmdSetFlag, Flag: f}
}

func clearFlag(f term.Flags) term.TerminalCommand {
	return term.TerminalCommand{Kind: term.CmdClearFlag, Flag: f}
}

func (p *Parser) setMode(params []int, private bool, set bool) {
	for _, n := range params {
		if !private {
			continue
		}
		switch n {
		case 1:
			p.appCursorKeys = set
			p.emit(term.TerminalCommand{Kind: term.CmdApplicationCursorKeys, Bool: set})
		case 25:
			p.cursorVisible = set
			p.emit(term.TerminalCommand{Kind: term.CmdCursorVisibility, Bool: set})
		case 47, 1047:
			if set {
				p.emit(term.TerminalCommand{Kind: term.CmdEnterAltScreen})
			} else {
				p.emit(term.TerminalCommand{Kind: term.CmdExitAltScreen})
			}
		case 1049:
			if set {
				p.emit(term.TerminalCommand{Kind: term.CmdSaveCursor})
				p.emit(term.TerminalCommand{Kind: term.CmdEnterAltScreen})
			} else {
				p.emit(term.TerminalCommand{Kind: term.CmdExitAltScreen})
				p.emit(term.TerminalCommand{Kind: term.CmdRestoreCursor})
			}
		}
	}
}

func (p *Parser) stepOSC(b byte) {
	if b == 0x07 || b == 0x1b {
		p.handleOSC(p.oscParams)
		p.oscParams = ""
		p.st = stateGround
		return
	}
	p.oscParams += string(b)
}

func (p *Parser) handleOSC(params string) {
	if !strings.HasPrefix(params, "7;") {
		return
	}
	path := parseOSC7Path(strings.TrimPrefix(params, "7;"))
	if path == "" {
		return
	}
	p.workingDir = path
	p.emit(term.TerminalCommand{Kind: term.CmdOSCWorkingDirectory, Text: path})
}

func parseOSC7Path(value string) string {
	if strings.HasPrefix(value, "file://") {
		u, err := url.Parse(value)
		if err != nil || u.Path == "" {
			return ""
		}
		path, err := url.PathUnescape(u.Path)
		if err != nil {
			return ""
		}
		return path
	}
	if strings.HasPrefix(value, "/") {
		return value
	}
	return ""
}

// parseParams splits a CSI parameter string on ';', dropping a leading
// private-mode indicator and any colon-separated sub-parameters beyond
// the first (per the Open Question, we take the simplest reading
// rather than guess at DECSUPP semantics).
func parseParams(s string) []int {
	s = strings.TrimPrefix(s, "?")
	s = strings.TrimPrefix(s, ">")
	s = strings.TrimPrefix(s, "!")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]int, len(parts))
	for i, part := range parts {
		if idx := strings.IndexByte(part, ':'); idx >= 0 {
			part = part[:idx]
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			n = 0
		}
		out[i] = n
	}
	return out
}

func param(params []int, index, def int) int {
	if index < len(params) && params[index] > 0 {
		return params[index]
	}
	return def
}
