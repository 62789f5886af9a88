package term

// NamedKey enumerates the non-character keys the encoder understands.
type NamedKey uint8

const (
	KeyNone NamedKey = iota
	KeyEnter
	KeyTab
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Modifiers is the set of modifier keys held during a key event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

// KeyEvent describes a single key press: either a printable character
// or a named key, plus the modifiers held.
type KeyEvent struct {
	Char      rune // valid iff Named == KeyNone
	Named     NamedKey
	Modifiers Modifiers
}
