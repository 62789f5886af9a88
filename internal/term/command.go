package term

// CommandKind discriminates the TerminalCommand sum type.
type CommandKind uint8

const (
	CmdPrint CommandKind = iota
	CmdNewline
	CmdCarriageReturn
	CmdBackspace
	CmdTab
	CmdBell
	CmdCursorUp
	CmdCursorDown
	CmdCursorForward
	CmdCursorBack
	CmdCursorPosition
	CmdEraseInLine
	CmdEraseInDisplay
	CmdSetForeground
	CmdSetBackground
	CmdSetFlag
	CmdClearFlag
	CmdResetAttributes

	// Additive command kinds covering scroll regions, cursor save/restore,
	// and line/char insert-delete (see SPEC_FULL.md §4).
	CmdScrollUp
	CmdScrollDown
	CmdSetScrollRegion
	CmdSaveCursor
	CmdRestoreCursor
	CmdInsertLines
	CmdDeleteLines
	CmdInsertChars
	CmdDeleteChars
	CmdEraseChars
	CmdRepeatLastChar
	CmdEnterAltScreen
	CmdExitAltScreen
	CmdCursorVisibility
	CmdApplicationCursorKeys
	CmdDeviceStatusReport
	CmdOSCWorkingDirectory
)

// TerminalCommand is the ordered unit of work the VT parser emits and
// the grid applies. Only the fields relevant to Kind are meaningful.
type TerminalCommand struct {
	Kind CommandKind

	Char   rune   // CmdPrint
	N      int    // generic count / mode parameter
	Row    int    // CmdCursorPosition, CmdSetScrollRegion (top)
	Col    int    // CmdCursorPosition
	Bottom int    // CmdSetScrollRegion
	Color  Color  // CmdSetForeground, CmdSetBackground
	Flag   Flags  // CmdSetFlag, CmdClearFlag
	Bool   bool   // CmdCursorVisibility, CmdApplicationCursorKeys
	Text   string // CmdOSCWorkingDirectory
}

// Erase mode constants shared by EraseInLine/EraseInDisplay.
const (
	EraseToEnd = iota
	EraseToStart
	EraseAll
)
