// Package session owns one PTY-backed terminal: the parser/grid pair,
// the PTY reader goroutine that feeds them, and the host-level
// responses (DSR, OSC 7) the VT parser itself can only flag, not
// answer, because it has no access to grid state or PTY output.
//
// A dedicated goroutine owns PTY reads and the parser/grid mutation; the
// UI goroutine takes the read lock for Snapshot and AppCursorKeys and
// the write lock only in Resize. PTY writes are not separately
// mutex-guarded here beyond shell.PtySession's own lock, which
// serializes the UI goroutine's key input with the reader goroutine's
// device status replies.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/corvidterm/corvid/grid"
	"github.com/corvidterm/corvid/internal/config"
	"github.com/corvidterm/corvid/internal/logging"
	"github.com/corvidterm/corvid/internal/term"
	"github.com/corvidterm/corvid/internal/vtparse"
	"github.com/corvidterm/corvid/shell"
)

// Session pairs a PTY with the parser/grid that interprets its
// output.
type Session struct {
	ID string

	pty    *shell.PtySession
	parser *vtparse.Parser

	mu   sync.RWMutex
	grid *grid.Grid

	dirty chan struct{}

	workingDir   string
	workingDirMu sync.RWMutex

	log *logging.Logger
}

// New starts a PTY session sized cols x rows and begins reading its
// output in a background goroutine.
func New(cfg *config.Config, cols, rows int) (*Session, error) {
	pty, err := shell.NewPtySession(cfg, uint16(cols), uint16(rows))
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s := &Session{
		ID:     id,
		pty:    pty,
		parser: vtparse.New(),
		grid:   grid.New(cols, rows),
		dirty:  make(chan struct{}, 1),
		log:    logging.New("session").WithSession(id),
	}

	go s.readLoop()

	return s, nil
}

// Dirty returns a channel that receives a value (non-blocking, at
// most one pending) whenever new output has been applied to the
// grid, so the UI goroutine can wake and re-render without polling.
func (s *Session) Dirty() <-chan struct{} {
	return s.dirty
}

func (s *Session) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// readLoop reads PTY output, feeds it to the parser, and applies the
// resulting commands to the grid under the session's write lock.
func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if err != nil || n == 0 {
			s.log.Printf("pty closed: %v", err)
			return
		}

		s.mu.Lock()
		cmds := s.parser.Feed(buf[:n])
		for _, cmd := range cmds {
			s.applyHostCommand(cmd)
		}
		s.mu.Unlock()
		s.markDirty()
	}
}

// applyHostCommand applies cmd to the grid, intercepting the two
// command kinds the parser itself cannot resolve: a device status
// report needs the grid's current cursor position, and an OSC 7
// working-directory update is host bookkeeping rather than grid
// state. Called with s.mu held.
func (s *Session) applyHostCommand(cmd term.TerminalCommand) {
	switch cmd.Kind {
	case term.CmdDeviceStatusReport:
		switch cmd.N {
		case 5:
			_, _ = s.pty.Write([]byte("\x1b[0n"))
		case 6:
			snap := s.grid.Snapshot()
			resp := fmt.Sprintf("\x1b[%d;%dR", snap.CursorRow+1, snap.CursorCol+1)
			_, _ = s.pty.Write([]byte(resp))
		}
	case term.CmdOSCWorkingDirectory:
		s.workingDirMu.Lock()
		s.workingDir = cmd.Text
		s.workingDirMu.Unlock()
	default:
		s.grid.Apply(cmd)
	}
}

// Snapshot returns the current grid contents for rendering. Safe to
// call concurrently with the read loop.
func (s *Session) Snapshot() grid.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Snapshot()
}

// AppCursorKeys reports whether the shell last set DECCKM (application
// cursor-key mode), so the input encoder can pick the matching arrow-key
// sequence form. Safe to call concurrently with the read loop.
func (s *Session) AppCursorKeys() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parser.AppCursorKeys()
}

// WorkingDir returns the last directory reported via OSC 7, or "" if
// none has been reported yet.
func (s *Session) WorkingDir() string {
	s.workingDirMu.RLock()
	defer s.workingDirMu.RUnlock()
	return s.workingDir
}

// Write sends key-encoded bytes to the shell.
func (s *Session) Write(data []byte) error {
	_, err := s.pty.Write(data)
	return err
}

// Resize resizes both the PTY and the grid.
func (s *Session) Resize(cols, rows int) {
	s.mu.Lock()
	s.grid.Resize(cols, rows)
	s.mu.Unlock()
	_ = s.pty.Resize(uint16(cols), uint16(rows))
}

// HasExited reports whether the underlying shell process has exited.
func (s *Session) HasExited() bool {
	return s.pty.HasExited()
}

// Close tears down the PTY.
func (s *Session) Close() error {
	return s.pty.Close()
}
