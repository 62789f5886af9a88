// Package logging provides the application's ambient logger. It wraps
// stdlib log (log.Printf/Fatalf) rather than a structured logging
// library, adding only a component tag and a session-ID prefix for
// correlating PTY sessions in the output.
package logging

import (
	"fmt"
	"log"
	"os"
)

// Logger prefixes every line with a component tag and, once attached
// to a session, that session's ID.
type Logger struct {
	prefix string
}

// New returns a Logger tagged with component, e.g. New("session").
func New(component string) *Logger {
	return &Logger{prefix: component}
}

// WithSession returns a derived Logger that also tags lines with
// sessionID, truncated to its first 8 hex characters to keep lines
// short.
func (l *Logger) WithSession(sessionID string) *Logger {
	id := sessionID
	if len(id) > 8 {
		id = id[:8]
	}
	return &Logger{prefix: fmt.Sprintf("%s session=%s", l.prefix, id)}
}

func (l *Logger) Printf(format string, args ...any) {
	log.Printf("[%s] %s", l.prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Println(args ...any) {
	log.Printf("[%s] %s", l.prefix, fmt.Sprintln(args...))
}

// Fatalf logs then calls os.Exit(1), for startup failure points.
func (l *Logger) Fatalf(format string, args ...any) {
	log.Printf("[%s] %s", l.prefix, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Warnf is a Printf alias kept distinct so call sites document intent
// without pulling in a leveled logging library.
func (l *Logger) Warnf(format string, args ...any) {
	l.Printf(format, args...)
}
