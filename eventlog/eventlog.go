// Package eventlog keeps the most recent human readable outcomes shown to
// the user.
package eventlog

import (
	"strings"
	"sync"
)

// DefaultSize is the number of entries a Log renders.
const DefaultSize = 5

// Log is a bounded list of messages, newest first. It is safe for
// concurrent use.
type Log struct {
	mu      sync.Mutex
	size    int
	entries []string
}

func New() *Log {
	return NewWithSize(DefaultSize)
}

// NewWithSize returns a Log holding at most size entries. size < 1 selects
// DefaultSize.
func NewWithSize(size int) *Log {
	if size < 1 {
		size = DefaultSize
	}
	return &Log{size: size}
}

// Push records msg as the newest entry and drops the oldest one once the
// log is full.
func (l *Log) Push(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]string{msg}, l.entries...)
	if len(l.entries) > l.size {
		l.entries = l.entries[:l.size]
	}
}

// Entries returns the retained entries, newest first.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]string, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// String renders the entries newest first, one per line, with surrounding
// whitespace removed.
func (l *Log) String() string {
	return strings.TrimSpace(strings.Join(l.Entries(), "\n"))
}
