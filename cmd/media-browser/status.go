package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// statusLine writes status updates to a stream. On a terminal the line is
// rewritten in place; otherwise each update is its own line.
type statusLine struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	dirty       bool
}

func newStatusLine(f *os.File) *statusLine {
	return &statusLine{out: f, interactive: term.IsTerminal(int(f.Fd()))}
}

func (s *statusLine) Update(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interactive {
		fmt.Fprintf(s.out, "\r\033[K%s", text)
		s.dirty = true
		return
	}
	fmt.Fprintln(s.out, text)
}

// Done ends an in-place line.
func (s *statusLine) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		fmt.Fprintln(s.out)
		s.dirty = false
	}
}
