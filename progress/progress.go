package progress

import (
	"fmt"
	"io"
	"os"
)

// Indicator receives progress notifications while a multi-file read is
// underway. Implementations are driven from a single goroutine.
type Indicator interface {
	// Start announces a new activity with the expected total number of steps.
	// A total of 0 means the step count is unknown.
	Start(name string, total int)

	// Advance reports that n more steps completed.
	Advance(n int)

	// Finish ends the current activity with an optional message.
	Finish(message string)
}

// NopIndicator discards all notifications.
type NopIndicator struct{}

func (NopIndicator) Start(string, int) {}
func (NopIndicator) Advance(int)       {}
func (NopIndicator) Finish(string)     {}

// StdoutIndicator writes a single-line progress display, rewriting the line
// in place as steps complete.
type StdoutIndicator struct {
	// Out is the destination writer. Nil means os.Stdout.
	Out io.Writer

	name  string
	total int
	done  int
}

func (s *StdoutIndicator) writer() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

// Start begins a new progress line.
func (s *StdoutIndicator) Start(name string, total int) {
	s.name = name
	s.total = total
	s.done = 0
	fmt.Fprintf(s.writer(), "%s: ", name)
}

// Advance moves the progress line forward by n steps.
func (s *StdoutIndicator) Advance(n int) {
	s.done += n
	if s.total > 0 {
		fmt.Fprintf(s.writer(), "\r%s: %d/%d", s.name, s.done, s.total)
	} else {
		fmt.Fprintf(s.writer(), "\r%s: %d", s.name, s.done)
	}
}

// Finish terminates the progress line.
func (s *StdoutIndicator) Finish(message string) {
	if message != "" {
		fmt.Fprintf(s.writer(), "\r%s: %s\n", s.name, message)
		return
	}
	fmt.Fprintln(s.writer())
}
