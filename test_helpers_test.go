package metricslog

import (
	"errors"
	"sync"
)

// memSink records lines in memory. Test-only.
type memSink struct {
	mu       sync.Mutex
	lines    []string
	opened   int
	closed   int
	openErr  error
	writeErr error
	panicMsg string
}

func (s *memSink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.opened++
	return nil
}

func (s *memSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	s.lines = append(s.lines, line)
	return s.writeErr
}

func (s *memSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *memSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *memSink) counts() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed
}

var errBoom = errors.New("boom")
