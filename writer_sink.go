package metricslog

import (
	"io"
	"sync"
)

// WriterSink writes lines to an io.Writer such as os.Stdout.
// Open and Close do nothing; the writer's lifetime belongs to the caller.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Open does nothing.
func (s *WriterSink) Open() error { return nil }

// WriteLine writes line and a newline to the underlying writer.
func (s *WriterSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// Close does nothing; the writer is not closed.
func (s *WriterSink) Close() error { return nil }
