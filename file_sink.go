package metricslog

import (
	"io"
	"os"
	"sync"

	"go.uber.org/multierr"
)

// DefaultFilePerm is the permission used when FileSink creates its file.
const DefaultFilePerm os.FileMode = 0o644

// FileSink appends lines to a file. Existing content is preserved; the file
// is created when missing. Every line is handed to the OS in a single write,
// so a failed write does not affect the following ones.
type FileSink struct {
	path string
	perm os.FileMode

	mu sync.Mutex
	f  *os.File
	w  io.Writer // f, unless replaced in tests
}

// NewFileSink returns a sink appending to path. The file is not touched
// until Open.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, perm: DefaultFilePerm}
}

// Path returns the destination file path.
func (s *FileSink) Path() string { return s.path }

// Open opens the file for appending. Opening an already open sink is a no-op.
func (s *FileSink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f != nil {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, s.perm)
	if err != nil {
		return err
	}
	s.f = f
	s.w = f
	return nil
}

// WriteLine appends line and a newline.
func (s *FileSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrSinkClosed
	}
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// Close syncs and closes the file. Closing a closed sink is a no-op.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := multierr.Append(s.f.Sync(), s.f.Close())
	s.f, s.w = nil, nil
	return err
}
