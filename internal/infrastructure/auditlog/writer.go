package auditlog

import (
	"fmt"
	"os"
	"sync"
)

// Writer appends free-text blocks to a single flat log file. Blocks are
// written whole under a mutex, so concurrent request handlers cannot
// interleave partial lines. The file is opened and closed per append; no
// handle is held across requests and the file is never rotated.
type Writer struct {
	mu   sync.Mutex
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append writes one block to the log. A trailing newline is added when the
// block does not already end with one.
func (w *Writer) Append(block string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if len(block) == 0 || block[len(block)-1] != '\n' {
		block += "\n"
	}
	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// Path returns the log file location.
func (w *Writer) Path() string { return w.path }
