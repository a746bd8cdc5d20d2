package testhelpers

import (
	"io"
	"strings"
	"sync/atomic"
	"testing"
)

// Writer forwards writes to t.Log so that logs only show up for failing tests.
type Writer struct {
	t    *testing.T
	done atomic.Bool
}

// NewWriter creates a Writer bound to t. Writing after the test has finished panics, which surfaces servers and
// goroutines that outlive their test.
func NewWriter(t *testing.T) io.Writer {
	w := &Writer{t: t}
	t.Cleanup(func() {
		w.done.Store(true)
	})
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.done.Load() {
		panic("testwriter: write after test completion, is something still running after t.Cleanup?")
	}
	if output := strings.TrimRight(string(p), "\n"); output != "" {
		w.t.Log(output)
	}
	return len(p), nil
}
