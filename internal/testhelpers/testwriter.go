package testhelpers

import (
	"io"
	"strings"
	"sync/atomic"
	"testing"
)

// Writer forwards log lines to t.Log so that they only show up for failing tests.
type Writer struct {
	t      *testing.T
	closed atomic.Bool
}

// NewWriter returns a Writer that stops accepting writes once t has finished.
//
// A write after that point panics: it means a goroutine such as the HTTP server outlived the test.
func NewWriter(t *testing.T) io.Writer {
	w := &Writer{t: t, closed: atomic.Bool{}}
	t.Cleanup(func() { w.closed.Store(true) })
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.closed.Load() {
		panic("testhelpers: log write after test completion, is the server shut down in t.Cleanup?")
	}
	if line := strings.TrimSuffix(string(p), "\n"); line != "" {
		w.t.Log(line)
	}
	return len(p), nil
}
