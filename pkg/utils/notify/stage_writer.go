package notify

import (
	"fmt"
	"io"
	"sync"
	"unicode"
	"unicode/utf8"
)

// StageSeparatingWriter inserts a blank line before every stage title that
// follows earlier output. A stage title is a write starting with an emoji.
type StageSeparatingWriter struct {
	mu      sync.Mutex
	out     io.Writer
	written bool
}

// NewStageSeparatingWriter wraps out.
func NewStageSeparatingWriter(out io.Writer) *StageSeparatingWriter {
	return &StageSeparatingWriter{out: out}
}

// Write implements io.Writer.
func (w *StageSeparatingWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(data) == 0 {
		return 0, nil
	}

	if w.written && isStageTitle(data) {
		_, err := w.out.Write([]byte{'\n'})
		if err != nil {
			return 0, fmt.Errorf("write stage separator: %w", err)
		}
	}

	n, err := w.out.Write(data)
	if n > 0 {
		w.written = true
	}

	if err != nil {
		return n, fmt.Errorf("write stage output: %w", err)
	}

	return n, nil
}

// Reset makes the next title behave as the first output.
func (w *StageSeparatingWriter) Reset() {
	w.mu.Lock()
	w.written = false
	w.mu.Unlock()
}

func isStageTitle(data []byte) bool {
	first, _ := utf8.DecodeRune(data)

	switch first {
	case utf8.RuneError, '►', '✔', '✗', '⚠', 'ℹ', '⏲', '?':
		return false
	}

	return unicode.Is(unicode.So, first)
}
