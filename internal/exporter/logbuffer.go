package exporter

import "sync"

// LogBuffer retains the most recent engine log lines for a run. Engine
// events arrive asynchronously; the buffer absorbs them without
// blocking the orchestrator.
type LogBuffer struct {
	mu    sync.Mutex
	max   int
	lines []string
}

// NewLogBuffer creates a buffer keeping at most max lines
func NewLogBuffer(max int) *LogBuffer {
	if max <= 0 {
		max = 10
	}
	return &LogBuffer{max: max}
}

// Append records a line, discarding the oldest once full
func (b *LogBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

// Tail returns a copy of the retained lines, oldest first
func (b *LogBuffer) Tail() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Clear drops all retained lines so the next run starts clean
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
