package logger

import (
	"strings"
	"sync"
)

// Ring is an io.Writer that keeps the most recent log lines in memory.
// The console polls it from its update loop to fill the log panel, so no
// message is ever pushed into the running program from a log call.
type Ring struct {
	mu      sync.Mutex
	lines   []string
	max     int
	partial string
	written uint64
}

func NewRing(max int) *Ring {
	if max < 1 {
		max = 1
	}
	return &Ring{max: max}
}

func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := r.partial + string(p)
	parts := strings.Split(text, "\n")
	r.partial = parts[len(parts)-1]
	for _, line := range parts[:len(parts)-1] {
		r.lines = append(r.lines, line)
		r.written++
	}
	if over := len(r.lines) - r.max; over > 0 {
		r.lines = append(r.lines[:0:0], r.lines[over:]...)
	}
	return len(p), nil
}

// Lines returns a copy of the retained lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Written is the total number of complete lines ever written. Callers use
// it to detect new output cheaply.
func (r *Ring) Written() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}
