// Package trajectory captures and classifies the step trace an agent
// runtime writes while executing a turn.
//
// Capture is the line sink the runtime writes through; Classifier turns the
// captured lines into tagged TrajectoryStep values using a configurable
// marker table, emitting each step as soon as it is classified.
package trajectory

import (
	"strings"
	"sync"
)

// Capture is a thread-safe io.Writer that collects the runtime's trace
// output line by line. Partial writes are buffered until a newline arrives;
// Lines flushes any trailing partial line.
type Capture struct {
	mu      sync.Mutex
	pending strings.Builder
	lines   []string
}

func NewCapture() *Capture { return &Capture{} }

// Write implements io.Writer. It never fails; the sink must not be able to
// break the runtime it observes.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range p {
		if b == '\n' {
			c.lines = append(c.lines, c.pending.String())
			c.pending.Reset()
			continue
		}
		c.pending.WriteByte(b)
	}
	return len(p), nil
}

// Lines returns all captured lines in write order, including a trailing
// unterminated line if one exists.
func (c *Capture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	if c.pending.Len() > 0 {
		out = append(out, c.pending.String())
	}
	return out
}
