// Package recorder observes tool invocations during a turn.
//
// A Log wraps each of an agent's tools by composition: the wrapper passes
// input, output, and failure through unchanged and, on success, appends an
// InvocationRecord to the turn's append-only log. The log is owned by one
// turn and discarded with it.
package recorder

import (
	"context"
	"sort"
	"sync"

	"github.com/trailhead-ai/trailhead/internal/tools"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Log is the per-turn, append-only record of completed tool invocations.
// Safe for concurrent tool calls: sequence numbers are ticketed when a call
// starts, so Records() reflects true invocation order even when results
// arrive out of order.
type Log struct {
	mu      sync.Mutex
	nextSeq uint64
	records []models.InvocationRecord
}

func NewLog() *Log { return &Log{} }

// Wrap decorates a tool so its successful results are recorded in the log.
// The wrapped tool's contract is unchanged; failures propagate unrecorded.
func (l *Log) Wrap(t tools.Tool) tools.Tool {
	return &tracked{tool: t, log: l}
}

// WrapAll decorates every tool in ts.
func (l *Log) WrapAll(ts []tools.Tool) []tools.Tool {
	out := make([]tools.Tool, len(ts))
	for i, t := range ts {
		out[i] = l.Wrap(t)
	}
	return out
}

// Records returns the invocations completed so far, ordered by sequence
// number. Intended to be read only after the turn's tool-use phase ends.
func (l *Log) Records() []models.InvocationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.InvocationRecord, len(l.records))
	copy(out, l.records)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (l *Log) ticket() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSeq++
	return l.nextSeq
}

func (l *Log) append(rec models.InvocationRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

// tracked is the composition-based decorator around a single tool.
type tracked struct {
	tool tools.Tool
	log  *Log
}

func (t *tracked) Name() string          { return t.tool.Name() }
func (t *tracked) Kind() models.ToolKind { return t.tool.Kind() }
func (t *tracked) Description() string   { return t.tool.Description() }

func (t *tracked) Execute(ctx context.Context, input string) (models.ToolResult, error) {
	seq := t.log.ticket()
	result, err := t.tool.Execute(ctx, input)
	if err != nil {
		return result, err
	}
	t.log.append(models.InvocationRecord{Seq: seq, Kind: t.tool.Kind(), Result: result})
	return result, nil
}
