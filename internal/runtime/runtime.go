// Package runtime drives the agentic loop for a turn: prompt the model,
// execute requested tools, feed results back, repeat until a text answer or
// the turn bound is hit.
//
// The turn pipeline treats the runtime as an external collaborator: it only
// consumes the runtime's outputs (the final answer, the tool results observed
// by the recorder, and the trace lines written to the sink).
package runtime

import (
	"context"
	"io"

	"github.com/trailhead-ai/trailhead/internal/tools"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// TurnInput is everything a runtime needs to execute one turn.
type TurnInput struct {
	// Instructions is the agent's system prompt.
	Instructions string
	// Messages is the conversation history, ending with the user message.
	Messages []models.ChatMessage
	// Tools are the capabilities available this turn, already wrapped by the
	// invocation recorder.
	Tools []tools.Tool
	// Trace receives one line per executed step; nil disables tracing.
	Trace io.Writer
	// MaxTurns bounds the model/tool loop; <=0 uses the runtime default.
	MaxTurns int
}

// Runtime executes a turn and returns the final answer text. The caller
// never calls back into the runtime; annotation happens afterwards over the
// recorder log and the trace sink.
type Runtime interface {
	Run(ctx context.Context, in TurnInput) (answer string, usage models.TokenUsage, err error)
}
