package tools

import (
	"context"

	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Think lets the model record an explicit reasoning step. It performs no I/O
// and produces no citable content; the thought is echoed back so the model
// sees its own reasoning in the next loop iteration.
type Think struct{}

func NewThink() *Think { return &Think{} }

func (t *Think) Name() string          { return "think" }
func (t *Think) Kind() models.ToolKind { return models.ToolThink }

func (t *Think) Description() string {
	return "Record a reasoning step before acting. Input: the thought to think through."
}

func (t *Think) Execute(_ context.Context, input string) (models.ToolResult, error) {
	return models.ToolResult{Content: "Thought: " + input}, nil
}
