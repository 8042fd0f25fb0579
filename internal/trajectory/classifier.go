package trajectory

import (
	"context"
	"strings"

	"github.com/trailhead-ai/trailhead/internal/config"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Classifier tags raw trace lines with the tool kind that produced them.
// The marker table is data, not code: each rule pairs a substring the
// runtime embeds in its trace lines with a tool kind, and rules are tested
// in configured order with first match winning.
type Classifier struct {
	rules []config.MarkerRule
}

func NewClassifier(rules []config.MarkerRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify walks lines in order and emits one TrajectoryStep per non-blank
// line, as soon as it is classified. Blank lines (after trimming) are
// skipped and do not consume an index; indices are 1-based over the emitted
// steps. A line matching no marker is emitted untagged; that is expected,
// not an error, so Classify never fails.
//
// Emission stops when emit returns false or ctx is cancelled; partial output
// is valid and final.
func (c *Classifier) Classify(ctx context.Context, lines []string, emit func(models.TrajectoryStep) bool) {
	index := 0
	for _, line := range lines {
		if ctx.Err() != nil {
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		index++
		step := models.TrajectoryStep{
			Index:   index,
			RawText: line,
			Tool:    c.match(line),
		}
		if !emit(step) {
			return
		}
	}
}

func (c *Classifier) match(line string) models.ToolKind {
	for _, r := range c.rules {
		if strings.Contains(line, r.Marker) {
			return r.Tool
		}
	}
	return ""
}
