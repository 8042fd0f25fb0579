// Package turn orchestrates one request/response cycle of an agent: it owns
// the per-turn invocation log and trace capture, runs the runtime, and then
// streams the ordered event sequence (trajectory steps, the answer,
// citation spans, a done or error marker) to the caller.
//
// All per-turn state is created here and discarded when the turn ends;
// nothing is shared across turns.
package turn

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/trailhead-ai/trailhead/internal/agents"
	"github.com/trailhead-ai/trailhead/internal/citations"
	"github.com/trailhead-ai/trailhead/internal/config"
	"github.com/trailhead-ai/trailhead/internal/recorder"
	"github.com/trailhead-ai/trailhead/internal/runtime"
	"github.com/trailhead-ai/trailhead/internal/tools"
	"github.com/trailhead-ai/trailhead/internal/trajectory"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Runner executes turns for any of the hosted agents.
type Runner struct {
	rt  runtime.Runtime
	cfg *config.Config
}

func NewRunner(rt runtime.Runtime, cfg *config.Config) *Runner {
	return &Runner{rt: rt, cfg: cfg}
}

// Run executes one turn and returns its event stream. The channel is closed
// when the turn completes, errors, or ctx is cancelled; the consumer must
// drain it. Cancellation stops further emission immediately; output up to
// that point is valid and final.
func (r *Runner) Run(ctx context.Context, def agents.Definition, history []models.ChatMessage) <-chan models.TurnEvent {
	ch := make(chan models.TurnEvent)
	go func() {
		defer close(ch)
		defer func() {
			if p := recover(); p != nil {
				log.Error().Str("agent", def.Name).Interface("panic", p).Msg("turn panicked")
				r.fail(ctx, ch, fmt.Errorf("internal error: %v", p))
			}
		}()
		r.run(ctx, def, history, ch)
	}()
	return ch
}

// emit delivers one event, returning false once the caller is gone.
func emit(ctx context.Context, ch chan<- models.TurnEvent, ev models.TurnEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- ev:
		return true
	}
}

func (r *Runner) run(ctx context.Context, def agents.Definition, history []models.ChatMessage, ch chan<- models.TurnEvent) {
	invLog := recorder.NewLog()
	capture := trajectory.NewCapture()

	answer, usage, err := r.rt.Run(ctx, runtime.TurnInput{
		Instructions: def.Instructions,
		Messages:     history,
		Tools:        invLog.WrapAll(tools.ForKinds(def.Tools)),
		Trace:        capture,
		MaxTurns:     r.cfg.Model.MaxTurns,
	})
	if err != nil {
		log.Warn().Str("agent", def.Name).Err(err).Msg("turn failed")
		r.fail(ctx, ch, err)
		return
	}

	// Trajectory events first, each as soon as it is classified.
	if def.EmitTrajectory {
		classifier := trajectory.NewClassifier(r.cfg.Markers)
		classifier.Classify(ctx, capture.Lines(), func(step models.TrajectoryStep) bool {
			return emit(ctx, ch, models.TurnEvent{Type: models.EventTrajectory, Step: &step})
		})
		if ctx.Err() != nil {
			return
		}
	}

	// Then the answer.
	if !emit(ctx, ch, models.TurnEvent{Type: models.EventAnswer, Answer: answer}) {
		return
	}

	// Then citations derived from the now-complete invocation log.
	if def.EmitCitations {
		extractor := citations.NewExtractor(r.cfg.Citations)
		extractor.Extract(ctx, invLog.Records(), answer, func(span models.CitationSpan) bool {
			return emit(ctx, ch, models.TurnEvent{Type: models.EventCitation, Citation: &span})
		})
		if ctx.Err() != nil {
			return
		}
	}

	emit(ctx, ch, models.TurnEvent{Type: models.EventDone, Usage: &usage})
}

// fail converts an upstream failure into the caller-visible triple the UI
// expects: an error trajectory event, an apology answer, then the error
// marker. No retry.
func (r *Runner) fail(ctx context.Context, ch chan<- models.TurnEvent, err error) {
	step := models.TrajectoryStep{RawText: "Error: " + err.Error()}
	if !emit(ctx, ch, models.TurnEvent{Type: models.EventTrajectory, Step: &step}) {
		return
	}
	apology := "Sorry, I encountered an error: " + err.Error()
	if !emit(ctx, ch, models.TurnEvent{Type: models.EventAnswer, Answer: apology}) {
		return
	}
	emit(ctx, ch, models.TurnEvent{Type: models.EventError, Error: err.Error()})
}
