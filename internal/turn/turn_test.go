package turn_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/trailhead-ai/trailhead/internal/agents"
	"github.com/trailhead-ai/trailhead/internal/config"
	"github.com/trailhead-ai/trailhead/internal/runtime"
	"github.com/trailhead-ai/trailhead/internal/turn"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// stubRuntime is a scripted runtime: it writes the given trace lines,
// then returns the scripted answer or error.
type stubRuntime struct {
	trace  []string
	answer string
	usage  models.TokenUsage
	err    error
	panics bool
}

func (s *stubRuntime) Run(_ context.Context, in runtime.TurnInput) (string, models.TokenUsage, error) {
	if s.panics {
		panic("scripted panic")
	}
	if in.Trace != nil {
		for _, line := range s.trace {
			io.WriteString(in.Trace, line)
		}
	}
	return s.answer, s.usage, s.err
}

func newRunner(rt runtime.Runtime) *turn.Runner {
	return turn.NewRunner(rt, config.Load())
}

func collect(ch <-chan models.TurnEvent) []models.TurnEvent {
	var out []models.TurnEvent
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestRun_EventOrder(t *testing.T) {
	rt := &stubRuntime{
		trace:  []string{"[think] planning the answer\n", "[wikipedia] Boston\n"},
		answer: "Boston is a great city to visit.",
		usage:  models.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
	}
	def := agents.Definition{Name: "test", EmitTrajectory: true, EmitCitations: true}

	events := collect(newRunner(rt).Run(context.Background(), def, nil))

	wantTypes := []models.TurnEventType{
		models.EventTrajectory, models.EventTrajectory,
		models.EventAnswer, models.EventDone,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(wantTypes), events)
	}
	for i, ev := range events {
		if ev.Type != wantTypes[i] {
			t.Errorf("events[%d].Type = %q, want %q", i, ev.Type, wantTypes[i])
		}
	}
	if events[0].Step.Index != 1 || events[0].Step.Tool != models.ToolThink {
		t.Errorf("first step = %+v, want index 1, think", events[0].Step)
	}
	if events[1].Step.Index != 2 || events[1].Step.Tool != models.ToolKnowledgeSearch {
		t.Errorf("second step = %+v, want index 2, knowledge_search", events[1].Step)
	}
	if events[2].Answer != rt.answer {
		t.Errorf("answer = %q, want %q", events[2].Answer, rt.answer)
	}
	if events[3].Usage == nil || events[3].Usage.TotalTokens != 30 {
		t.Errorf("done usage = %+v, want total 30", events[3].Usage)
	}
}

func TestRun_FailureEmitsApologyTriple(t *testing.T) {
	rt := &stubRuntime{err: errors.New("model call failed: connection refused")}
	def := agents.Definition{Name: "test", EmitTrajectory: true, EmitCitations: true}

	events := collect(newRunner(rt).Run(context.Background(), def, nil))

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	if events[0].Type != models.EventTrajectory || events[0].Step.RawText != "Error: "+rt.err.Error() {
		t.Errorf("events[0] = %+v, want error trajectory step", events[0])
	}
	if events[1].Type != models.EventAnswer || events[1].Answer != "Sorry, I encountered an error: "+rt.err.Error() {
		t.Errorf("events[1] = %+v, want apology answer", events[1])
	}
	if events[2].Type != models.EventError || events[2].Error != rt.err.Error() {
		t.Errorf("events[2] = %+v, want error marker", events[2])
	}
}

func TestRun_TrajectoryDisabled(t *testing.T) {
	rt := &stubRuntime{
		trace:  []string{"[wikipedia] Boston\n"},
		answer: "done",
	}
	def := agents.Definition{Name: "test"} // neither family enabled

	events := collect(newRunner(rt).Run(context.Background(), def, nil))

	if len(events) != 2 {
		t.Fatalf("got %d events, want answer + done only: %+v", len(events), events)
	}
	if events[0].Type != models.EventAnswer || events[1].Type != models.EventDone {
		t.Errorf("types = %q, %q; want answer, done", events[0].Type, events[1].Type)
	}
}

func TestRun_UnmatchedTraceLinesStillStream(t *testing.T) {
	rt := &stubRuntime{
		trace:  []string{"free-form note\n", "[think] plan\n"},
		answer: "ok",
	}
	def := agents.Definition{Name: "test", EmitTrajectory: true}

	events := collect(newRunner(rt).Run(context.Background(), def, nil))

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4: %+v", len(events), events)
	}
	if events[0].Step.Tool != "" || events[0].Step.RawText != "free-form note" {
		t.Errorf("unmatched step = %+v, want no tool kind", events[0].Step)
	}
	if events[1].Step.Index != 2 {
		t.Errorf("second step index = %d, want 2", events[1].Step.Index)
	}
}

func TestRun_CancellationClosesStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rt := &stubRuntime{
		trace:  []string{"[think] a\n", "[think] b\n", "[think] c\n"},
		answer: "ok",
	}
	def := agents.Definition{Name: "test", EmitTrajectory: true}

	ch := newRunner(rt).Run(ctx, def, nil)
	<-ch // take one event, then walk away
	cancel()

	// The channel must close rather than block forever.
	for range ch {
	}
}

func TestRun_PanicBecomesError(t *testing.T) {
	rt := &stubRuntime{panics: true}
	def := agents.Definition{Name: "test"}

	events := collect(newRunner(rt).Run(context.Background(), def, nil))

	if len(events) == 0 {
		t.Fatal("got no events after panic")
	}
	last := events[len(events)-1]
	if last.Type != models.EventError {
		t.Fatalf("last event = %+v, want error marker", last)
	}
	if want := fmt.Sprintf("internal error: %v", "scripted panic"); last.Error != want {
		t.Errorf("error = %q, want %q", last.Error, want)
	}
}
