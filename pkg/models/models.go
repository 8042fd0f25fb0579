// Package models defines the shared data model for the Trailhead agent server:
// tool kinds and results, per-turn invocation records, trajectory steps,
// citation spans, turn events, and session types.
//
// Everything here is owned by a single turn unless noted otherwise. Records
// are created once and never mutated afterward; a turn's data is discarded
// when the turn ends.
package models

import "time"

// ── Tools ────────────────────────────────────────────────────

// ToolKind identifies one of the closed set of tool capabilities an agent
// may invoke. Adding a kind requires a matching rule in the citation
// extractor and a marker entry in the trajectory classifier config.
type ToolKind string

const (
	ToolThink           ToolKind = "think"
	ToolKnowledgeSearch ToolKind = "knowledge_search"
	ToolWebSearch       ToolKind = "web_search"
	ToolWeatherLookup   ToolKind = "weather_lookup"
)

// SearchHit is one entry of a search tool's result set.
type SearchHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ToolResult is the outcome of a single tool invocation. Search tools fill
// Hits (an ordered result set); unstructured tools (Think, weather lookup)
// fill Content only and carry no citable result set.
type ToolResult struct {
	Hits    []SearchHit `json:"hits,omitempty"`
	Content string      `json:"content,omitempty"`
}

// ── Turn pipeline ────────────────────────────────────────────

// InvocationRecord captures one completed tool call within a turn.
// Seq is strictly increasing in true invocation order (assigned when the
// call starts, not when its result arrives).
type InvocationRecord struct {
	Seq    uint64     `json:"seq"`
	Kind   ToolKind   `json:"kind"`
	Result ToolResult `json:"result"`
}

// TrajectoryStep is one classified line of the runtime's step trace.
// Index is 1-based over non-blank lines; RawText is the original, untrimmed
// line; Tool is empty when no marker matched.
type TrajectoryStep struct {
	Index   int      `json:"index"`
	RawText string   `json:"message"`
	Tool    ToolKind `json:"tool_name,omitempty"`
}

// CitationSpan anchors a source reference to a half-open character range
// [StartOffset, EndOffset) of the final answer text.
type CitationSpan struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartOffset int    `json:"start_index"`
	EndOffset   int    `json:"end_index"`
}

// ── Turn events ──────────────────────────────────────────────

// TurnEventType discriminates the events streamed to the caller during a
// turn: zero or more trajectory events, the answer, zero or more citation
// events, then a done or error marker.
type TurnEventType string

const (
	EventTrajectory TurnEventType = "trajectory"
	EventAnswer     TurnEventType = "answer"
	EventCitation   TurnEventType = "citation"
	EventError      TurnEventType = "error"
	EventDone       TurnEventType = "done"
)

// TurnEvent is one element of the ordered per-turn event stream. Exactly one
// of Step, Answer, Citation, or Error is set, according to Type.
type TurnEvent struct {
	Type     TurnEventType   `json:"type"`
	Step     *TrajectoryStep `json:"step,omitempty"`
	Answer   string          `json:"answer,omitempty"`
	Citation *CitationSpan   `json:"citation,omitempty"`
	Error    string          `json:"error,omitempty"`
	Usage    *TokenUsage     `json:"usage,omitempty"` // set on done events
}

// ── LLM ──────────────────────────────────────────────────────

// ChatMessage is a single message in an LLM conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a model call or a whole turn.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// ChatResponse is the provider-agnostic result of one LLM call.
type ChatResponse struct {
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	Content   string     `json:"content"`
	Usage     TokenUsage `json:"usage"`
	LatencyMs int64      `json:"latency_ms"`
}

// ── Agents ───────────────────────────────────────────────────

// ToolInfo describes one tool of an agent for UI display.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AgentInfo is the public description of a hosted agent.
type AgentInfo struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Description string     `json:"description"`
	Greeting    string     `json:"user_greeting,omitempty"`
	Tools       []ToolInfo `json:"tools,omitempty"`
}

// ── Sessions ─────────────────────────────────────────────────

// Session is a multi-turn conversation with one agent. History lives in
// memory only; no cross-turn pipeline state (records, steps, citations) is
// ever retained here.
type Session struct {
	ID        string        `json:"id"`
	AgentName string        `json:"agent_name"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	TurnCount int           `json:"turn_count"`
	Usage     TokenUsage    `json:"usage"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
