package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/trailhead-ai/trailhead/internal/tools"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// DefaultMaxTurns is the maximum number of model/tool loops per turn.
const DefaultMaxTurns = 10

// Chatter is the slice of the LLM client the loop needs.
type Chatter interface {
	Chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, error)
}

// Loop is the managed runtime: a single-threaded cooperative agentic loop.
// Tool calls execute sequentially at the model's request; each executed call
// writes one marker-prefixed line to the trace sink.
type Loop struct {
	llm Chatter
}

func NewLoop(llm Chatter) *Loop {
	return &Loop{llm: llm}
}

// toolCall is a tool invocation requested by the model.
type toolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Run executes the loop until the model answers in plain text, a tool or
// model call fails (the failure aborts the turn unchanged), or MaxTurns is
// reached.
func (l *Loop) Run(ctx context.Context, in TurnInput) (string, models.TokenUsage, error) {
	maxTurns := in.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	byName := make(map[string]tools.Tool, len(in.Tools))
	for _, t := range in.Tools {
		byName[t.Name()] = t
	}

	messages := make([]models.ChatMessage, 0, len(in.Messages)+1)
	if prompt := l.systemPrompt(in); prompt != "" {
		messages = append(messages, models.ChatMessage{Role: "system", Content: prompt})
	}
	messages = append(messages, in.Messages...)

	var usage models.TokenUsage
	lastContent := ""

	for turn := 1; turn <= maxTurns; turn++ {
		resp, err := l.llm.Chat(ctx, messages)
		if err != nil {
			return "", usage, fmt.Errorf("model call failed (loop %d): %w", turn, err)
		}
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens
		usage.TotalTokens += resp.Usage.TotalTokens
		lastContent = resp.Content

		calls := parseToolCalls(resp.Content)
		if len(calls) == 0 {
			log.Debug().Int("loops", turn).Msg("agent loop complete")
			return resp.Content, usage, nil
		}

		messages = append(messages, models.ChatMessage{Role: "assistant", Content: resp.Content})

		for _, tc := range calls {
			tool, ok := byName[tc.Name]
			if !ok {
				// A hallucinated tool name is a model mistake, not an
				// upstream failure: tell the model and keep going.
				messages = append(messages, models.ChatMessage{
					Role:    "tool",
					Content: fmt.Sprintf("[Tool: %s] no such tool", tc.Name),
				})
				continue
			}
			input := callInput(tc.Arguments)
			if in.Trace != nil {
				fmt.Fprintf(in.Trace, "[%s] %s\n", tool.Name(), input)
			}
			result, err := tool.Execute(ctx, input)
			if err != nil {
				return "", usage, fmt.Errorf("tool %s failed: %w", tool.Name(), err)
			}
			messages = append(messages, models.ChatMessage{
				Role:    "tool",
				Content: fmt.Sprintf("[Tool: %s] %s", tool.Name(), toolContent(result)),
			})
		}

		log.Debug().Int("loop", turn).Int("tool_calls", len(calls)).Msg("agent loop continuing")
	}

	log.Warn().Int("max_turns", maxTurns).Msg("agent hit max turns")
	return fmt.Sprintf("[Max turns (%d) reached] %s", maxTurns, lastContent), usage, nil
}

func (l *Loop) systemPrompt(in TurnInput) string {
	prompt := in.Instructions
	if len(in.Tools) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nAvailable tools:\n")
	for _, t := range in.Tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
	}
	b.WriteString("\nTo use a tool, respond with only a JSON block: " +
		`{"tool_calls": [{"name": "tool_name", "arguments": {"input": "..."}}]}` +
		"\nWhen you have enough information, respond with the final answer in plain text.")
	return b.String()
}

// parseToolCalls extracts tool calls from the model response. Supports a
// {"tool_calls": [...]} wrapper or a bare array, optionally inside a fenced
// code block. Anything else is a plain-text answer.
func parseToolCalls(content string) []toolCall {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}
	if content == "" {
		return nil
	}

	var wrapper struct {
		ToolCalls []toolCall `json:"tool_calls"`
	}
	if err := json.Unmarshal([]byte(content), &wrapper); err == nil && len(wrapper.ToolCalls) > 0 {
		return wrapper.ToolCalls
	}

	var calls []toolCall
	if err := json.Unmarshal([]byte(content), &calls); err == nil && len(calls) > 0 && calls[0].Name != "" {
		return calls
	}
	return nil
}

// callInput flattens a tool call's arguments into the single input string
// tools accept, trying the conventional argument names first.
func callInput(args map[string]any) string {
	for _, key := range []string{"input", "query", "location", "thought"} {
		if s, ok := args[key].(string); ok && s != "" {
			return s
		}
	}
	if len(args) == 0 {
		return ""
	}
	raw, _ := json.Marshal(args)
	return string(raw)
}

func toolContent(r models.ToolResult) string {
	if r.Content != "" {
		return r.Content
	}
	raw, _ := json.Marshal(r.Hits)
	return string(raw)
}
