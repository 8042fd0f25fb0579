// Package tools implements the tool capabilities agents can invoke:
// Wikipedia search, DuckDuckGo web search, Open-Meteo weather lookup, and a
// Think tool for explicit reasoning steps.
//
// Each provider returns a models.ToolResult: search tools fill an ordered
// result set of {title, url, description} hits; Think and weather lookup are
// unstructured and fill Content only.
package tools

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Tool is a single capability an agent may invoke during a turn.
type Tool interface {
	// Name is the runtime's identifier for the tool, embedded in trajectory
	// trace lines and tool-call JSON.
	Name() string
	Kind() models.ToolKind
	Description() string
	Execute(ctx context.Context, input string) (models.ToolResult, error)
}

// newHTTPClient builds the resty client shared by the provider-backed tools.
func newHTTPClient() *resty.Client {
	c := resty.New()
	c.SetTimeout(15 * time.Second)
	c.SetRetryCount(2)
	c.SetRetryWaitTime(500 * time.Millisecond)
	c.SetHeader("User-Agent", "trailhead-agent-server")
	return c
}

// ForKinds returns the tool instances matching kinds, in the given order.
// Unknown kinds are skipped.
func ForKinds(kinds []models.ToolKind) []Tool {
	all := map[models.ToolKind]func() Tool{
		models.ToolThink:           func() Tool { return NewThink() },
		models.ToolKnowledgeSearch: func() Tool { return NewWikipedia() },
		models.ToolWebSearch:       func() Tool { return NewDuckDuckGo() },
		models.ToolWeatherLookup:   func() Tool { return NewOpenMeteo() },
	}
	out := make([]Tool, 0, len(kinds))
	for _, k := range kinds {
		if mk, ok := all[k]; ok {
			out = append(out, mk())
		}
	}
	return out
}
