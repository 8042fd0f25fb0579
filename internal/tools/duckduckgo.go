package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/trailhead-ai/trailhead/pkg/models"
)

const duckduckgoAPI = "https://api.duckduckgo.com/"

// DuckDuckGo queries the DuckDuckGo Instant Answer API for current web
// results (restaurants, events, real-time information).
type DuckDuckGo struct {
	client   *resty.Client
	endpoint string
	limit    int
}

func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{client: newHTTPClient(), endpoint: duckduckgoAPI, limit: 5}
}

func (d *DuckDuckGo) Name() string          { return "duckduckgo" }
func (d *DuckDuckGo) Kind() models.ToolKind { return models.ToolWebSearch }

func (d *DuckDuckGo) Description() string {
	return "Search the web for current information such as restaurants, hotels, and events. Input: the search query."
}

type ddgResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Heading       string `json:"Heading"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (d *DuckDuckGo) Execute(ctx context.Context, input string) (models.ToolResult, error) {
	var out ddgResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":       input,
			"format":  "json",
			"no_html": "1",
		}).
		SetResult(&out).
		Get(d.endpoint)
	if err != nil {
		return models.ToolResult{}, fmt.Errorf("duckduckgo: request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.ToolResult{}, fmt.Errorf("duckduckgo: status %d", resp.StatusCode())
	}

	var hits []models.SearchHit
	if out.Heading != "" && out.AbstractURL != "" {
		hits = append(hits, models.SearchHit{
			Title:       out.Heading,
			URL:         out.AbstractURL,
			Description: out.AbstractText,
		})
	}
	for _, t := range out.RelatedTopics {
		if len(hits) >= d.limit {
			break
		}
		if t.FirstURL == "" || t.Text == "" {
			continue
		}
		hits = append(hits, models.SearchHit{
			Title:       topicTitle(t.Text),
			URL:         t.FirstURL,
			Description: t.Text,
		})
	}
	return models.ToolResult{Hits: hits, Content: renderHits(hits)}, nil
}

// topicTitle takes the leading clause of a related-topic text as the title.
// The API returns "Name - description" strings without a separate title field.
func topicTitle(text string) string {
	if i := strings.Index(text, " - "); i > 0 {
		return text[:i]
	}
	return text
}
