package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/trailhead-ai/trailhead/pkg/models"
)

const wikipediaAPI = "https://en.wikipedia.org/w/api.php"

// Wikipedia searches Wikipedia articles via the MediaWiki search API.
type Wikipedia struct {
	client   *resty.Client
	endpoint string
	limit    int
}

func NewWikipedia() *Wikipedia {
	return &Wikipedia{client: newHTTPClient(), endpoint: wikipediaAPI, limit: 5}
}

func (w *Wikipedia) Name() string          { return "wikipedia" }
func (w *Wikipedia) Kind() models.ToolKind { return models.ToolKnowledgeSearch }

func (w *Wikipedia) Description() string {
	return "Search Wikipedia for background information about places, history, and culture. Input: the search query."
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

func (w *Wikipedia) Execute(ctx context.Context, input string) (models.ToolResult, error) {
	var out wikiSearchResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":   "query",
			"list":     "search",
			"srsearch": input,
			"srlimit":  fmt.Sprintf("%d", w.limit),
			"format":   "json",
		}).
		SetResult(&out).
		Get(w.endpoint)
	if err != nil {
		return models.ToolResult{}, fmt.Errorf("wikipedia: request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.ToolResult{}, fmt.Errorf("wikipedia: status %d", resp.StatusCode())
	}

	hits := make([]models.SearchHit, 0, len(out.Query.Search))
	for _, s := range out.Query.Search {
		hits = append(hits, models.SearchHit{
			Title:       s.Title,
			URL:         "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(s.Title, " ", "_")),
			Description: stripMarkup(s.Snippet),
		})
	}
	return models.ToolResult{Hits: hits, Content: renderHits(hits)}, nil
}

var markupRe = regexp.MustCompile(`<[^>]+>`)

// stripMarkup removes the <span class="searchmatch"> highlighting the search
// API embeds in snippets.
func stripMarkup(s string) string {
	return strings.TrimSpace(markupRe.ReplaceAllString(s, ""))
}

// renderHits formats a result set as the text the LLM sees as tool output.
func renderHits(hits []models.SearchHit) string {
	if len(hits) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. %s - %s (%s)\n", i+1, h.Title, h.Description, h.URL)
	}
	return b.String()
}
