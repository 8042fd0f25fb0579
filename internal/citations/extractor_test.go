package citations_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/trailhead-ai/trailhead/internal/citations"
	"github.com/trailhead-ai/trailhead/internal/config"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

func testConfig() config.CitationConfig {
	return config.CitationConfig{
		Cap:              10,
		DescriptionLimit: 100,
		MinWordLen: map[models.ToolKind]int{
			models.ToolKnowledgeSearch: 3,
			models.ToolWebSearch:       4,
		},
		WeatherWords: config.DefaultWeatherWords,
		WeatherSource: models.SearchHit{
			URL:         "https://open-meteo.com/",
			Title:       "Open-Meteo Weather API",
			Description: "Real-time weather data and forecasts",
		},
	}
}

func extract(t *testing.T, cfg config.CitationConfig, records []models.InvocationRecord, answer string) []models.CitationSpan {
	t.Helper()
	var spans []models.CitationSpan
	citations.NewExtractor(cfg).Extract(context.Background(), records, answer, func(s models.CitationSpan) bool {
		spans = append(spans, s)
		return true
	})
	return spans
}

func knowledgeRecord(seq uint64, hits ...models.SearchHit) models.InvocationRecord {
	return models.InvocationRecord{Seq: seq, Kind: models.ToolKnowledgeSearch, Result: models.ToolResult{Hits: hits}}
}

// ─── Result-set kinds ────────────────────────────────────────

func TestExtract_AnchorsFirstQualifyingTitleWord(t *testing.T) {
	answer := "Boston is famous for its history."
	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{
			Title:       "Boston Common",
			URL:         "https://en.wikipedia.org/wiki/Boston_Common",
			Description: "A public park.",
		}),
	}

	spans := extract(t, testConfig(), records, answer)
	if len(spans) != 1 {
		t.Fatalf("Extract() produced %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.StartOffset != 0 || got.EndOffset != len("Boston") {
		t.Errorf("span = [%d, %d), want [0, %d)", got.StartOffset, got.EndOffset, len("Boston"))
	}
	if !strings.EqualFold(answer[got.StartOffset:got.EndOffset], "Boston") {
		t.Errorf("answer[start:end] = %q, want %q (case-insensitive)", answer[got.StartOffset:got.EndOffset], "Boston")
	}
	if got.URL != "https://en.wikipedia.org/wiki/Boston_Common" {
		t.Errorf("URL = %q", got.URL)
	}
}

func TestExtract_CaseInsensitiveMatch(t *testing.T) {
	answer := "visit BOSTON in the fall"
	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{Title: "boston", URL: "u", Description: "d"}),
	}

	spans := extract(t, testConfig(), records, answer)
	if len(spans) != 1 {
		t.Fatalf("Extract() produced %d spans, want 1", len(spans))
	}
	if spans[0].StartOffset != 6 || spans[0].EndOffset != 12 {
		t.Errorf("span = [%d, %d), want [6, 12)", spans[0].StartOffset, spans[0].EndOffset)
	}
}

func TestExtract_SharedTitleWordReportsIdenticalOffsets(t *testing.T) {
	// Known, documented property: first-occurrence search is reused for
	// every hit, so two hits sharing an anchor word report the same span.
	answer := "Boston has plenty to offer."
	records := []models.InvocationRecord{
		knowledgeRecord(1,
			models.SearchHit{Title: "Boston Common", URL: "u1", Description: "d1"},
			models.SearchHit{Title: "Boston Harbor", URL: "u2", Description: "d2"},
		),
	}

	spans := extract(t, testConfig(), records, answer)
	if len(spans) != 2 {
		t.Fatalf("Extract() produced %d spans, want 2", len(spans))
	}
	if spans[0].StartOffset != spans[1].StartOffset || spans[0].EndOffset != spans[1].EndOffset {
		t.Errorf("offsets differ: [%d,%d) vs [%d,%d)",
			spans[0].StartOffset, spans[0].EndOffset, spans[1].StartOffset, spans[1].EndOffset)
	}
	if spans[0].URL != "u1" || spans[1].URL != "u2" {
		t.Errorf("URLs = %q, %q, want u1, u2", spans[0].URL, spans[1].URL)
	}
}

func TestExtract_ShortTitleWordProducesNothing(t *testing.T) {
	// Kind threshold is len > 3; a one-letter title can never qualify.
	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{Title: "A", URL: "u", Description: "d"}),
	}
	if spans := extract(t, testConfig(), records, "A is a letter and AAAA appears here"); len(spans) != 0 {
		t.Errorf("Extract() produced %d spans, want 0", len(spans))
	}
}

func TestExtract_WebSearchNeedsLongerAnchor(t *testing.T) {
	// "Fish" (len 4) fails the web threshold (>4) but passes knowledge (>3).
	hit := models.SearchHit{Title: "Fish Pier", URL: "u", Description: "d"}
	answer := "Try the fish at the pier."

	web := []models.InvocationRecord{{Seq: 1, Kind: models.ToolWebSearch, Result: models.ToolResult{Hits: []models.SearchHit{hit}}}}
	if spans := extract(t, testConfig(), web, answer); len(spans) != 0 {
		t.Errorf("web search: %d spans, want 0", len(spans))
	}

	knowledge := []models.InvocationRecord{knowledgeRecord(1, hit)}
	spans := extract(t, testConfig(), knowledge, answer)
	if len(spans) != 1 {
		t.Fatalf("knowledge search: %d spans, want 1", len(spans))
	}
	if spans[0].StartOffset != 8 || spans[0].EndOffset != 12 {
		t.Errorf("span = [%d, %d), want [8, 12)", spans[0].StartOffset, spans[0].EndOffset)
	}
}

func TestExtract_AtMostOneSpanPerHit(t *testing.T) {
	// Both "Boston" and "Harbor" qualify; only the first match is used.
	answer := "Boston Harbor at sunset."
	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{Title: "Boston Harbor", URL: "u", Description: "d"}),
	}
	spans := extract(t, testConfig(), records, answer)
	if len(spans) != 1 {
		t.Fatalf("Extract() produced %d spans, want 1", len(spans))
	}
	if spans[0].StartOffset != 0 {
		t.Errorf("StartOffset = %d, want 0 (anchor on first title word)", spans[0].StartOffset)
	}
}

// ─── Cap ─────────────────────────────────────────────────────

func TestExtract_GlobalCap(t *testing.T) {
	// 15 hits all qualify; only the cap's worth are emitted.
	hits := make([]models.SearchHit, 15)
	for i := range hits {
		hits[i] = models.SearchHit{Title: "Boston", URL: "u", Description: "d"}
	}
	records := []models.InvocationRecord{knowledgeRecord(1, hits...)}

	spans := extract(t, testConfig(), records, "Boston")
	if len(spans) != 10 {
		t.Errorf("Extract() produced %d spans, want 10 (cap)", len(spans))
	}
}

func TestExtract_CapStopsAcrossRecords(t *testing.T) {
	cfg := testConfig()
	cfg.Cap = 1
	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{Title: "Boston", URL: "u1", Description: "d"}),
		{Seq: 2, Kind: models.ToolWeatherLookup, Result: models.ToolResult{Content: "sunny"}},
	}
	spans := extract(t, cfg, records, "Boston weather is sunny")
	if len(spans) != 1 {
		t.Fatalf("Extract() produced %d spans, want 1", len(spans))
	}
	if spans[0].URL != "u1" {
		t.Errorf("URL = %q, want u1 (first record wins under cap)", spans[0].URL)
	}
}

// ─── Weather ─────────────────────────────────────────────────

func TestExtract_WeatherAnchorsEarliestVocabularyWord(t *testing.T) {
	answer := "expect sunny and warm weather tomorrow"
	records := []models.InvocationRecord{
		{Seq: 1, Kind: models.ToolWeatherLookup, Result: models.ToolResult{Content: "forecast"}},
	}

	spans := extract(t, testConfig(), records, answer)
	if len(spans) != 1 {
		t.Fatalf("Extract() produced %d spans, want 1", len(spans))
	}
	got := spans[0]
	wantStart := strings.Index(answer, "sunny")
	if got.StartOffset != wantStart || got.EndOffset != wantStart+len("sunny") {
		t.Errorf("span = [%d, %d), want [%d, %d) (anchor %q)",
			got.StartOffset, got.EndOffset, wantStart, wantStart+len("sunny"), "sunny")
	}
	if got.URL != "https://open-meteo.com/" || got.Title != "Open-Meteo Weather API" {
		t.Errorf("source identity = %q / %q", got.URL, got.Title)
	}
}

func TestExtract_WeatherNoVocabularyWordNoSpan(t *testing.T) {
	records := []models.InvocationRecord{
		{Seq: 1, Kind: models.ToolWeatherLookup, Result: models.ToolResult{Content: "x"}},
	}
	if spans := extract(t, testConfig(), records, "nothing relevant here"); len(spans) != 0 {
		t.Errorf("Extract() produced %d spans, want 0", len(spans))
	}
}

func TestExtract_OneSpanPerWeatherRecord(t *testing.T) {
	records := []models.InvocationRecord{
		{Seq: 1, Kind: models.ToolWeatherLookup, Result: models.ToolResult{}},
		{Seq: 2, Kind: models.ToolWeatherLookup, Result: models.ToolResult{}},
	}
	spans := extract(t, testConfig(), records, "warm weather")
	if len(spans) != 2 {
		t.Errorf("Extract() produced %d spans, want 2 (one per record)", len(spans))
	}
}

// ─── Degenerate inputs ───────────────────────────────────────

func TestExtract_EmptyLog(t *testing.T) {
	if spans := extract(t, testConfig(), nil, "any answer at all"); len(spans) != 0 {
		t.Errorf("Extract() produced %d spans for empty log, want 0", len(spans))
	}
}

func TestExtract_ThinkContributesNothing(t *testing.T) {
	records := []models.InvocationRecord{
		{Seq: 1, Kind: models.ToolThink, Result: models.ToolResult{Content: "Boston weather"}},
	}
	if spans := extract(t, testConfig(), records, "Boston weather is sunny"); len(spans) != 0 {
		t.Errorf("Extract() produced %d spans for Think, want 0", len(spans))
	}
}

func TestExtract_EmptyResultSet(t *testing.T) {
	records := []models.InvocationRecord{knowledgeRecord(1)}
	if spans := extract(t, testConfig(), records, "Boston"); len(spans) != 0 {
		t.Errorf("Extract() produced %d spans for empty result set, want 0", len(spans))
	}
}

func TestExtract_OffsetsWithinBounds(t *testing.T) {
	answer := "Boston"
	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{Title: "Boston", URL: "u", Description: "d"}),
	}
	for _, s := range extract(t, testConfig(), records, answer) {
		if s.StartOffset < 0 || s.StartOffset >= s.EndOffset || s.EndOffset > len(answer) {
			t.Errorf("span [%d, %d) out of bounds for len %d", s.StartOffset, s.EndOffset, len(answer))
		}
	}
}

func TestExtract_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{Title: "Boston", URL: "u", Description: "d"}),
	}
	var spans []models.CitationSpan
	citations.NewExtractor(testConfig()).Extract(ctx, records, "Boston", func(s models.CitationSpan) bool {
		spans = append(spans, s)
		return true
	})
	if len(spans) != 0 {
		t.Errorf("Extract() produced %d spans after cancellation, want 0", len(spans))
	}
}

// ─── Description truncation ──────────────────────────────────

func TestExtract_DescriptionTruncation(t *testing.T) {
	tests := []struct {
		name    string
		descLen int
		want    int
		ellipse bool
	}{
		{"long description truncated", 150, 103, true},
		{"exact limit unmodified", 100, 100, false},
		{"short description unmodified", 20, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := strings.Repeat("x", tt.descLen)
			records := []models.InvocationRecord{
				knowledgeRecord(1, models.SearchHit{Title: "Boston", URL: "u", Description: desc}),
			}
			spans := extract(t, testConfig(), records, "Boston")
			if len(spans) != 1 {
				t.Fatalf("Extract() produced %d spans, want 1", len(spans))
			}
			got := spans[0].Description
			if len(got) != tt.want {
				t.Errorf("len(Description) = %d, want %d", len(got), tt.want)
			}
			if tt.ellipse {
				if !strings.HasSuffix(got, "...") || got[:100] != desc[:100] {
					t.Errorf("Description = %q, want first 100 chars + ellipsis", got)
				}
			} else if got != desc {
				t.Errorf("Description = %q, want unmodified %q", got, desc)
			}
		})
	}
}

func TestExtract_DescriptionTruncationCountsRunes(t *testing.T) {
	// The limit lands inside the first multi-byte rune when counted in
	// bytes; truncation must count runes and never split one.
	desc := strings.Repeat("x", 99) + "é" + strings.Repeat("ü", 50)
	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{Title: "Boston", URL: "u", Description: desc}),
	}

	spans := extract(t, testConfig(), records, "Boston")
	if len(spans) != 1 {
		t.Fatalf("Extract() produced %d spans, want 1", len(spans))
	}
	got := spans[0].Description
	if !utf8.ValidString(got) {
		t.Fatalf("Description is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 103 {
		t.Errorf("rune count = %d, want 100 + ellipsis", n)
	}
	if want := strings.Repeat("x", 99) + "é" + "..."; got != want {
		t.Errorf("Description = %q, want %q", got, want)
	}
}

func TestExtract_ZeroThresholdStillCitable(t *testing.T) {
	// A zero length bound means any title word qualifies; the kind must
	// stay ResultSet-citable rather than fall through to nothing.
	cfg := testConfig()
	cfg.MinWordLen[models.ToolKnowledgeSearch] = 0
	answer := "A day out"
	records := []models.InvocationRecord{
		knowledgeRecord(1, models.SearchHit{Title: "A", URL: "u", Description: "d"}),
	}

	spans := extract(t, cfg, records, answer)
	if len(spans) != 1 {
		t.Fatalf("Extract() produced %d spans, want 1", len(spans))
	}
	if spans[0].StartOffset != 0 || spans[0].EndOffset != 1 {
		t.Errorf("span = [%d, %d), want [0, 1)", spans[0].StartOffset, spans[0].EndOffset)
	}
}
