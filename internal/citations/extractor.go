// Package citations derives inline citations for a turn's answer text from
// the turn's tool invocation log.
//
// The matching rule is a deliberate cheap heuristic, not NLP: a citation is
// anchored at the first case-insensitive occurrence in the answer of the
// first sufficiently long word of a search hit's title. It is deterministic
// and favors precision by length; broader web search requires longer anchor
// words than knowledge search to avoid spurious matches.
package citations

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/trailhead-ai/trailhead/internal/config"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Extractor scans invocation records in sequence order and emits an ordered,
// capped series of citation spans over the final answer text. It never
// errors: records without citable content simply yield no spans.
type Extractor struct {
	cfg config.CitationConfig
}

func NewExtractor(cfg config.CitationConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract emits citation spans for the given records and answer, stopping as
// soon as the global cap is reached, emit returns false, or ctx is
// cancelled, even mid-scan. The answer is never mutated; offsets are
// half-open [start, end) ranges into it.
//
// Anchor offsets always point at the first occurrence of the anchor word in
// the whole answer, so two hits sharing a title word report the same span.
func (e *Extractor) Extract(ctx context.Context, records []models.InvocationRecord, answer string, emit func(models.CitationSpan) bool) {
	if e.cfg.Cap <= 0 {
		return
	}
	lowerAnswer := strings.ToLower(answer)
	emitted := 0
	bounded := func(span models.CitationSpan) bool {
		if !emit(span) {
			return false
		}
		emitted++
		return emitted < e.cfg.Cap
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return
		}
		// Result-set kinds are the ones with a configured length bound;
		// a bound of zero still means "citable, any word length".
		var more bool
		if _, ok := e.cfg.MinWordLen[rec.Kind]; ok {
			more = e.citeHits(rec, lowerAnswer, bounded)
		} else if rec.Kind == models.ToolWeatherLookup {
			more = e.citeWeather(lowerAnswer, bounded)
		} else {
			// Unstructured kinds (Think) contribute no citations.
			more = true
		}
		if !more {
			return
		}
	}
}

// citeHits emits at most one span per search hit: the first title word that
// exceeds the kind's minimum length and occurs in the answer. Returns false
// when extraction must stop.
func (e *Extractor) citeHits(rec models.InvocationRecord, lowerAnswer string, emit func(models.CitationSpan) bool) bool {
	minLen := e.cfg.MinWordLen[rec.Kind]
	for _, hit := range rec.Result.Hits {
		for _, word := range strings.Fields(hit.Title) {
			if len(word) <= minLen {
				continue
			}
			start := strings.Index(lowerAnswer, strings.ToLower(word))
			if start < 0 {
				continue
			}
			span := models.CitationSpan{
				URL:         hit.URL,
				Title:       hit.Title,
				Description: truncate(hit.Description, e.cfg.DescriptionLimit),
				StartOffset: start,
				EndOffset:   start + len(word),
			}
			if !emit(span) {
				return false
			}
			break // at most one span per hit
		}
	}
	return true
}

// citeWeather emits at most one span pointing at the fixed weather source,
// anchored at the vocabulary word that occurs earliest in the answer so the
// citation lands on the reader's first weather mention. Vocabulary order
// breaks ties.
func (e *Extractor) citeWeather(lowerAnswer string, emit func(models.CitationSpan) bool) bool {
	best, bestStart := "", -1
	for _, word := range e.cfg.WeatherWords {
		start := strings.Index(lowerAnswer, strings.ToLower(word))
		if start < 0 {
			continue
		}
		if bestStart < 0 || start < bestStart {
			best, bestStart = word, start
		}
	}
	if bestStart < 0 {
		return true
	}
	src := e.cfg.WeatherSource
	return emit(models.CitationSpan{
		URL:         src.URL,
		Title:       src.Title,
		Description: truncate(src.Description, e.cfg.DescriptionLimit),
		StartOffset: bestStart,
		EndOffset:   bestStart + len(best),
	})
}

// truncate shortens s to limit characters plus an ellipsis marker. A string
// of exactly limit characters passes through unmodified. The limit counts
// runes, not bytes; descriptions from the search providers carry multi-byte
// text and the cut must never split a rune.
func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
