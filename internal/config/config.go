package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Config holds all configuration for the Trailhead agent server.
type Config struct {
	Port      int
	Version   string
	Model     ModelConfig
	Citations CitationConfig
	Markers   []MarkerRule
	Telemetry TelemetryConfig
}

// ModelConfig selects the LLM driver and model used by the managed runtime.
type ModelConfig struct {
	Driver   string // "ollama" or "openai"
	Endpoint string
	Model    string
	APIKey   string
	MaxTurns int
}

// CitationConfig carries the citation-extraction knobs: per-kind minimum
// anchor-word lengths, the global span cap, description truncation, and the
// weather vocabulary plus its fixed source identity.
type CitationConfig struct {
	Cap              int
	DescriptionLimit int
	MinWordLen       map[models.ToolKind]int
	WeatherWords     []string
	WeatherSource    models.SearchHit
}

// MarkerRule maps a marker substring in a trajectory line to the tool kind
// that produced it. Rules are tested in order; first match wins.
type MarkerRule struct {
	Marker string
	Tool   models.ToolKind
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// DefaultWeatherWords is the ordered vocabulary scanned, first match wins,
// when anchoring a weather citation in the answer text.
var DefaultWeatherWords = []string{
	"weather", "temperature", "warm", "cool", "forecast", "conditions",
	"climate", "rain", "sunny", "cloudy", "wind", "humidity",
}

// DefaultMarkers is the marker table matching the lines the managed runtime
// writes to its trajectory sink. Order matters: earlier rules win.
func DefaultMarkers() []MarkerRule {
	return []MarkerRule{
		{Marker: "[think]", Tool: models.ToolThink},
		{Marker: "[wikipedia]", Tool: models.ToolKnowledgeSearch},
		{Marker: "[open-meteo]", Tool: models.ToolWeatherLookup},
		{Marker: "[duckduckgo]", Tool: models.ToolWebSearch},
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("TRAILHEAD_PORT", 8080),
		Version: envStr("TRAILHEAD_VERSION", "0.2.0"),
		Model: ModelConfig{
			Driver:   envStr("TRAILHEAD_MODEL_DRIVER", "ollama"),
			Endpoint: envStr("TRAILHEAD_MODEL_ENDPOINT", "http://localhost:11434"),
			Model:    envStr("TRAILHEAD_MODEL", "granite3.3:8b"),
			APIKey:   envStr("TRAILHEAD_MODEL_API_KEY", ""),
			MaxTurns: envInt("TRAILHEAD_MAX_TURNS", 10),
		},
		Citations: CitationConfig{
			Cap:              envInt("TRAILHEAD_CITATION_CAP", 10),
			DescriptionLimit: envInt("TRAILHEAD_CITATION_DESC_LIMIT", 100),
			MinWordLen: map[models.ToolKind]int{
				models.ToolKnowledgeSearch: envInt("TRAILHEAD_CITATION_MIN_WORD_KNOWLEDGE", 3),
				models.ToolWebSearch:       envInt("TRAILHEAD_CITATION_MIN_WORD_WEB", 4),
			},
			WeatherWords: envList("TRAILHEAD_WEATHER_WORDS", DefaultWeatherWords),
			WeatherSource: models.SearchHit{
				URL:         envStr("TRAILHEAD_WEATHER_SOURCE_URL", "https://open-meteo.com/"),
				Title:       envStr("TRAILHEAD_WEATHER_SOURCE_TITLE", "Open-Meteo Weather API"),
				Description: envStr("TRAILHEAD_WEATHER_SOURCE_DESC", "Real-time weather data and forecasts"),
			},
		},
		Markers: DefaultMarkers(),
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "trailhead-agent-server"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
