package tools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/trailhead-ai/trailhead/pkg/models"
)

const (
	openMeteoGeocodeAPI  = "https://geocoding-api.open-meteo.com/v1/search"
	openMeteoForecastAPI = "https://api.open-meteo.com/v1/forecast"
)

// OpenMeteo looks up current weather for a location via the Open-Meteo
// geocoding + forecast APIs. Its result is unstructured text; the citation
// extractor attributes it to a fixed source identity instead of a result set.
type OpenMeteo struct {
	client      *resty.Client
	geocodeURL  string
	forecastURL string
}

func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{
		client:      newHTTPClient(),
		geocodeURL:  openMeteoGeocodeAPI,
		forecastURL: openMeteoForecastAPI,
	}
}

func (o *OpenMeteo) Name() string          { return "open-meteo" }
func (o *OpenMeteo) Kind() models.ToolKind { return models.ToolWeatherLookup }

func (o *OpenMeteo) Description() string {
	return "Get current weather conditions and a short forecast for a location. Input: the location name."
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (o *OpenMeteo) Execute(ctx context.Context, input string) (models.ToolResult, error) {
	var geo geocodeResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"name": input, "count": "1"}).
		SetResult(&geo).
		Get(o.geocodeURL)
	if err != nil {
		return models.ToolResult{}, fmt.Errorf("open-meteo: geocode failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.ToolResult{}, fmt.Errorf("open-meteo: geocode status %d", resp.StatusCode())
	}
	if len(geo.Results) == 0 {
		return models.ToolResult{Content: fmt.Sprintf("No location found for %q.", input)}, nil
	}
	loc := geo.Results[0]

	var fc forecastResponse
	resp, err = o.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":        fmt.Sprintf("%.4f", loc.Latitude),
			"longitude":       fmt.Sprintf("%.4f", loc.Longitude),
			"current_weather": "true",
			"daily":           "temperature_2m_max,temperature_2m_min",
			"timezone":        "auto",
		}).
		SetResult(&fc).
		Get(o.forecastURL)
	if err != nil {
		return models.ToolResult{}, fmt.Errorf("open-meteo: forecast failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.ToolResult{}, fmt.Errorf("open-meteo: forecast status %d", resp.StatusCode())
	}

	summary := fmt.Sprintf("Current weather in %s, %s: %.1f°C, %s, wind %.0f km/h.",
		loc.Name, loc.Country,
		fc.CurrentWeather.Temperature,
		describeWeatherCode(fc.CurrentWeather.WeatherCode),
		fc.CurrentWeather.WindSpeed)
	if len(fc.Daily.TemperatureMax) > 0 && len(fc.Daily.TemperatureMin) > 0 {
		summary += fmt.Sprintf(" Today: %.1f°C to %.1f°C.",
			fc.Daily.TemperatureMin[0], fc.Daily.TemperatureMax[0])
	}
	return models.ToolResult{Content: summary}, nil
}

// describeWeatherCode maps WMO weather interpretation codes to short text.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "foggy"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	default:
		return "thunderstorm"
	}
}
