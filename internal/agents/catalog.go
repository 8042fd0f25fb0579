// Package agents defines the hosted agent catalog. The four agents share
// one turn pipeline and differ only in tools, instructions, and which event
// families (trajectory, citations) they stream to the UI.
package agents

import "github.com/trailhead-ai/trailhead/pkg/models"

// Definition is one hosted agent: UI metadata plus its pipeline shape.
type Definition struct {
	Name           string
	DisplayName    string
	Description    string
	Greeting       string
	Instructions   string
	Tools          []models.ToolKind
	EmitTrajectory bool
	EmitCitations  bool
}

// toolInfo is the UI-facing display metadata per tool kind.
var toolInfo = map[models.ToolKind]models.ToolInfo{
	models.ToolThink: {
		Name:        "Think",
		Description: "Perform reasoning, analysis, and structured thought processing.",
	},
	models.ToolKnowledgeSearch: {
		Name:        "Wikipedia",
		Description: "Search comprehensive information about destinations, history, culture, and general knowledge.",
	},
	models.ToolWeatherLookup: {
		Name:        "Weather",
		Description: "Get current weather conditions and forecasts by location.",
	},
	models.ToolWebSearch: {
		Name:        "DuckDuckGo",
		Description: "Search the web for current restaurants, hotels, events, and real-time information.",
	},
}

// Info renders the definition as its public description.
func (d Definition) Info() models.AgentInfo {
	info := models.AgentInfo{
		Name:        d.Name,
		DisplayName: d.DisplayName,
		Description: d.Description,
		Greeting:    d.Greeting,
	}
	for _, k := range d.Tools {
		if ti, ok := toolInfo[k]; ok {
			info.Tools = append(info.Tools, ti)
		}
	}
	return info
}

// Catalog returns the built-in agents in display order.
func Catalog() []Definition {
	return []Definition{
		{
			Name:        "chat_agent",
			DisplayName: "Chat Agent",
			Description: "General purpose chat agent with research, weather, search, and reasoning capabilities.",
			Greeting:    "Hello! I'm your Chat Agent - ready to help with any questions or tasks. What can I assist you with today?",
			Instructions: "You are a helpful general-purpose assistant. Think before acting, use Wikipedia for " +
				"background knowledge, the weather tool for current conditions, and web search for up-to-date information.",
			Tools: []models.ToolKind{
				models.ToolThink, models.ToolKnowledgeSearch,
				models.ToolWeatherLookup, models.ToolWebSearch,
			},
			EmitTrajectory: true,
			EmitCitations:  true,
		},
		{
			Name:        "trajectory_agent",
			DisplayName: "Trajectory Agent",
			Description: "Demonstrates step-by-step trajectory streaming while answering questions.",
			Greeting:    "Hi! I can search Wikipedia, get weather data, and think through problems. What would you like to know?",
			Instructions: "You must use tools to gather current information before answering. Think first, " +
				"then use Wikipedia or the weather tool as needed.",
			Tools: []models.ToolKind{
				models.ToolThink, models.ToolKnowledgeSearch, models.ToolWeatherLookup,
			},
			EmitTrajectory: true,
		},
		{
			Name:        "citation_agent",
			DisplayName: "Boston Guide",
			Description: "Boston travel recommendations with inline citations back to their sources.",
			Greeting:    "Looking for things to do in Boston? Ask away!",
			Instructions: "You must use tools to get current information. Use Wikipedia for Boston info, the " +
				"weather tool for conditions, and web search for current restaurant recommendations.",
			Tools: []models.ToolKind{
				models.ToolThink, models.ToolKnowledgeSearch,
				models.ToolWeatherLookup, models.ToolWebSearch,
			},
			EmitCitations: true,
		},
		{
			Name:        "travel_guide",
			DisplayName: "Travel Guide",
			Description: "Personalized travel recommendations with weather, local information, and current search results.",
			Greeting:    "Hi! I'm your Travel Guide - here to help plan trips, check weather, and recommend restaurants. Where to?",
			Instructions: "You are a comprehensive travel guide assistant. For any travel query: think about what " +
				"would help most, use Wikipedia for destination background, the weather tool for conditions and " +
				"forecasts, and web search for current restaurants, hotels, and events. Provide practical advice, " +
				"local insights, and weather-appropriate recommendations.",
			Tools: []models.ToolKind{
				models.ToolThink, models.ToolKnowledgeSearch,
				models.ToolWeatherLookup, models.ToolWebSearch,
			},
			EmitTrajectory: true,
			EmitCitations:  true,
		},
	}
}

// Lookup finds an agent definition by name.
func Lookup(name string) (Definition, bool) {
	for _, d := range Catalog() {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
