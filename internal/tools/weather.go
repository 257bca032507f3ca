package tools

import (
	"context"
	"strings"

	"github.com/y0ug/mcptools/internal/registry"
)

type weather struct {
	city      string
	temp      int
	condition string
	humidity  int
}

// mockWeather is keyed by lower-cased city name.
var mockWeather = map[string]weather{
	"new york": {"New York", 22, "Partly Cloudy", 65},
	"london":   {"London", 15, "Rainy", 80},
	"tokyo":    {"Tokyo", 28, "Sunny", 55},
	"paris":    {"Paris", 18, "Overcast", 70},
	"sydney":   {"Sydney", 25, "Clear", 50},
}

var defaultWeather = weather{temp: 20, condition: "Unknown", humidity: 60}

func weatherTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "get_weather",
		Description: "Get current weather information for a city. Note: this is a mock implementation for demonstration purposes.",
		Parameters: []registry.ParameterSpec{
			param("city", registry.KindString, "The city to get weather for"),
		},
		Handler: getWeather,
	}
}

func getWeather(_ context.Context, args registry.Args) (registry.Payload, error) {
	city := args.Str("city")

	w, ok := mockWeather[strings.ToLower(city)]
	note := "This is mock data for demonstration"
	if !ok {
		w = defaultWeather
		w.city = city
		note = "City not found in mock data, returning defaults"
	}

	return registry.Payload{
		"city":                w.city,
		"temperature_celsius": w.temp,
		"condition":           w.condition,
		"humidity_percent":    w.humidity,
		"note":                note,
	}, nil
}
