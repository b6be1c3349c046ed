package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// WeatherTool reports the user's current city and temperature.
type WeatherTool struct {
	client *GeoWeatherClient
}

// NewWeatherTool creates the weather tool.
func NewWeatherTool(client *GeoWeatherClient) *WeatherTool {
	if client == nil {
		client = NewGeoWeatherClient()
	}
	return &WeatherTool{client: client}
}

func (t *WeatherTool) Name() string { return "get_current_weather" }

func (t *WeatherTool) Description() string {
	return "Get the user's current city and temperature using free APIs."
}

func (t *WeatherTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
		},
	}
}

// Run takes no arguments; location is resolved from the caller's IP.
func (t *WeatherTool) Run(ctx context.Context, _ string) (string, error) {
	loc, err := t.client.CurrentLocation(ctx)
	if err != nil {
		return "Hiện tại không thể lấy thông tin thời tiết, vui lòng thử lại sau.", nil
	}
	temp, err := t.client.CurrentTemperature(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return "Hiện tại không thể lấy thông tin thời tiết, vui lòng thử lại sau.", nil
	}
	return fmt.Sprintf("Thời tiết ở %s hôm nay là %.1f°C.", loc.City, temp), nil
}
