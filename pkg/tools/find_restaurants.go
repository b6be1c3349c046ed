package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
)

// FindRestaurantsTool suggests restaurants for a cuisine and location,
// falling back to the user's geolocated city when no location is given.
type FindRestaurantsTool struct {
	client llm.Client
	model  string
	geo    *GeoWeatherClient
}

func NewFindRestaurantsTool(client llm.Client, model string, geo *GeoWeatherClient) *FindRestaurantsTool {
	if geo == nil {
		geo = NewGeoWeatherClient()
	}
	return &FindRestaurantsTool{client: client, model: model, geo: geo}
}

func (t *FindRestaurantsTool) Name() string { return "find_restaurants" }

func (t *FindRestaurantsTool) Description() string {
	return "Find restaurants based on cuisine and location."
}

func (t *FindRestaurantsTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"location": {"type": "string"},
					"cuisine": {"type": "string"}
				}
			}`),
		},
	}
}

func (t *FindRestaurantsTool) Run(ctx context.Context, args string) (string, error) {
	var params struct {
		Location string `json:"location"`
		Cuisine  string `json:"cuisine"`
	}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return "", fmt.Errorf("parse arguments: %w", err)
		}
	}

	location := params.Location
	if location == "" || strings.EqualFold(location, "none") {
		if loc, err := t.geo.CurrentLocation(ctx); err == nil {
			location = loc.City
		}
	}

	prompt := fmt.Sprintf("Gợi ý nhà hàng %s tại %s (Vietnamese).", params.Cuisine, location)
	return askLLM(ctx, t.client, t.model, prompt)
}
