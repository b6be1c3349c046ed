package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultLocationURL = "http://ipwhois.app/json/"
	defaultWeatherURL  = "https://api.open-meteo.com/v1/forecast"
)

// Location is the caller's approximate position resolved from their IP.
type Location struct {
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoWeatherClient resolves the user's location via the ipwhois API and the
// current temperature via Open-Meteo.
type GeoWeatherClient struct {
	locationURL string
	weatherURL  string
	client      *http.Client
}

// NewGeoWeatherClient creates a client against the public APIs.
func NewGeoWeatherClient() *GeoWeatherClient {
	return &GeoWeatherClient{
		locationURL: defaultLocationURL,
		weatherURL:  defaultWeatherURL,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// CurrentLocation looks up the caller's city and coordinates.
func (c *GeoWeatherClient) CurrentLocation(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.locationURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// CurrentTemperature returns the current temperature in °C at the given
// coordinates.
func (c *GeoWeatherClient) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", c.weatherURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	return payload.CurrentWeather.Temperature, nil
}
