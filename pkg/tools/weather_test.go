package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func newFakeGeoWeather(t *testing.T, locationBody, weatherBody string, status int) *GeoWeatherClient {
	t.Helper()
	locSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(locationBody))
	}))
	t.Cleanup(locSrv.Close)
	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(weatherBody))
	}))
	t.Cleanup(weatherSrv.Close)
	return &GeoWeatherClient{
		locationURL: locSrv.URL,
		weatherURL:  weatherSrv.URL,
		client:      &http.Client{Timeout: time.Second},
	}
}

func TestWeatherToolReportsCityAndTemperature(t *testing.T) {
	geo := newFakeGeoWeather(t,
		`{"city": "Hanoi", "latitude": 21.03, "longitude": 105.85}`,
		`{"current_weather": {"temperature": 28.5}}`,
		http.StatusOK)

	tool := NewWeatherTool(geo)
	out, err := tool.Run(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "Thời tiết ở Hanoi hôm nay là 28.5°C.", out)
}

func TestWeatherToolDegradesOnUpstreamFailure(t *testing.T) {
	geo := newFakeGeoWeather(t, `{}`, `{}`, http.StatusInternalServerError)

	tool := NewWeatherTool(geo)
	out, err := tool.Run(context.Background(), "")
	// The original behavior: a friendly message, not a hard failure.
	require.NoError(t, err)
	require.Contains(t, out, "không thể lấy thông tin thời tiết")
}

func TestFindRestaurantsFallsBackToGeolocation(t *testing.T) {
	geo := newFakeGeoWeather(t,
		`{"city": "Da Nang", "latitude": 16.05, "longitude": 108.2}`,
		`{}`,
		http.StatusOK)
	llmClient := &mockLLM{calls: []openai.ChatCompletionResponse{textResponse("Nhà hàng A, B")}}

	tool := NewFindRestaurantsTool(llmClient, "gpt", geo)
	out, err := tool.Run(context.Background(), `{"cuisine": "hải sản"}`)
	require.NoError(t, err)
	require.Equal(t, "Nhà hàng A, B", out)
	require.Len(t, llmClient.requests, 1)
	require.Contains(t, llmClient.requests[0].Messages[0].Content, "Da Nang")
}
