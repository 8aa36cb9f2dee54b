package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"name": "Pune",
	"coord": {"lat": 18.52, "lon": 73.86},
	"sys": {"country": "IN"},
	"main": {"temp": 29.44, "feels_like": 31.02, "humidity": 58},
	"weather": [{"description": "scattered clouds"}],
	"wind": {"speed": 3.6}
}`

func newServer(t *testing.T, queries *[]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		*queries = append(*queries, r.URL.RawQuery)
		if r.URL.Query().Get("q") == "Atlantis" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleResponse))
	})
	mux.HandleFunc("/ip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"city": "Pune", "country": "IN"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetWeather_ByCity(t *testing.T) {
	var queries []string
	srv := newServer(t, &queries)
	s := New(Options{APIKey: "k", BaseURL: srv.URL + "/weather"})

	out, err := s.Dispatch(context.Background(), "get_weather", map[string]any{"city": "Pune"})

	require.NoError(t, err)
	var rep Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, Report{
		Status:      "success",
		City:        "Pune",
		Country:     "IN",
		Temperature: "29.4°C",
		FeelsLike:   "31.0°C",
		Conditions:  "Scattered Clouds",
		Humidity:    "58%",
		WindSpeed:   "3.6 m/s",
		Lat:         18.52,
		Lon:         73.86,
	}, rep)
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "q=Pune")
	assert.Contains(t, queries[0], "units=metric")
	assert.Contains(t, queries[0], "appid=k")
}

func TestGetWeather_Pincode(t *testing.T) {
	var queries []string
	srv := newServer(t, &queries)
	s := New(Options{APIKey: "k", BaseURL: srv.URL + "/weather"})

	_, err := s.Dispatch(context.Background(), "get_weather", map[string]any{"city": "411001"})
	require.NoError(t, err)
	_, err = s.Dispatch(context.Background(), "get_weather", map[string]any{"city": "Pune", "pincode": "400001"})
	require.NoError(t, err)

	assert.Contains(t, queries[0], "zip=411001%2Cin")
	assert.Contains(t, queries[1], "zip=400001%2Cin")
}

func TestGetWeather_NotFound(t *testing.T) {
	var queries []string
	srv := newServer(t, &queries)
	s := New(Options{APIKey: "k", BaseURL: srv.URL + "/weather"})

	_, err := s.Dispatch(context.Background(), "get_weather", map[string]any{"city": "Atlantis"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetWeather_MissingKey(t *testing.T) {
	s := New(Options{})

	_, err := s.Dispatch(context.Background(), "get_weather", map[string]any{"city": "Pune"})

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCurrentLocation_UsesIPLookup(t *testing.T) {
	var queries []string
	srv := newServer(t, &queries)
	s := New(Options{APIKey: "k", BaseURL: srv.URL + "/weather", LocationURL: srv.URL + "/ip", DefaultCity: "Mumbai"})

	_, err := s.Dispatch(context.Background(), "get_current_location_weather", nil)

	require.NoError(t, err)
	assert.Contains(t, queries[0], "q=Pune")
}

func TestCurrentLocation_FallsBackToDefault(t *testing.T) {
	var queries []string
	srv := newServer(t, &queries)
	s := New(Options{APIKey: "k", BaseURL: srv.URL + "/weather", LocationURL: srv.URL + "/missing", DefaultCity: "Mumbai"})

	_, err := s.Dispatch(context.Background(), "get_current_location_weather", nil)

	require.NoError(t, err)
	assert.Contains(t, queries[0], "q=Mumbai")
}
