// Package weather looks up current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/Cyclone1070/anu/internal/tool"
)

const SkillName = "weather"

var (
	ErrMissingAPIKey = errors.New("OpenWeatherMap API key not configured")
	ErrNotFound      = errors.New("location not found")
)

// Options configures the weather client.
type Options struct {
	APIKey      string
	DefaultCity string
	Units       string // "metric" or "imperial"
	BaseURL     string
	LocationURL string // IP geolocation endpoint; empty disables lookup
	HTTPClient  *http.Client
}

type client struct {
	opts Options
	http *http.Client
}

// New builds the weather skill. A missing API key is reported by each tool
// call rather than at construction, so the model can tell the user.
func New(opts Options) *tool.Set {
	if opts.DefaultCity == "" {
		opts.DefaultCity = "Mumbai"
	}
	if opts.Units == "" {
		opts.Units = "metric"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openweathermap.org/data/2.5/weather"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &client{opts: opts, http: httpClient}

	return tool.NewSet(SkillName,
		tool.Typed(tool.Declaration{
			Name:        "get_weather",
			Description: "Get current weather information for a specified city or pincode",
			Parameters: tool.Object(map[string]*tool.Schema{
				"city":    tool.String("Name of the city, or a pincode"),
				"pincode": tool.String("Pincode of the location (optional). Takes precedence over city."),
			}, "city"),
		}, c.getWeather),
		tool.Typed(tool.Declaration{
			Name:        "get_current_location_weather",
			Description: "Get current weather for the user's current location",
			Parameters:  tool.Object(nil),
		}, c.currentLocation),
	)
}

type weatherRequest struct {
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// Report is the weather summary returned to the model.
type Report struct {
	Status      string  `json:"status"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature string  `json:"temperature"`
	FeelsLike   string  `json:"feels_like"`
	Conditions  string  `json:"conditions"`
	Humidity    string  `json:"humidity"`
	WindSpeed   string  `json:"wind_speed"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type owmResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (c *client) getWeather(ctx context.Context, req weatherRequest) (Report, error) {
	city := strings.TrimSpace(req.City)
	pin := strings.TrimSpace(req.Pincode)
	if city == "" && pin == "" {
		city = c.opts.DefaultCity
	}
	return c.fetch(ctx, city, pin)
}

func (c *client) currentLocation(ctx context.Context, _ struct{}) (Report, error) {
	city := c.opts.DefaultCity
	if c.opts.LocationURL != "" {
		if located, err := c.locate(ctx); err == nil && located != "" {
			city = located
		}
	}
	return c.fetch(ctx, city, "")
}

func (c *client) fetch(ctx context.Context, city, pincode string) (Report, error) {
	if c.opts.APIKey == "" {
		return Report{}, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("appid", c.opts.APIKey)
	params.Set("units", c.opts.Units)
	switch {
	case pincode != "":
		params.Set("zip", pincode+",in")
	case isDigits(city):
		params.Set("zip", city+",in")
	default:
		params.Set("q", city)
	}

	var data owmResponse
	status, err := c.getJSON(ctx, c.opts.BaseURL+"?"+params.Encode(), &data)
	if err != nil {
		if status == http.StatusNotFound {
			name := city
			if pincode != "" {
				name = pincode
			}
			return Report{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return Report{}, err
	}

	unit, speed := "°C", "m/s"
	if c.opts.Units == "imperial" {
		unit, speed = "°F", "mph"
	}
	conditions := ""
	if len(data.Weather) > 0 {
		conditions = titleCase(data.Weather[0].Description)
	}
	return Report{
		Status:      "success",
		City:        data.Name,
		Country:     data.Sys.Country,
		Temperature: fmt.Sprintf("%.1f%s", data.Main.Temp, unit),
		FeelsLike:   fmt.Sprintf("%.1f%s", data.Main.FeelsLike, unit),
		Conditions:  conditions,
		Humidity:    fmt.Sprintf("%d%%", data.Main.Humidity),
		WindSpeed:   fmt.Sprintf("%g %s", data.Wind.Speed, speed),
		Lat:         data.Coord.Lat,
		Lon:         data.Coord.Lon,
	}, nil
}

// locate resolves the caller's city from its public IP.
func (c *client) locate(ctx context.Context) (string, error) {
	var loc struct {
		City string `json:"city"`
	}
	if _, err := c.getJSON(ctx, c.opts.LocationURL, &loc); err != nil {
		return "", err
	}
	return loc.City, nil
}

// getJSON performs a GET and decodes a 200 response into v. The status code
// is returned alongside any error.
func (c *client) getJSON(ctx context.Context, rawURL string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("weather fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("weather API error: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("decode weather response: %w", err)
	}
	return resp.StatusCode, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
