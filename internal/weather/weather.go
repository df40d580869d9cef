// Package weather describes the current weather at a location as a mood.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.openweathermap.org"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Result struct {
	Location    string      `json:"location"`
	Temperature int         `json:"temperature"`
	Mood        string      `json:"mood"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Coordinates Coordinates `json:"coordinates"`
}

// Fallback is the result served when the weather cannot be fetched.
func Fallback(lat, lon float64) Result {
	return Result{
		Location:    "Your location",
		Temperature: 0,
		Mood:        "weather",
		Description: "Check the weather outside",
		Icon:        "🌤️",
		Coordinates: Coordinates{Lat: lat, Lon: lon},
	}
}

type Options struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Now     func() time.Time
	Logger  *slog.Logger
	Limiter Limiter
}

// Limiter is satisfied by *ratelimit.Daily.
type Limiter interface {
	Use() error
}

// Client queries OpenWeatherMap's current weather endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	now     func() time.Time
	limiter Limiter
	log     *slog.Logger
}

var ErrNoAPIKey = errors.New("weather: no OpenWeatherMap API key configured")

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.Client,
		now:     opts.Now,
		limiter: opts.Limiter,
		log:     opts.Logger,
	}
}

type currentWeather struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Coord Coordinates `json:"coord"`
	Main  struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Clouds *struct {
		All int `json:"all"`
	} `json:"clouds"`
}

// Mood returns the weather mood at lat/lon. Failures are logged and answered
// with Fallback.
func (c *Client) Mood(ctx context.Context, lat, lon float64) Result {
	res, err := c.mood(ctx, lat, lon)
	if err != nil {
		c.log.Warn("weather lookup failed, using fallback", "lat", lat, "lon", lon, "error", err)
		return Fallback(lat, lon)
	}
	return res
}

func (c *Client) mood(ctx context.Context, lat, lon float64) (Result, error) {
	if c.apiKey == "" {
		return Result{}, ErrNoAPIKey
	}
	if c.limiter != nil {
		if err := c.limiter.Use(); err != nil {
			return Result{}, err
		}
	}

	data, err := c.current(ctx, lat, lon)
	if err != nil {
		return Result{}, err
	}

	now := c.now().Unix()
	cond := Conditions{
		Code:        500,
		Temperature: data.Main.Temp,
		IsDaytime:   now > data.Sys.Sunrise && now < data.Sys.Sunset,
		Now:         now,
		Sunrise:     data.Sys.Sunrise,
	}
	if len(data.Weather) > 0 && data.Weather[0].ID != 0 {
		cond.Code = data.Weather[0].ID
	}
	if data.Clouds != nil {
		cond.CloudCover = data.Clouds.All
	}
	m := Describe(cond)

	c.log.Debug("fetched weather", "location", data.Name, "description", m.Description)
	return Result{
		Location:    fmt.Sprintf("%s, %s", data.Name, data.Sys.Country),
		Temperature: Round(data.Main.Temp),
		Mood:        m.Mood,
		Description: m.Description,
		Icon:        m.Icon,
		Coordinates: data.Coord,
	}, nil
}

func (c *Client) current(ctx context.Context, lat, lon float64) (*currentWeather, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openweathermap status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data currentWeather
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding weather: %w", err)
	}
	return &data, nil
}
