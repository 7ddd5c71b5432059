package briefing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/oshokin/smart-alarm/internal/version"
)

const (
	// DefaultWeatherURL is the OpenWeatherMap current weather endpoint.
	DefaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"
	// DefaultNewsURL is the NewsAPI top headlines endpoint.
	DefaultNewsURL = "https://newsapi.org/v2/top-headlines"

	// maxBodySize bounds API responses.
	maxBodySize = 1 << 20
)

var (
	// ErrWeatherDisabled is returned when no weather key is configured.
	ErrWeatherDisabled = errors.New("weather is not configured")
	// ErrNewsDisabled is returned when no news key is configured.
	ErrNewsDisabled = errors.New("news is not configured")
	// errEmptyForecast is returned when the weather response has no conditions.
	errEmptyForecast = errors.New("weather response has no conditions")
)

// Weather is a forecast summary in metric units.
type Weather struct {
	Forecast string
	Temp     float64
	MaxTemp  float64
	MinTemp  float64
	Wind     float64
}

// Summary renders the forecast as one sentence.
func (w *Weather) Summary() string {
	return fmt.Sprintf("%s with an average temperature of %s°C. Highs of %s°C and lows of %s°C. Wind speeds of %s m/s.",
		w.Forecast, formatFloat(w.Temp), formatFloat(w.MaxTemp), formatFloat(w.MinTemp), formatFloat(w.Wind))
}

// Options configures a Client.
type Options struct {
	WeatherAPIKey string
	NewsAPIKey    string
	City          string
	Country       string
	// Headlines is how many titles Headlines returns.
	Headlines int
	// RequestsPerMinute limits outbound calls; zero means unlimited.
	RequestsPerMinute int
	// Timeout bounds each request.
	Timeout time.Duration
	// WeatherURL and NewsURL override the API endpoints, mostly for tests.
	WeatherURL string
	NewsURL    string
}

// Client calls the weather and news APIs.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client from opts, filling in endpoint defaults.
func NewClient(opts Options) *Client {
	if opts.WeatherURL == "" {
		opts.WeatherURL = DefaultWeatherURL
	}

	if opts.NewsURL == "" {
		opts.NewsURL = DefaultNewsURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute)
	}

	return &Client{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: limiter,
	}
}

// weatherResponse is the subset of the OpenWeatherMap payload we read.
type weatherResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMax float64 `json:"temp_max"`
		TempMin float64 `json:"temp_min"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Weather returns the current forecast for the configured city.
func (c *Client) Weather(ctx context.Context) (*Weather, error) {
	if c.opts.WeatherAPIKey == "" {
		return nil, ErrWeatherDisabled
	}

	query := url.Values{
		"q":     {c.opts.City},
		"appid": {c.opts.WeatherAPIKey},
		"units": {"metric"},
	}

	var payload weatherResponse
	if err := c.getJSON(ctx, c.opts.WeatherURL, query, &payload); err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}

	if len(payload.Weather) == 0 {
		return nil, errEmptyForecast
	}

	return &Weather{
		Forecast: payload.Weather[0].Main,
		Temp:     payload.Main.Temp,
		MaxTemp:  payload.Main.TempMax,
		MinTemp:  payload.Main.TempMin,
		Wind:     payload.Wind.Speed,
	}, nil
}

// newsResponse is the subset of the NewsAPI payload we read.
type newsResponse struct {
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
}

// Headlines returns up to the configured number of titles as "#<n>: <title>".
func (c *Client) Headlines(ctx context.Context) ([]string, error) {
	if c.opts.NewsAPIKey == "" {
		return nil, ErrNewsDisabled
	}

	query := url.Values{
		"country": {c.opts.Country},
		"apiKey":  {c.opts.NewsAPIKey},
	}

	var payload newsResponse
	if err := c.getJSON(ctx, c.opts.NewsURL, query, &payload); err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}

	limit := c.opts.Headlines
	if limit <= 0 || limit > len(payload.Articles) {
		limit = len(payload.Articles)
	}

	headlines := make([]string, 0, limit)
	for i, article := range payload.Articles[:limit] {
		headlines = append(headlines, "#"+strconv.Itoa(i+1)+": "+article.Title)
	}

	return headlines, nil
}

// getJSON performs a rate-limited GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body := io.LimitReader(resp.Body, maxBodySize)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(body, 256)) //nolint:errcheck // Best effort for the error message.

		return fmt.Errorf("unexpected status %s: %s", resp.Status, snippet)
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// formatFloat prints a number without trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
