package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/smart-alarm/internal/logger"
)

// Config holds the settings shared by the alarm clock binaries.
type Config struct {
	// ServerAddress is the gRPC address clients dial and the server listens on.
	ServerAddress string `yaml:"server_addr"`
	// HTTPAddress is the listen address of the web page. Empty disables it.
	HTTPAddress string `yaml:"http_addr,omitempty"`
	// Timeout bounds RPC calls and outbound HTTP requests.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFile additionally writes JSON logs to this path.
	LogFile string `yaml:"log_file,omitempty"`
	// SpeechCommand speaks fired alarms, e.g. "espeak". Empty disables voice alerts.
	SpeechCommand string `yaml:"speech_command,omitempty"`
	// NotificationsLimit caps the notification feed.
	NotificationsLimit int `yaml:"notifications_limit"`
	// Briefing configures the weather and news refresh.
	Briefing Briefing `yaml:"briefing"`
}

// Briefing configures the weather and news collaborators.
type Briefing struct {
	// WeatherAPIKey is the OpenWeatherMap key. Empty disables weather.
	WeatherAPIKey string `yaml:"weather_api_key,omitempty"`
	// NewsAPIKey is the NewsAPI key. Empty disables news.
	NewsAPIKey string `yaml:"news_api_key,omitempty"`
	// City is used for the weather forecast.
	City string `yaml:"city,omitempty"`
	// Country is the two-letter code used for headlines.
	Country string `yaml:"country,omitempty"`
	// Refresh is a cron expression, e.g. "@every 15m".
	Refresh string `yaml:"refresh,omitempty"`
	// RequestsPerMinute limits outbound API calls.
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty"`
	// Headlines is how many news titles to keep.
	Headlines int `yaml:"headlines,omitempty"`
}

// Enabled reports whether any briefing source has credentials.
func (b *Briefing) Enabled() bool {
	return b.WeatherAPIKey != "" || b.NewsAPIKey != ""
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "smart-alarm-settings.yaml"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when log_level is not set.
	DefaultLogLevel = "info"

	// DefaultNotificationsLimit caps the feed when notifications_limit is not set.
	DefaultNotificationsLimit = 50

	// DefaultRefresh is the briefing refresh schedule.
	DefaultRefresh = "@every 15m"

	// DefaultRequestsPerMinute limits briefing API calls.
	DefaultRequestsPerMinute = 30

	// DefaultHeadlines is how many news titles the briefing keeps.
	DefaultHeadlines = 10

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errBriefingLocation is returned when an API key is set without its location.
	errBriefingLocation = errors.New("briefing needs a city for weather and a country for news")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.HTTPAddress != "" {
		if _, _, err := net.SplitHostPort(settings.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http address: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}

	if settings.NotificationsLimit <= 0 {
		settings.NotificationsLimit = DefaultNotificationsLimit
	}

	return validateBriefing(&settings.Briefing)
}

// validateBriefing fills briefing defaults and checks the refresh schedule.
func validateBriefing(b *Briefing) error {
	if !b.Enabled() {
		return nil
	}

	if (b.WeatherAPIKey != "" && strings.TrimSpace(b.City) == "") ||
		(b.NewsAPIKey != "" && strings.TrimSpace(b.Country) == "") {
		return errBriefingLocation
	}

	if b.Refresh == "" {
		b.Refresh = DefaultRefresh
	}

	if _, err := cron.ParseStandard(b.Refresh); err != nil {
		return fmt.Errorf("invalid briefing refresh %q: %w", b.Refresh, err)
	}

	if b.RequestsPerMinute <= 0 {
		b.RequestsPerMinute = DefaultRequestsPerMinute
	}

	if b.Headlines <= 0 {
		b.Headlines = DefaultHeadlines
	}

	return nil
}
