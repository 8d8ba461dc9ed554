package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort      = 5001
	DefaultStatsInterval = 60 * time.Second
	DefaultSendBuffer    = 64
)

// Config is the top-level mirror configuration, parsed from the `mirror:`
// section of config.yaml.
type Config struct {
	Mirror MirrorConfig `yaml:"mirror"`
}

// MirrorConfig holds all mirror daemon settings.
type MirrorConfig struct {
	// UpstreamURL is the server's WebSocket endpoint (ws:// or wss://),
	// e.g. "ws://frigate:5000/ws". Required.
	UpstreamURL string `yaml:"upstream_url"`

	// APIURL is the server's HTTP base URL, used to fetch the camera
	// configuration on connect. Leave empty to disable seeding.
	APIURL string `yaml:"api_url"`

	// MetricsURL is a Prometheus text exposition endpoint folded into the
	// mirror's stats snapshots. Leave empty to disable scraping.
	MetricsURL string `yaml:"metrics_url"`

	// HTTPPort is the port the local REST API and WebSocket hub listen on
	// (default 5001).
	HTTPPort int `yaml:"http_port"`

	// StatsInterval controls how often the stats emitter publishes a
	// snapshot (default 60s).
	StatsInterval time.Duration `yaml:"stats_interval"`

	// SendBuffer is the upstream outgoing frame buffer depth (default 64).
	SendBuffer int `yaml:"send_buffer"`

	// UpstreamAuth configures how the mirror authenticates to the server.
	UpstreamAuth AuthConfig `yaml:"upstream_auth"`

	// LocalAuth configures how downstream dashboards authenticate to the
	// mirror's HTTP surface.
	LocalAuth AuthConfig `yaml:"local_auth"`
}

// AuthConfig specifies a static API key check.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header the key is carried in.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable that holds the key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default
// "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mirror config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("mirror config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("mirror config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Mirror: MirrorConfig{
			HTTPPort:      DefaultHTTPPort,
			StatsInterval: DefaultStatsInterval,
			SendBuffer:    DefaultSendBuffer,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	m := cfg.Mirror

	if m.UpstreamURL == "" {
		return fmt.Errorf("mirror.upstream_url is required")
	}
	u, err := url.Parse(m.UpstreamURL)
	if err != nil {
		return fmt.Errorf("mirror.upstream_url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("mirror.upstream_url scheme %q: want ws or wss", u.Scheme)
	}

	if m.HTTPPort <= 0 || m.HTTPPort > 65535 {
		return fmt.Errorf("mirror.http_port %d is out of range [1, 65535]", m.HTTPPort)
	}
	if m.StatsInterval <= 0 {
		return fmt.Errorf("mirror.stats_interval must be positive")
	}
	if m.SendBuffer <= 0 {
		return fmt.Errorf("mirror.send_buffer must be positive")
	}

	for name, a := range map[string]AuthConfig{
		"mirror.upstream_auth": m.UpstreamAuth,
		"mirror.local_auth":    m.LocalAuth,
	} {
		switch a.Mode {
		case "apikey", "none", "":
		default:
			return fmt.Errorf("%s.mode %q unknown: want apikey|none", name, a.Mode)
		}
	}
	return nil
}
