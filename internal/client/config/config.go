// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the shiftbook client.
//
// Fields:
//   - ServerBaseURL: base URL of the shift service REST API.
//   - DatabasePath: path of the local SQLite file.
//   - PushInterval: how often the push scheduler scans for dirty records.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SaveDebounce: input-inactivity window before an edit becomes a
//     durable local write.
//   - SavedStatusDelay: how long the "saved" indicator stays up before
//     reverting to idle.
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	PushInterval        time.Duration
	OnlineCheckInterval time.Duration
	SaveDebounce        time.Duration
	SavedStatusDelay    time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "shiftbook.db"
	c.PushInterval = 5 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.SaveDebounce = 1 * time.Second
	c.SavedStatusDelay = 2 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
