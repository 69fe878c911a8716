package config

import "time"

// Config holds runtime settings for the GophAuth CLI.
//
// Fields:
//   - ServerBaseURL: base address every API path is appended to.
//   - RequestTimeout: upper bound for a single HTTP exchange.
//   - SessionDBPath: sqlite file holding the persisted session token.
//   - LogLevel: debug, info, warn or error.
//   - OutputDir: where QR codes and crop previews are written.
//   - DevicePixelRatio: multiplier applied to rendered avatar sizes.
//   - PreviewWidth: width, in display pixels, images are shown at while cropping.
type Config struct {
	ServerBaseURL    string
	RequestTimeout   time.Duration
	SessionDBPath    string
	LogLevel         string
	OutputDir        string
	DevicePixelRatio float64
	PreviewWidth     int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:5000/api"
	c.RequestTimeout = 15 * time.Second
	c.SessionDBPath = "gophauth.db"
	c.LogLevel = "info"
	c.OutputDir = "."
	c.DevicePixelRatio = 1
	c.PreviewWidth = 400
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
