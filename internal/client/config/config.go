package config

import (
	"os"
	"time"
)

const mib = 1 << 20

// Config holds runtime settings for the flipbook client.
//
// Fields:
//   - APIBaseURL: REST endpoint prefix, e.g. http://localhost:5000/api.
//   - AssetBaseURL: host serving page images, thumbnails and source PDFs.
//   - SettleDelay: wait after leaving fullscreen before the page-flip widget
//     is rebuilt.
//   - MaxUploadSize: largest PDF the picker accepts, in bytes.
//   - LogLevel: debug, info, warn or error.
//   - DownloadDir: directory (relative to cwd) for downloaded source PDFs.
type Config struct {
	APIBaseURL    string
	AssetBaseURL  string
	SettleDelay   time.Duration
	MaxUploadSize int64
	LogLevel      string
	DownloadDir   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.AssetBaseURL = "http://localhost:5000"
	c.SettleDelay = 300 * time.Millisecond
	c.MaxUploadSize = 20 * mib
	c.LogLevel = "info"
	c.DownloadDir = "download"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (.env first, real variables on top), a JSON or YAML config
// file (if given with -c/-config) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, ".env", os.LookupEnv)
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
