package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/flipbook/internal/flagx"
	"github.com/dmitrijs2005/flipbook/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for config file decoding. Pointer
// fields distinguish "absent" from zero values so a partial file only
// overrides what it names.
type FileConfig struct {
	APIBaseURL   *string         `json:"api_base_url" yaml:"api_base_url"`
	AssetBaseURL *string         `json:"asset_base_url" yaml:"asset_base_url"`
	SettleDelay  *timex.Duration `json:"settle_delay" yaml:"settle_delay"`
	MaxUploadMB  *int            `json:"max_upload_mb" yaml:"max_upload_mb"`
	LogLevel     *string         `json:"log_level" yaml:"log_level"`
	DownloadDir  *string         `json:"download_dir" yaml:"download_dir"`
}

// parseFile overlays cfg with the file named by -c/-config in args.
// The format follows the extension: .yaml/.yml use YAML, anything else JSON.
// Read or decode errors panic (caller should recover if desired).
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(fmt.Errorf("config %s: %w", path, err))
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.AssetBaseURL != nil {
		cfg.AssetBaseURL = *fc.AssetBaseURL
	}
	if fc.SettleDelay != nil {
		cfg.SettleDelay = fc.SettleDelay.Duration
	}
	if fc.MaxUploadMB != nil {
		cfg.MaxUploadSize = int64(*fc.MaxUploadMB) * mib
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.DownloadDir != nil {
		cfg.DownloadDir = *fc.DownloadDir
	}
}
