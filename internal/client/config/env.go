package config

import (
	"errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	envAPIURL      = "FLIPBOOK_API_URL"
	envAssetURL    = "FLIPBOOK_ASSET_URL"
	envSettleDelay = "FLIPBOOK_SETTLE_DELAY"
	envMaxUploadMB = "FLIPBOOK_MAX_UPLOAD_MB"
	envLogLevel    = "FLIPBOOK_LOG_LEVEL"
	envDownloadDir = "FLIPBOOK_DOWNLOAD_DIR"
)

// parseEnv overlays cfg with FLIPBOOK_* variables. Values from dotenvPath are
// read first (without touching the process environment); lookup results win
// over them. A missing dotenv file is not an error. Malformed values panic.
func parseEnv(cfg *Config, dotenvPath string, lookup func(string) (string, bool)) {
	vars := map[string]string{}

	if dotenvPath != "" {
		fileVars, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			vars = fileVars
		case errors.Is(err, fs.ErrNotExist):
		default:
			panic(err)
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := vars[key]
		return v, ok && v != ""
	}

	if v, ok := get(envAPIURL); ok {
		cfg.APIBaseURL = v
	}
	if v, ok := get(envAssetURL); ok {
		cfg.AssetBaseURL = v
	}
	if v, ok := get(envSettleDelay); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.SettleDelay = d
	}
	if v, ok := get(envMaxUploadMB); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.MaxUploadSize = int64(n) * mib
	}
	if v, ok := get(envLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := get(envDownloadDir); ok {
		cfg.DownloadDir = v
	}
}

