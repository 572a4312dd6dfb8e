// Package config loads runtime configuration for the flipbook client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: a ./.env file read with godotenv, overridden by real
//     FLIPBOOK_* variables (see parseEnv).
//  3. Optional config file selected via -c or -config; .yaml/.yml files are
//     decoded as YAML, everything else as JSON (see parseFile).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   REST API base URL
//	-s string   static asset base URL
//	-d int      fullscreen settle delay (milliseconds)
//	-m int      maximum upload size (MiB)
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "300ms" or
// integer nanoseconds:
//
//	api_base_url: http://localhost:5000/api
//	asset_base_url: http://localhost:5000
//	settle_delay: 300ms
//	max_upload_mb: 20
//	log_level: info
//	download_dir: download
package config
