package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST API base URL
//	-s string   static asset base URL
//	-d int      fullscreen settle delay (milliseconds)
//	-m int      maximum upload size (MiB)
//	-l string   log level
//
// Only these flags are parsed (see flagx.FilterArgs) so -c/-config and
// anything else on the command line do not interfere. Invalid values panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-d", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "REST API base URL")
	fs.StringVar(&cfg.AssetBaseURL, "s", cfg.AssetBaseURL, "static asset base URL")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	settle := fs.Int("d", int(cfg.SettleDelay.Milliseconds()), "fullscreen settle delay (in milliseconds)")
	maxMB := fs.Int64("m", cfg.MaxUploadSize/mib, "maximum upload size (in MiB)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SettleDelay = time.Duration(*settle) * time.Millisecond
	cfg.MaxUploadSize = *maxMB * mib
}
