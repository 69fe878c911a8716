package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// overrideFlags defines the command-line overrides on a fresh flagx.Set.
// The returned function copies parsed values that need conversion into cfg.
func overrideFlags(cfg *Config) (*flagx.Set, func()) {
	fs := flagx.NewSet("main")

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the account API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SessionDBPath, "d", cfg.SessionDBPath, "session database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "output directory")
	fs.Float64Var(&cfg.DevicePixelRatio, "r", cfg.DevicePixelRatio, "device pixel ratio")

	return fs, func() { cfg.RequestTimeout = time.Duration(*timeout) * time.Second }
}

// parseFlags populates selected Config fields from command-line flags.
// Arguments that are not overrides, such as -c/-config, are skipped.
func parseFlags(cfg *Config) {
	fs, apply := overrideFlags(cfg)

	if err := fs.Parse(os.Args[1:]); err != nil {
		panic(err)
	}

	apply()
}
