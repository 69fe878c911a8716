package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// EnvConfig mirrors Config for go-envconfig. Every field is a pointer so
// unset variables leave earlier layers untouched.
type EnvConfig struct {
	ServerBaseURL    *string        `env:"GOPHAUTH_SERVER, noinit"`
	RequestTimeout   *time.Duration `env:"GOPHAUTH_REQUEST_TIMEOUT, noinit"`
	SessionDBPath    *string        `env:"GOPHAUTH_SESSION_DB, noinit"`
	LogLevel         *string        `env:"GOPHAUTH_LOG_LEVEL, noinit"`
	OutputDir        *string        `env:"GOPHAUTH_OUTPUT_DIR, noinit"`
	DevicePixelRatio *float64       `env:"GOPHAUTH_DPR, noinit"`
	PreviewWidth     *int           `env:"GOPHAUTH_PREVIEW_WIDTH, noinit"`
}

func parseEnv(cfg *Config) {
	if err := overlayEnv(context.Background(), cfg, envconfig.OsLookuper()); err != nil {
		panic(fmt.Sprintf("config: failed to load environment: %v", err))
	}
}

func overlayEnv(ctx context.Context, cfg *Config, l envconfig.Lookuper) error {
	var ec EnvConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &ec, Lookuper: l}); err != nil {
		return err
	}

	if ec.ServerBaseURL != nil {
		cfg.ServerBaseURL = *ec.ServerBaseURL
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.SessionDBPath != nil {
		cfg.SessionDBPath = *ec.SessionDBPath
	}
	if ec.LogLevel != nil {
		cfg.LogLevel = *ec.LogLevel
	}
	if ec.OutputDir != nil {
		cfg.OutputDir = *ec.OutputDir
	}
	if ec.DevicePixelRatio != nil {
		cfg.DevicePixelRatio = *ec.DevicePixelRatio
	}
	if ec.PreviewWidth != nil {
		cfg.PreviewWidth = *ec.PreviewWidth
	}
	return nil
}
