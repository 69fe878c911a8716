package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero so a partial file only overrides
// what it names.
type JsonConfig struct {
	ServerBaseURL    *string         `json:"server_base_url"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	SessionDBPath    *string         `json:"session_db_path"`
	LogLevel         *string         `json:"log_level"`
	OutputDir        *string         `json:"output_dir"`
	DevicePixelRatio *float64        `json:"device_pixel_ratio"`
	PreviewWidth     *int            `json:"preview_width"`
}

// parseJson overlays cfg with values from the file named by -c/-config.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SessionDBPath != nil {
		cfg.SessionDBPath = *jc.SessionDBPath
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.OutputDir != nil {
		cfg.OutputDir = *jc.OutputDir
	}
	if jc.DevicePixelRatio != nil {
		cfg.DevicePixelRatio = *jc.DevicePixelRatio
	}
	if jc.PreviewWidth != nil {
		cfg.PreviewWidth = *jc.PreviewWidth
	}
}
