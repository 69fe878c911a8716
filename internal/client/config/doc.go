// Package config loads runtime configuration for the GophAuth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed GOPHAUTH_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the account API
//	-t int      request timeout (seconds)
//	-d string   path of the session database
//	-l string   log level
//	-o string   output directory for QR codes and avatar previews
//	-r float    device pixel ratio used when rendering avatars
//
// # JSON schema
//
//	{
//	  "server_base_url": "https://accounts.example.com/api",
//	  "request_timeout": "15s",
//	  "session_db_path": "gophauth.db",
//	  "log_level": "info",
//	  "output_dir": ".",
//	  "device_pixel_ratio": 2,
//	  "preview_width": 400
//	}
package config
