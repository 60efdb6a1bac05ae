package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"hookd/internal/common/fsutil"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are filled by Defaults or CLI flags.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
	// RequestLog is the default per-request log level (off|error|info|debug).
	RequestLog string `json:"request_log" yaml:"request_log" toml:"request_log"`
	// Callbacks names the observers to register, in invocation order.
	Callbacks             []string `json:"callbacks" yaml:"callbacks" toml:"callbacks"`
	EventLogSize          int      `json:"event_log_size" yaml:"event_log_size" toml:"event_log_size"`
	MaxBodyBytes          int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	PredictTimeoutSeconds int64    `json:"predict_timeout_seconds" yaml:"predict_timeout_seconds" toml:"predict_timeout_seconds"`
	ShutdownTimeoutSec    int      `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`
	// Upper makes the echo API upper-case its output.
	Upper       bool     `json:"upper" yaml:"upper" toml:"upper"`
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	CORSMethods []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods"`
	CORSHeaders []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers"`
}

// Defaults returns the configuration used when nothing is specified.
func Defaults() Config {
	return Config{
		Addr:               ":8080",
		LogLevel:           "info",
		LogFormat:          "json",
		RequestLog:         "info",
		Callbacks:          []string{"log", "metrics"},
		EventLogSize:       1024,
		MaxBodyBytes:       1 << 20,
		ShutdownTimeoutSec: 5,
		CORSMethods:        []string{"GET", "POST", "OPTIONS"},
		CORSHeaders:        []string{"Content-Type", "X-Request-Id", "X-Log-Level"},
	}
}

// Merge overlays the non-zero fields of o onto c. Booleans only switch on.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.RequestLog != "" {
		c.RequestLog = o.RequestLog
	}
	if o.Callbacks != nil {
		c.Callbacks = append([]string(nil), o.Callbacks...)
	}
	if o.EventLogSize != 0 {
		c.EventLogSize = o.EventLogSize
	}
	if o.MaxBodyBytes != 0 {
		c.MaxBodyBytes = o.MaxBodyBytes
	}
	if o.PredictTimeoutSeconds != 0 {
		c.PredictTimeoutSeconds = o.PredictTimeoutSeconds
	}
	if o.ShutdownTimeoutSec != 0 {
		c.ShutdownTimeoutSec = o.ShutdownTimeoutSec
	}
	c.Upper = c.Upper || o.Upper
	c.CORSEnabled = c.CORSEnabled || o.CORSEnabled
	if o.CORSOrigins != nil {
		c.CORSOrigins = append([]string(nil), o.CORSOrigins...)
	}
	if o.CORSMethods != nil {
		c.CORSMethods = append([]string(nil), o.CORSMethods...)
	}
	if o.CORSHeaders != nil {
		c.CORSHeaders = append([]string(nil), o.CORSHeaders...)
	}
	return c
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml. A leading ~ is expanded.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
