package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the optional sc2k config file
// ($XDG_CONFIG_HOME/sc2k/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	JSONIndent *bool  `yaml:"json_indent"`
	Recompress *bool  `yaml:"recompress"`
	Mode       string `yaml:"mode"`

	ServerAddress  string         `yaml:"server_address"`
	ReadTimeout    *time.Duration `yaml:"read_timeout"`
	MaxUploadBytes *int64         `yaml:"max_upload_bytes"`
	RateLimit      *float64       `yaml:"rate_limit"`
	RateBurst      *int           `yaml:"rate_burst"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sc2k", "config.yaml")
}

// LoadConfig reads the config file. A missing or malformed file yields a
// zero Config.
func LoadConfig(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}
	}
	return c
}

func applyLogConfig(c *cli.Command, cfg Config, level, format *string) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		*format = cfg.LogFormat
	}
}

func applyJSONConfig(c *cli.Command, cfg Config, indent *bool) {
	if cfg.JSONIndent != nil && !c.IsSet("indent") {
		*indent = *cfg.JSONIndent
	}
}

// applyConvertConfig honours the legacy recompress switch when mode is not
// given.
func applyConvertConfig(c *cli.Command, cfg Config, mode *string) {
	if c.IsSet("mode") {
		return
	}
	switch {
	case cfg.Mode != "":
		*mode = cfg.Mode
	case cfg.Recompress != nil && *cfg.Recompress:
		*mode = "recompress"
	}
}

func applyServeConfig(c *cli.Command, cfg Config, o *serveOptions) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		o.addr = cfg.ServerAddress
	}
	if cfg.ReadTimeout != nil && !c.IsSet("read-timeout") {
		o.readTimeout = *cfg.ReadTimeout
	}
	if cfg.MaxUploadBytes != nil && !c.IsSet("max-upload") {
		o.maxUpload = *cfg.MaxUploadBytes
	}
	if cfg.RateLimit != nil && !c.IsSet("rate-limit") {
		o.rateLimit = *cfg.RateLimit
	}
	if cfg.RateBurst != nil && !c.IsSet("rate-burst") {
		o.rateBurst = int64(*cfg.RateBurst)
	}
	if cfg.JSONIndent != nil && !c.IsSet("indent") {
		o.indent = *cfg.JSONIndent
	}
}
