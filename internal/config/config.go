// Package config loads server settings from an optional file and
// MCPTOOLS_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "MCPTOOLS"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Debug  DebugConfig  `mapstructure:"debug"`
	Tools  ToolsConfig  `mapstructure:"tools"`
	Banner bool         `mapstructure:"banner"`
}

type ServerConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Description string `mapstructure:"description"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DebugConfig struct {
	Frames bool `mapstructure:"frames"`
}

type ToolsConfig struct {
	Disabled []string `mapstructure:"disabled"`
}

// New returns a viper instance with defaults and environment bindings set.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.name", "mcp-tools")
	v.SetDefault("server.version", "1.0.0")
	v.SetDefault("server.description", "A demo MCP server with utility tools")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("debug.frames", false)
	v.SetDefault("tools.disabled", []string{})
	v.SetDefault("banner", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, when not empty, into v and decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Tools.Disabled = splitList(cfg.Tools.Disabled)
	return cfg, nil
}

// splitList accepts both YAML lists and comma separated environment values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
