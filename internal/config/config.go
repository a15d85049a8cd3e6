// Package config loads and validates bot configuration from a YAML file and
// environment variables. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given explicitly.
const DefaultPath = "config.yaml"

// ErrInvalid marks every error caused by the configuration itself rather
// than the environment the bot runs in.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration values for the bot.
type Config struct {
	Bot      Bot      `yaml:"bot"`
	Database Database `yaml:"database"`
	HTTP     HTTP     `yaml:"http"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Bot configures the chat connection.
type Bot struct {
	// Token is the Discord bot token. Required.
	Token string `yaml:"token" env:"DISCORD_TOKEN"`

	// Prefix marks a message as a command. Defaults to "!".
	Prefix string `yaml:"prefix" env:"COMMAND_PREFIX"`
}

// Database selects storage. Path is used unless URL is set.
type Database struct {
	// Path is the SQLite database file. Defaults to "bot.db".
	Path string `yaml:"path" env:"DATABASE_PATH"`

	// URL is an optional Postgres connection string.
	URL string `yaml:"url" env:"DATABASE_URL"`
}

// HTTP configures the ops server (health, metrics, read-only tag API).
type HTTP struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port" env:"PORT"`

	// Disabled turns the HTTP server off entirely.
	Disabled bool `yaml:"disabled" env:"HTTP_DISABLED"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// Default returns the configuration used before the file and environment
// are applied.
func Default() Config {
	return Config{
		Bot:      Bot{Prefix: "!"},
		Database: Database{Path: "bot.db"},
		HTTP: HTTP{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file at path, and the
// environment, in that order, then validates it.
//
// An empty path means DefaultPath, which may be absent. A path given
// explicitly must exist.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for tools that need only part of the
// configuration (the migrate command needs no token).
func Read(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := loadFile(path, &cfg); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w: %w", ErrInvalid, err)
	}
	cfg.HTTP.CORSOrigins = trimAll(cfg.HTTP.CORSOrigins)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w: %w", path, ErrInvalid, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w: %w", path, ErrInvalid, err)
	}
	return nil
}

// validate returns an error listing every required value that is missing.
func (c Config) validate() error {
	var missing []string
	if strings.TrimSpace(c.Bot.Token) == "" {
		missing = append(missing, "DISCORD_TOKEN (bot.token)")
	}
	if c.Bot.Prefix == "" {
		missing = append(missing, "COMMAND_PREFIX (bot.prefix)")
	}
	if c.Database.URL == "" && c.Database.Path == "" {
		missing = append(missing, "DATABASE_PATH (database.path) or DATABASE_URL (database.url)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: %w: required values not set: %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
