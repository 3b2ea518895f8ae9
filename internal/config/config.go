// Package config holds the swarm runtime configuration.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables
//   - An optional YAML file
//   - Interactive prompts for anything still missing
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Configuration errors
var (
	ErrMissingGameCode   = errors.New("game code is required")
	ErrInvalidGameCode   = errors.New("game code must be a pin of up to 7 digits")
	ErrInvalidMaxClients = errors.New("max clients must be at least 1")
)

// maxGameCodeDigits bounds a game pin.
const maxGameCodeDigits = 7

// SwarmConfig holds the configuration for one swarm run.
type SwarmConfig struct {
	// GameCode is the numeric pin of the live quiz to join.
	GameCode string `yaml:"gameCode"`

	// BaseName prefixes every player name; worker ids are appended.
	// Default: "bot"
	BaseName string `yaml:"baseName"`

	// MaxClients is how many players the swarm keeps alive.
	MaxClients int `yaml:"maxClients"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	// Default: "info"
	LogLevel string `yaml:"logLevel"`

	// PrettyLog switches from JSON to console output.
	PrettyLog bool `yaml:"prettyLog"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*SwarmConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg SwarmConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overlays environment variables onto unset fields.
//
//	GAME_CODE    game pin
//	BASE_NAME    player name prefix
//	MAX_CLIENTS  fleet size
//	LOG_LEVEL    zerolog level
//	PRETTY_LOG   "true" for console output
func (c *SwarmConfig) ApplyEnv() {
	if c.GameCode == "" {
		c.GameCode = os.Getenv("GAME_CODE")
	}
	if c.BaseName == "" {
		c.BaseName = os.Getenv("BASE_NAME")
	}
	if c.MaxClients == 0 {
		if v, err := strconv.Atoi(os.Getenv("MAX_CLIENTS")); err == nil {
			c.MaxClients = v
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if !c.PrettyLog {
		c.PrettyLog = os.Getenv("PRETTY_LOG") == "true"
	}
}

// Validate applies defaults and checks the configuration.
func (c *SwarmConfig) Validate() error {
	if c.GameCode == "" {
		return ErrMissingGameCode
	}
	if !validGameCode(c.GameCode) {
		return ErrInvalidGameCode
	}

	if c.MaxClients < 1 {
		return ErrInvalidMaxClients
	}

	if c.BaseName == "" {
		c.BaseName = "bot"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return nil
}

func validGameCode(code string) bool {
	if len(code) == 0 || len(code) > maxGameCodeDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
