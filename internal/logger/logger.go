package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Global logger instance
var (
	Log zerolog.Logger
)

// Initialize sets up the global logger with configuration
func Initialize(level string, pretty bool) {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	if pretty {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	// Set global logger
	Log = log.With().
		Str("service", "quizswarm").
		Logger()

	Log.Info().
		Str("level", logLevel.String()).
		Bool("pretty", pretty).
		Msg("Logger initialized")
}

// GetLogger returns the global logger instance
func GetLogger() *zerolog.Logger {
	return &Log
}

// Cometd creates a logger for Bayeux session events
func Cometd() *zerolog.Logger {
	l := Log.With().Str("component", "cometd").Logger()
	return &l
}

// Challenge creates a logger for challenge solver events
func Challenge() *zerolog.Logger {
	l := Log.With().Str("component", "challenge").Logger()
	return &l
}

// Kahoot creates a logger for game client events
func Kahoot() *zerolog.Logger {
	l := Log.With().Str("component", "kahoot").Logger()
	return &l
}

// Swarm creates a logger for swarm controller events
func Swarm() *zerolog.Logger {
	l := Log.With().Str("component", "swarm").Logger()
	return &l
}
