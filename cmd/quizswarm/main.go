// Command quizswarm joins a live quiz with a fleet of automated players.
//
// The game code, fleet size and name prefix can be supplied by flag,
// environment variable or YAML config file; anything missing is prompted
// for interactively. The code is validated against the game endpoint
// before any worker is spawned.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/streamspace-dev/quizswarm/internal/config"
	"github.com/streamspace-dev/quizswarm/internal/kahoot/challenge"
	"github.com/streamspace-dev/quizswarm/internal/logger"
	"github.com/streamspace-dev/quizswarm/internal/swarm"
)

func main() {
	var (
		cfgPath    string
		gameCode   string
		baseName   string
		maxClients int
		logLevel   string
		pretty     bool
	)

	rootCmd := &cobra.Command{
		Use:           "quizswarm",
		Short:         "Join a live quiz with a fleet of automated players",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.SwarmConfig{}
			if cfgPath != "" {
				loaded, err := config.LoadFile(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			// Flags win over the file; env fills remaining gaps.
			if gameCode != "" {
				cfg.GameCode = gameCode
			}
			if baseName != "" {
				cfg.BaseName = baseName
			}
			if maxClients != 0 {
				cfg.MaxClients = maxClients
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if pretty {
				cfg.PrettyLog = true
			}
			cfg.ApplyEnv()

			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&gameCode, "code", "", "game pin to join")
	rootCmd.Flags().StringVar(&baseName, "name", "", "player name prefix")
	rootCmd.Flags().IntVar(&maxClients, "clients", 0, "number of players to keep alive")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "pretty console logging")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.SwarmConfig) error {
	stdin := bufio.NewReader(os.Stdin)
	challengeClient := challenge.NewClient()

	// Prompt for and validate the game code before anything else; an
	// invalid pin re-prompts instead of failing the run.
	for {
		if cfg.GameCode == "" {
			code, err := prompt(stdin, "Code: ")
			if err != nil {
				return err
			}
			cfg.GameCode = code
		}

		if err := validateCode(ctx, challengeClient, cfg.GameCode); err != nil {
			if errors.Is(err, challenge.ErrInvalidCode) {
				fmt.Printf("No game found for code %s\n", cfg.GameCode)
				cfg.GameCode = ""
				continue
			}
			return err
		}
		break
	}

	for cfg.MaxClients < 1 {
		line, err := prompt(stdin, "Max Clients: ")
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 {
			fmt.Println("Enter a number of at least 1")
			continue
		}
		cfg.MaxClients = n
	}

	if cfg.BaseName == "" {
		name, err := prompt(stdin, "Base Name: ")
		if err != nil {
			return err
		}
		cfg.BaseName = name
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Initialize(cfg.LogLevel, cfg.PrettyLog)
	log := logger.Swarm()
	log.Info().
		Str("code", cfg.GameCode).
		Str("base_name", cfg.BaseName).
		Int("clients", cfg.MaxClients).
		Msg("starting swarm")

	s := swarm.New(cfg.GameCode, cfg.BaseName)
	go func() {
		if err := s.AddNWorkers(ctx, cfg.MaxClients); err != nil {
			log.Error().Err(err).Msg("failed to add workers")
		}
	}()

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info().Msg("swarm stopped")
	return nil
}

// validateCode probes the game endpoint and solves the challenge once, so
// a bad pin is caught before the fleet starts.
func validateCode(ctx context.Context, cc *challenge.Client, code string) error {
	if _, err := cc.GetToken(ctx, code); err != nil {
		return err
	}
	return nil
}

func prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
