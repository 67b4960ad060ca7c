package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nova/internal/core"
	"nova/internal/logging"
	"nova/internal/storage/config"
)

var (
	version = "0.3.0"

	// Global flags
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "nova",
	Short: "nova - launcher and mod manager for BepInEx-modded games",
	Long: `nova manages isolated game profiles, installs plugins from the mod
registry with dependency resolution and checksum verification, and launches
the game with or without modifications.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/nova)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initService creates the logger and the core service from configuration.
func initService() (*core.Service, *zap.SugaredLogger, error) {
	dir := configDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("home directory: %w", err)
		}
		dir = filepath.Join(home, ".config", "nova")
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, err
	}

	log := logging.New(verbose)
	svc, err := core.NewService(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	return svc, log, nil
}

// requireProfile resolves a --profile flag value, falling back to the active
// profile when the flag is empty.
func requireProfile(svc *core.Service, profileID string) (string, error) {
	if profileID != "" {
		return profileID, nil
	}

	active, err := svc.Profiles().ActiveProfile()
	if err != nil {
		return "", err
	}
	if active == nil {
		return "", fmt.Errorf("no profile specified and none launched yet; use --profile")
	}
	return active.ID, nil
}
