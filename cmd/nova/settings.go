package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nova/internal/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change launcher settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		settings, err := svc.Settings().Get()
		if err != nil {
			return err
		}

		fmt.Printf("game_path:       %s\n", settings.GamePath)
		fmt.Printf("platform:        %s\n", settings.Platform)
		fmt.Printf("close_on_launch: %t\n", settings.CloseOnLaunch)
		fmt.Printf("bepinex_version: %s\n", settings.BepInExVer)
		fmt.Printf("bepinex_url:     %s\n", settings.BepInExURL)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. Keys: game_path, platform, close_on_launch,
bepinex_version, bepinex_url.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		key, value := args[0], args[1]

		var apply func(*domain.Settings)
		switch key {
		case "game_path":
			apply = func(s *domain.Settings) { s.GamePath = value }
		case "platform":
			apply = func(s *domain.Settings) { s.Platform = value }
		case "close_on_launch":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("close_on_launch wants true or false, got %q", value)
			}
			apply = func(s *domain.Settings) { s.CloseOnLaunch = b }
		case "bepinex_version":
			apply = func(s *domain.Settings) { s.BepInExVer = value }
		case "bepinex_url":
			apply = func(s *domain.Settings) { s.BepInExURL = value }
		default:
			return fmt.Errorf("unknown setting %q", key)
		}

		if err := svc.Settings().Update(apply); err != nil {
			return err
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
