package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nova/internal/domain"
)

var modsProfile string

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "List a profile's mods, managed and custom",
	Long: `List the unified mod view of a profile: registry-managed plugins the
profile record tracks, plus custom plugin files dropped into the plugin
directory by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		profileID, err := requireProfile(svc, modsProfile)
		if err != nil {
			return err
		}

		unified, err := svc.Reconciler().Unify(profileID)
		if err != nil {
			return err
		}

		if len(unified) == 0 {
			fmt.Println("No plugins installed.")
			return nil
		}

		for _, m := range unified {
			switch m.Source {
			case domain.SourceManaged:
				fmt.Printf("%-9s %-40s %s@%s\n", m.Source, m.File, m.ModID, m.Version)
			default:
				fmt.Printf("%-9s %s\n", m.Source, m.File)
			}
		}
		return nil
	},
}

var modsRemoveCmd = &cobra.Command{
	Use:   "remove <file>",
	Short: "Remove a plugin file from a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		profileID, err := requireProfile(svc, modsProfile)
		if err != nil {
			return err
		}

		unified, err := svc.Reconciler().Unify(profileID)
		if err != nil {
			return err
		}

		for _, m := range unified {
			if m.File != args[0] {
				continue
			}
			if err := svc.Reconciler().DeleteEntry(profileID, m); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", m.File)
			return nil
		}

		return fmt.Errorf("%w: %s", domain.ErrFileNotFound, args[0])
	},
}

func init() {
	modsCmd.PersistentFlags().StringVarP(&modsProfile, "profile", "p", "", "profile to inspect (default: active profile)")
	modsCmd.AddCommand(modsRemoveCmd)
	rootCmd.AddCommand(modsCmd)
}
