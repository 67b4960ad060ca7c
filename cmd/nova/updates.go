package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	updatesProfile string
	updatesApply   bool
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Check managed mods for newer registry versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		profileID, err := requireProfile(svc, updatesProfile)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		updates, err := svc.CheckUpdates(ctx, profileID)
		if err != nil {
			return err
		}

		if len(updates) == 0 {
			fmt.Println("All managed mods are up to date.")
			return nil
		}

		for _, u := range updates {
			fmt.Printf("%-30s %s -> %s\n", u.ModID, u.CurrentVersion, u.LatestVersion)
			if !updatesApply {
				continue
			}
			if _, err := svc.InstallMod(ctx, profileID, u.ModID, u.LatestVersion); err != nil {
				fmt.Printf("  update failed: %v\n", err)
			}
		}
		return nil
	},
}

func init() {
	updatesCmd.Flags().StringVarP(&updatesProfile, "profile", "p", "", "profile to check (default: active profile)")
	updatesCmd.Flags().BoolVar(&updatesApply, "apply", false, "install the newer versions")
	rootCmd.AddCommand(updatesCmd)
}
