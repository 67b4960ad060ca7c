package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	installProfile  string
	installVersion  string
	installWithDeps bool
)

var installCmd = &cobra.Command{
	Use:   "install <mod-id>",
	Short: "Install a mod into a profile",
	Long: `Install a mod from the registry into a profile's plugin directory.

Without --version the newest published version is installed. With --with-deps
the mod's declared dependencies are resolved and installed first; a dependency
that fails to install does not abort the rest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		profileID, err := requireProfile(svc, installProfile)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		modID := args[0]

		version := installVersion
		if version == "" {
			version, err = svc.LatestVersion(ctx, modID)
			if err != nil {
				return fmt.Errorf("resolving latest version of %s: %w", modID, err)
			}
		}

		if installWithDeps {
			resolved, err := svc.InstallModWithDependencies(ctx, profileID, modID, version)
			for _, dep := range resolved {
				fmt.Printf("  dependency: %s@%s\n", dep.ModID, dep.ResolvedVersion)
			}
			if err != nil {
				return err
			}
		} else {
			if _, err := svc.InstallMod(ctx, profileID, modID, version); err != nil {
				return err
			}
		}

		fmt.Printf("Installed %s@%s\n", modID, version)
		return nil
	},
}

func init() {
	installCmd.Flags().StringVarP(&installProfile, "profile", "p", "", "profile to install into (default: active profile)")
	installCmd.Flags().StringVar(&installVersion, "version", "", "version to install (default: newest)")
	installCmd.Flags().BoolVar(&installWithDeps, "with-deps", false, "resolve and install declared dependencies first")
	rootCmd.AddCommand(installCmd)
}
