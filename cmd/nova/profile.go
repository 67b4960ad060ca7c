package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nova/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage game profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new profile",
	Long: `Create a new profile with its own isolated game directory.

The patching runtime is downloaded and unpacked before the command returns;
the profile cannot launch modded until provisioning completes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		profile, prep, err := svc.CreateProfile(args[0], printProgress)
		if err != nil {
			return err
		}

		fmt.Printf("Created profile %s (%s)\n", profile.Name, profile.ID)
		if err := prep.Wait(cmd.Context()); err != nil {
			return fmt.Errorf("installing runtime environment: %w", err)
		}
		fmt.Println("Runtime environment installed.")
		return nil
	},
}

// printProgress renders staged progress on a single rewritten line.
func printProgress(ev domain.ProgressEvent) {
	fmt.Printf("\r%-60s", ev.Message)
	if ev.Stage == domain.StageComplete {
		fmt.Println()
	}
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles, most recently launched first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		profiles, err := svc.Profiles().GetProfiles()
		if err != nil {
			return err
		}

		if len(profiles) == 0 {
			fmt.Println("No profiles yet. Create one with 'nova profile create <name>'.")
			return nil
		}

		for _, p := range profiles {
			status := "ready"
			if !p.BepInExInstalled {
				status = "provisioning"
			}
			if ev, ok := svc.Progress().Get(p.ID); ok {
				status = fmt.Sprintf("%s (%.0f%%)", ev.Stage, ev.Progress*100)
			}
			fmt.Printf("%-30s %-12s mods=%-3d playtime=%s\n",
				p.Name, status, len(p.Mods), (time.Duration(p.TotalPlayTime) * time.Millisecond).Round(time.Minute))
		}
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Delete a profile and its directory tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}
		if err := svc.Profiles().DeleteProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted profile %s\n", args[0])
		return nil
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export <profile-id>",
	Short: "Export a profile's mod list as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}
		data, err := svc.Profiles().ExportProfile(args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a profile from an exported YAML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, log, err := initService()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}

		profile, requests, prep, err := svc.ImportProfile(data, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Created profile %s (%s)\n", profile.Name, profile.ID)

		ctx := cmd.Context()
		for _, req := range requests {
			if _, err := svc.InstallMod(ctx, profile.ID, req.ModID, req.Version); err != nil {
				log.Warnw("import: mod install failed", "mod_id", req.ModID, "error", err)
				fmt.Printf("  failed: %s@%s: %v\n", req.ModID, req.Version, err)
				continue
			}
			fmt.Printf("  installed: %s@%s\n", req.ModID, req.Version)
		}

		if err := prep.Wait(ctx); err != nil {
			return fmt.Errorf("installing runtime environment: %w", err)
		}
		fmt.Println("Runtime environment installed.")
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileCreateCmd, profileListCmd, profileDeleteCmd, profileExportCmd, profileImportCmd)
	rootCmd.AddCommand(profileCmd)
}
