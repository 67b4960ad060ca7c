package main

import (
	"github.com/spf13/cobra"

	"nova/internal/launch"
)

var (
	launchProfile string
	launchVanilla bool
	launchWait    bool
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch the game",
	Long: `Launch the game with a profile's runtime and plugins, or unmodified
with --vanilla. A modded launch is refused while the profile's runtime
environment is still being provisioned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, log, err := initService()
		if err != nil {
			return err
		}

		runner := launch.NewExecRunner(log)
		runner.Wait = launchWait
		launcher := launch.NewLauncher(svc.Profiles(), svc.Settings(), runner, log)

		if launchVanilla {
			return launcher.LaunchVanilla(cmd.Context())
		}

		profileID, err := requireProfile(svc, launchProfile)
		if err != nil {
			return err
		}
		return launcher.LaunchModded(cmd.Context(), profileID)
	},
}

func init() {
	launchCmd.Flags().StringVarP(&launchProfile, "profile", "p", "", "profile to launch (default: active profile)")
	launchCmd.Flags().BoolVar(&launchVanilla, "vanilla", false, "launch without modifications")
	launchCmd.Flags().BoolVar(&launchWait, "wait", false, "supervise the session and record play time")
	rootCmd.AddCommand(launchCmd)
}
