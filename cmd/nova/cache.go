package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the runtime archive cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached runtime archive for the configured version",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}
		if err := svc.ClearRuntimeCache(); err != nil {
			return err
		}
		fmt.Println("Runtime archive cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
