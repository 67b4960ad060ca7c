package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <mod-id>",
	Short: "Show details and versions for a registry mod",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		modID := args[0]

		mod, err := svc.Registry().GetMod(ctx, modID)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s) by %s\n", mod.Name, mod.ID, mod.Author)
		if mod.Description != "" {
			fmt.Println(mod.Description)
		}
		fmt.Printf("%d downloads\n", mod.Downloads)

		// Extended info and version list are both best-effort display
		if info, err := svc.Registry().GetModInfo(ctx, modID); err == nil {
			if info.License != "" {
				fmt.Printf("License: %s\n", info.License)
			}
			if len(info.Tags) > 0 {
				fmt.Printf("Tags: %s\n", strings.Join(info.Tags, ", "))
			}
			for _, link := range info.Links {
				fmt.Printf("  %s: %s\n", link.Type, link.URL)
			}
		}

		versions, err := svc.Registry().GetModVersions(ctx, modID)
		if err != nil {
			return err
		}
		fmt.Println("\nVersions:")
		for _, v := range versions {
			fmt.Printf("  %-15s %-10s %s\n", v.Version, v.Platform,
				time.UnixMilli(v.CreatedAt).Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
