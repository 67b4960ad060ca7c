package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchOffset int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the mod registry",
	Long:  `Search the mod registry by name. Without a query the newest mods are listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		mods, err := svc.Registry().SearchMods(cmd.Context(), query, searchLimit, searchOffset)
		if err != nil {
			return err
		}

		if len(mods) == 0 {
			fmt.Println("No mods found.")
			return nil
		}

		for _, m := range mods {
			fmt.Printf("%-30s %-20s %8d downloads  %s\n", m.ID, m.Author, m.Downloads, m.Name)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "pagination offset")
	rootCmd.AddCommand(searchCmd)
}
