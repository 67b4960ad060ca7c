package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var newsCmd = &cobra.Command{
	Use:   "news [id]",
	Short: "Show the launcher news feed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := initService()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid news id %q", args[0])
			}
			item, err := svc.Registry().GetNewsItem(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s, %s\n\n%s\n", item.Title, item.Author,
				time.UnixMilli(item.CreatedAt).Format("2006-01-02"), item.Content)
			return nil
		}

		items, err := svc.Registry().GetNews(cmd.Context())
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Printf("%4d  %s  %s\n", item.ID,
				time.UnixMilli(item.CreatedAt).Format("2006-01-02"), item.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newsCmd)
}
