package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opennotesproject/notevault/internal/session"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently opened notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess, database, err := openSession(context.Background(), nil)
		if err != nil {
			return err
		}
		defer database.Close()

		recent := sess.Recent()
		if len(recent) == 0 {
			fmt.Println("No recent notes yet. Open a note to add it here.")
			return nil
		}
		for i, p := range recent {
			fmt.Printf("%2d. %-30s %s\n", i+1, session.TitleOf(p), p)
		}
		return nil
	},
}

var recentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recently opened notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, sess, database, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := sess.ClearRecent(ctx); err != nil {
			return err
		}
		fmt.Println("Recent notes cleared.")
		return nil
	},
}

func init() {
	recentCmd.AddCommand(recentClearCmd)
	rootCmd.AddCommand(recentCmd)
}
