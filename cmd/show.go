package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print a note",
	Long: `Fetches a note, prints its breadcrumbs and contents, and adds it to the
recent list. Use --html to print the rendered HTML instead of the Markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asHTML, _ := cmd.Flags().GetBool("html")

		ctx := context.Background()
		_, sess, database, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		defer database.Close()

		note, err := sess.Open(ctx, args[0])
		if err != nil {
			return err
		}

		labels := make([]string, 0, len(note.Breadcrumbs))
		for _, c := range note.Breadcrumbs {
			labels = append(labels, c.Label)
		}
		fmt.Println(strings.Join(labels, " › "))
		fmt.Printf("%s (%s)\n\n", note.Title, note.Topic)

		if asHTML {
			fmt.Println(note.HTML)
		} else {
			fmt.Println(note.Content)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("html", false, "print rendered HTML")
	rootCmd.AddCommand(showCmd)
}
