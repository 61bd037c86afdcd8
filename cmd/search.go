package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opennotesproject/notevault/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search note titles and contents",
	Long:  `Indexes the vault and prints notes whose title or content contains the query, case-insensitively.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	query := strings.Join(args, " ")

	_, sess, database, err := loadVault(context.Background())
	if err != nil {
		return err
	}
	defer database.Close()

	results, err := sess.Search(query)
	if err != nil {
		return err
	}

	if jsonOutput {
		if results == nil {
			results = []search.Result{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Printf("No results for \"%s\"\n", strings.TrimSpace(query))
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-30s %s\n", r.Title, r.Path)
	}
	return nil
}
