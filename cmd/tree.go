package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opennotesproject/notevault/internal/sidebar"
	"github.com/opennotesproject/notevault/internal/vault"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the subject tree of the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess, database, err := loadVault(context.Background())
		if err != nil {
			return err
		}
		defer database.Close()

		sb, err := sess.Sidebar()
		if err != nil {
			return err
		}
		view := sb.View()
		for _, subject := range view.Subjects {
			printBranch(subject, 0)
		}
		printNotes(view.Notes, 0)

		st := sess.Stats()
		fmt.Printf("\n%d notes in %d folders\n", st.Notes, st.Folders)
		return nil
	},
}

func printBranch(b sidebar.BranchView, depth int) {
	fmt.Printf("%s📁 %s\n", strings.Repeat("  ", depth), b.Name)
	for _, child := range b.Branches {
		printBranch(child, depth+1)
	}
	printNotes(b.Notes, depth+1)
}

func printNotes(notes []vault.Note, depth int) {
	for _, n := range notes {
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), n.Name)
	}
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
