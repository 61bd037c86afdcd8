package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/opennotesproject/notevault/internal/mcp"
	"github.com/opennotesproject/notevault/internal/progress"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Loads the vault and starts a Model Context Protocol (MCP) server on stdio, exposing note search, reading and tree listing tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, sess, database, err := openSession(ctx, &progress.CIReporter{Description: "Indexing notes", Out: os.Stderr})
		if err != nil {
			return err
		}
		defer database.Close()

		if err := sess.Init(ctx); err != nil {
			return err
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "notevault MCP server started on stdio (repo=%s, notes=%d)\n", cfg.RepoLabel(), sess.Stats().Indexed)

		return mcpserver.NewServer(sess).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
