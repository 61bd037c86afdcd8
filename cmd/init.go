package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opennotesproject/notevault/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize notevault configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the notes repository and writes a .notevault.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
