package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage eventdesk configuration file values.",
	Long: `Create and display the eventdesk configuration file.

The configuration stores application-wide values:
- server.port
- database.path
- import.workers
- auth.token_file`,
	Example: `
  # Create default config in $HOME/.eventdesk.yaml (plus token file template)
  eventdesk config create

  # Show active config and source file
  eventdesk config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
