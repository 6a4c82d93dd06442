package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventdesk/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  eventdesk config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		}
		fmt.Println("Configuration:")
		fmt.Printf("server.port: %d\n", cfg.Server.Port)
		fmt.Printf("database.path: %s\n", cfg.Database.Path)
		fmt.Printf("import.workers: %d\n", cfg.Import.Workers)
		fmt.Printf("auth.token_file: %s\n", cfg.Auth.TokenFile)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
