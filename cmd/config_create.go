package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventdesk/auth"
	"eventdesk/config"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create configuration and token files from templates.",
	Long: `Create a new configuration file from the example template, plus a token
file template for the API if none exists.

If a configuration file is already in use, no new file is written.`,
	Example: `
  # Create default config at $HOME/.eventdesk.yaml
  eventdesk config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig()
	},
}

func saveDefaultConfig() error {
	configPath, err := resolveConfigPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureFileWithTemplate(configPath, config.ExampleYAML())
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("New config file created at: %s\n", configPath)
	} else {
		fmt.Printf("Config file already exists at: %s\n", configPath)
	}

	tokenPath, err := auth.DefaultTokenFilePath()
	if err != nil {
		return err
	}
	created, err = ensureFileWithTemplate(tokenPath, auth.ExampleJSON())
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("New token file created at: %s (replace the placeholder tokens)\n", tokenPath)
	}

	return nil
}

func resolveConfigPath(configFileFlag, configFileUsed string) (string, error) {
	if strings.TrimSpace(configFileFlag) != "" {
		return configFileFlag, nil
	}
	if strings.TrimSpace(configFileUsed) != "" {
		return configFileUsed, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".eventdesk.yaml"), nil
}

func ensureFileWithTemplate(path, template string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(template), 0o600); err != nil {
		return false, fmt.Errorf("creating file failed: %w", err)
	}

	return true, nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
