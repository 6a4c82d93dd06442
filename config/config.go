package config

import (
	"bytes"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyServerPort    = "server.port"
	KeyDatabasePath  = "database.path"
	KeyImportWorkers = "import.workers"
	KeyAuthTokenFile = "auth.token_file"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Import   ImportConfig   `mapstructure:"import"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"gte=1,lte=65535"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ImportConfig controls the batch executor. Workers is the row-processing
// concurrency bound; 1 preserves strictly sequential processing.
type ImportConfig struct {
	Workers int `mapstructure:"workers" validate:"gte=1,lte=64"`
}

type AuthConfig struct {
	TokenFile string `mapstructure:"token_file"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# eventdesk configuration
server:
  port: 8080

database:
  path: "./eventdesk.db"

import:
  # Row-processing concurrency for bulk imports. 1 = strictly sequential.
  workers: 1

auth:
  # Token file for the HTTP API (default: $HOME/.eventdesk/tokens.json).
  token_file: ""
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerPort, 8080)
	v.SetDefault(KeyDatabasePath, "./eventdesk.db")
	v.SetDefault(KeyImportWorkers, 1)
	v.SetDefault(KeyAuthTokenFile, "")
}
