package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Environment variables overriding the config file.
const (
	EnvServerURL = "NBTABLES_SERVER_URL"
	EnvUser      = "NBTABLES_USER"
)

// Config holds the server connection and the acting user of the CLI.
type Config struct {
	// Version of the configuration file format
	Version string `json:"version"`
	// ServerURL is the URL and port of the table server
	ServerURL string `json:"server_url"`
	// User owns saved column selections; empty means anonymous
	User string `json:"user,omitempty"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/nbtables on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "nbtables", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from file and applies environment overrides.
// A missing file is not an error when the environment names a server.
func LoadConfig(file string) error {
	var c Config
	yamlStr, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(yamlStr, &c); err != nil {
			return fmt.Errorf("unable to parse config file: %w", err)
		}
	case os.IsNotExist(err) && os.Getenv(EnvServerURL) != "":
	default:
		return err
	}

	if v := os.Getenv(EnvServerURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.User = v
	}
	if err := c.ValidateConfig(); err != nil {
		return err
	}
	c.ServerURL = MorphServer(c.ServerURL)
	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration to file.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}

// ValidateConfig checks for required fields and proper formatting
func (cfg *Config) ValidateConfig() error {
	if cfg.ServerURL == "" {
		return errors.New("server:port is required")
	}
	if !strings.Contains(strings.TrimPrefix(strings.TrimPrefix(cfg.ServerURL, "http://"), "https://"), ":") {
		return errors.New("server:port must include port number")
	}
	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds http:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}
	server = strings.TrimRight(server, "/")
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}
	return server
}

func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

func (cfg *Config) GetUser() string {
	return cfg.User
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like the server connection and the acting user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		user, _ := cmd.Flags().GetString("user")
		if server == "" {
			return cmd.Help()
		}
		return writeServerConfig(cmd, server, user)
	},
}

func init() {
	configCmd.Flags().String("server", "", "Set the server URL and port (e.g., localhost:8080)")
	configCmd.Flags().String("user", "", "Set the user owning saved column selections")
	rootCmd.AddCommand(configCmd)
}

func writeServerConfig(cmd *cobra.Command, server, user string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	cfg := &Config{Version: "0.1.0", ServerURL: MorphServer(server), User: user}
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, map[string]string{
			"server":      cfg.ServerURL,
			"config_file": configPath,
		})
	}
	okLabel.Fprintf(cmd.OutOrStdout(), "Server configured: %s\n", cfg.ServerURL)
	fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", configPath)
	return nil
}
