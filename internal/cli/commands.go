package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/nautobot/nautobot-sub011/internal/common/httpclient"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	jsonOutput bool
	configFile string
)

// requiresServer marks commands that talk to a table server.
const requiresServer = "requires_server"

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var headerLabel = color.New(color.Bold)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nbtables [command] [flags]",
	Short: "nbtables - natural keys and object tables from the command line",
	Long: `nbtables encodes and decodes natural keys, looks up objects by composite key
and renders object tables, either from a running table server or from a local
fixture file.

Examples:
  # Encode a natural key into a composite key
  nbtables key encode "Rack Row 1" "Site A"

  # Look up a device by composite key
  nbtables object get dcim.device "core-01;Rack%20Row%201;Site%20A"

  # Render the device table of a fixture file
  nbtables table render dcim.device --fixtures fixtures.yaml

  # Save the columns shown for a table
  nbtables columns set DeviceTable name status location`,
	PersistentPreRunE: preRunHandlePersistents,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	rootCmd.AddCommand(newVersionCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(rootCmd, map[string]any{"result": 0, "error": err.Error()})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents loads the configuration for commands that talk to a server.
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[requiresServer] == "true" {
			return loadServerConfig()
		}
	}
	return nil
}

func loadServerConfig() error {
	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}
	if err := LoadConfig(configFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config file not found; run \"nbtables config --server <host:port>\" or set %s", EnvServerURL)
		}
		return err
	}
	return nil
}

func newClient() *httpclient.HTTPClient {
	return httpclient.NewClient(GetConfig())
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	var server bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nbtables",
		RunE: func(cmd *cobra.Command, args []string) error {
			kv := map[string]string{"version": getCLIVersion()}
			if server {
				if err := loadServerConfig(); err != nil {
					return err
				}
				v, err := newClient().Version(cmd.Context())
				if err != nil {
					return err
				}
				kv["server"] = v
			}
			if jsonOutput {
				return printJSON(cmd, kv)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "nbtables %s\n", kv["version"])
			if server {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", kv["server"])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&server, "server", false, "Also print the version of the configured server")
	return cmd
}

// printJSON prints data as indented JSON to the command's output
func printJSON(cmd *cobra.Command, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %v", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
