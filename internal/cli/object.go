package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var objectCmd = &cobra.Command{
	Use:         "object",
	Short:       "Look up objects on the server",
	Annotations: map[string]string{requiresServer: "true"},
}

var objectGetCmd = &cobra.Command{
	Use:   "get APP_LABEL.MODEL KEY",
	Short: "Get an object by composite key or UUID",
	Long: `Get an object by composite key or UUID. The composite key is sent as given, so
values containing reserved characters must be percent-encoded. Use "nbtables key
encode" to build one.

Examples:
  nbtables object get dcim.device "core-01;Rack%20Row%201;Site%20A"
  nbtables object get ipam.prefix 10.1.1.0%2F24 -j`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := newClient().GetObject(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			var v map[string]any
			if err := json.Unmarshal(body, &v); err != nil {
				return fmt.Errorf("failed to parse response: %v", err)
			}
			return printJSON(cmd, map[string]any{"result": 1, "value": v})
		}
		out, err := yaml.JSONToYAML(body)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %v", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	objectCmd.AddCommand(objectGetCmd)
	rootCmd.AddCommand(objectCmd)
}
