package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nautobot/nautobot-sub011/internal/core/naturalkey"
	"github.com/nautobot/nautobot-sub011/pkg/types"
)

// DefaultNullArg stands for a null natural key value on the command line.
const DefaultNullArg = "<null>"

var (
	keyNullArg string
	slugPK     string
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Encode and decode natural keys",
	Long: `Convert natural key values to and from composite keys and natural slugs.
These commands run locally and need no server.

Examples:
  nbtables key encode core-01 "Rack Row 1" "Site A"
  nbtables key decode "core-01;Rack%20Row%201;Site%20A"
  nbtables key slug --pk 0190c2a4-1b51-7d0e-9a4b-6f3c1f0a0001 "Site A"`,
}

var keyEncodeCmd = &cobra.Command{
	Use:   "encode [VALUE...]",
	Short: "Encode natural key values into a composite key",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := naturalkey.EncodeCompositeKey(keyValues(args, keyNullArg))
		if jsonOutput {
			return printJSON(cmd, map[string]string{"composite_key": key})
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var keyDecodeCmd = &cobra.Command{
	Use:   "decode COMPOSITE_KEY",
	Short: "Decode a composite key into natural key values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := naturalkey.DecodeCompositeKey(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, map[string][]types.NullableString{"values": values})
		}
		for _, v := range values {
			if v.IsNil() {
				fmt.Fprintln(cmd.OutOrStdout(), keyNullArg)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.Value)
		}
		return nil
	},
}

var keySlugCmd = &cobra.Command{
	Use:   "slug [VALUE...]",
	Short: "Build the natural slug of natural key values",
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := naturalkey.BuildNaturalSlug(keyValues(args, keyNullArg), slugPK)
		if jsonOutput {
			return printJSON(cmd, map[string]string{"natural_slug": slug})
		}
		fmt.Fprintln(cmd.OutOrStdout(), slug)
		return nil
	},
}

// keyValues converts arguments into natural key values; nullArg marks a null value.
func keyValues(args []string, nullArg string) []types.NullableString {
	values := make([]types.NullableString, len(args))
	for i, a := range args {
		if a == nullArg {
			values[i] = types.NullString()
			continue
		}
		values[i] = types.NullableStringFrom(a)
	}
	return values
}

func init() {
	keyCmd.PersistentFlags().StringVar(&keyNullArg, "null", DefaultNullArg, "Argument standing for a null value")
	keySlugCmd.Flags().StringVar(&slugPK, "pk", "", "Primary key appended as a short id")

	keyCmd.AddCommand(keyEncodeCmd, keyDecodeCmd, keySlugCmd)
	rootCmd.AddCommand(keyCmd)
}
