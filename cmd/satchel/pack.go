// Pack command converts a plain JSON document into an envelope.
// Implements: prd007-satchel-cli R3.1.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

var flagPackOutput string

var packCmd = &cobra.Command{
	Use:   "pack <json-file>",
	Short: "Pack a JSON document into an envelope",
	Long: `Pack reads a plain JSON document, packs its value into an envelope
with a reference table, and writes the envelope JSON to stdout or to the
file given with --output.

Example:
  satchel pack graph.json
  satchel pack graph.json --output graph.env.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&flagPackOutput, "output", "o", "", "write the envelope to a file instead of stdout")
}

func runPack(cmd *cobra.Command, args []string) error {
	value, err := readJSONValue(args[0])
	if err != nil {
		return err
	}

	env, err := pack.PackMeta(value, nil, true)
	if err != nil {
		return fmt.Errorf("pack value: %w", err)
	}

	if flagPackOutput != "" {
		if err := pack.Save(flagPackOutput, env); err != nil {
			return fmt.Errorf("save envelope: %w", err)
		}
		fmt.Println("wrote", flagPackOutput)
		return nil
	}

	text, err := pack.ToJSON(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	fmt.Fprintln(os.Stdout, text)
	return nil
}
