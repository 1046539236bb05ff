// Unpack command restores the value inside an envelope file.
// Implements: prd007-satchel-cli R3.2.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

var unpackCmd = &cobra.Command{
	Use:   "unpack <envelope-file>",
	Short: "Unpack an envelope and print its value",
	Long: `Unpack reads an envelope file, reconstructs the value inside it, and
prints the value as plain JSON. Tuples and sets print as arrays; non-string
mapping keys print with their Go formatting.

Example:
  satchel unpack graph.env.json`,
	Args: cobra.ExactArgs(1),
	RunE: runUnpack,
}

func runUnpack(cmd *cobra.Command, args []string) error {
	env, err := pack.Load(args[0])
	if err != nil {
		return fmt.Errorf("load envelope: %w", err)
	}

	root, err := pack.Unpack(env)
	if err != nil {
		return fmt.Errorf("unpack envelope: %w", err)
	}

	return printJSON(plainValue(root))
}
