// Put command packs a JSON document and stores it in the archive.
// Implements: prd007-satchel-cli R3.3; prd004-archive-core R5.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

var putCmd = &cobra.Command{
	Use:   "put <name> <json-file>",
	Short: "Pack a JSON document and store it under a name",
	Long: `Put packs the value in a plain JSON document into an envelope and
stores the envelope in the archive under the given name. Names are not
unique; every put creates a new record.

Example:
  satchel put nightly-state state.json`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func runPut(cmd *cobra.Command, args []string) error {
	name := args[0]

	value, err := readJSONValue(args[1])
	if err != nil {
		return err
	}

	env, err := pack.PackMeta(value, nil, true)
	if err != nil {
		return fmt.Errorf("pack value: %w", err)
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	rec, err := backend.Put(name, env)
	if err != nil {
		return fmt.Errorf("store envelope: %w", err)
	}

	if flagJSON {
		return printJSON(rec)
	}
	fmt.Println("stored", rec.Name, "as", rec.ArchiveID)
	return nil
}
