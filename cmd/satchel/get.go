// Get command retrieves a stored envelope and prints its value.
// Implements: prd007-satchel-cli R3.4; prd004-archive-core R5.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knapsack/pkg/archive"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

var flagGetByName bool

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a stored envelope by ID",
	Long: `Get retrieves a record from the archive by its ID and prints the
value inside its envelope as plain JSON. With --name the argument is
treated as a record name and the newest record with that name is used.
With --json the raw record is printed instead of the unpacked value.

Example:
  satchel get 01923e5a-7b9f-7c3d-a1b2-000000000001
  satchel get nightly-state --name`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().BoolVar(&flagGetByName, "name", false, "look up by record name instead of ID")
}

func runGet(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	var rec *archive.Record
	if flagGetByName {
		rec, err = backend.GetByName(args[0])
	} else {
		rec, err = backend.Get(args[0])
	}
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return fmt.Errorf("record %q not found", args[0])
		}
		return fmt.Errorf("get record: %w", err)
	}

	if flagJSON {
		return printJSON(rec)
	}

	env, err := rec.Envelope()
	if err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	root, err := pack.Unpack(env)
	if err != nil {
		return fmt.Errorf("unpack envelope: %w", err)
	}
	return printJSON(plainValue(root))
}
